package domain

import (
	"strings"
	"time"
)

// UserStatus is the activation status stored on a directory record.
type UserStatus string

const (
	StatusAtivo     UserStatus = "ativo"
	StatusSuspenso  UserStatus = "suspenso"
	StatusInativo   UserStatus = "inativo"
	StatusPendente  UserStatus = "pendente"
	StatusCancelado UserStatus = "cancelado"
	StatusReembolso UserStatus = "reembolso"
)

// IsAdminSettableStatus reports whether an admin may set the status by hand.
func IsAdminSettableStatus(s string) bool {
	switch UserStatus(s) {
	case StatusAtivo, StatusSuspenso, StatusInativo:
		return true
	}
	return false
}

// RevokesSessions reports whether moving into this status must end the user's sessions.
func (s UserStatus) RevokesSessions() bool {
	return s == StatusSuspenso || s == StatusInativo
}

// DirectoryRecord is a row of the application's user directory (table usuarios).
// Perfil, Papel and Tipo are legacy role-like columns; any of them may be empty.
type DirectoryRecord struct {
	ID              string
	Nome            string
	Email           string
	Whatsapp        string
	Perfil          string
	Papel           string
	Tipo            string
	Status          string
	DataCadastro    time.Time
	DataAtualizacao time.Time
}

// RoleField reads one role-like field of a directory record.
type RoleField struct {
	Name string
	Get  func(DirectoryRecord) string
}

// RoleFallbackChain is the order in which role-like fields are consulted.
var RoleFallbackChain = []RoleField{
	{Name: "perfil", Get: func(r DirectoryRecord) string { return r.Perfil }},
	{Name: "papel", Get: func(r DirectoryRecord) string { return r.Papel }},
	{Name: "tipo", Get: func(r DirectoryRecord) string { return r.Tipo }},
	{Name: "status", Get: func(r DirectoryRecord) string { return r.Status }},
}

// EffectiveRole returns the first populated role-like field and its name.
func (r DirectoryRecord) EffectiveRole() (field, value string) {
	for _, f := range RoleFallbackChain {
		if v := strings.TrimSpace(f.Get(r)); v != "" {
			return f.Name, v
		}
	}
	return "", ""
}

// IsActive reports whether the record's activation status is ativo (case-insensitive).
func (r DirectoryRecord) IsActive() bool {
	return strings.EqualFold(strings.TrimSpace(r.Status), string(StatusAtivo))
}

// DirectoryStats summarizes the directory for the admin dashboard.
type DirectoryStats struct {
	TotalUsuarios  int `json:"totalUsuarios"`
	TotalSimulados int `json:"totalSimulados"`
	UsuariosAtivos int `json:"usuariosAtivos"`
}
