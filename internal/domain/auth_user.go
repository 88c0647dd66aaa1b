package domain

import "time"

// AuthUser is an authentication record. Metadata namespaces are copied into access tokens.
type AuthUser struct {
	ID           string
	Email        string
	PasswordHash string
	AppMetadata  map[string]any
	UserMetadata map[string]any
	CreatedAt    time.Time
}

func (u AuthUser) Principal() Principal {
	return Principal{
		ID:           u.ID,
		Email:        u.Email,
		AppMetadata:  u.AppMetadata,
		UserMetadata: u.UserMetadata,
	}
}

// ExamResult is a submitted simulado attempt (table simulados_respostas).
type ExamResult struct {
	UserID                    string
	SimuladoNumero            int
	Acertos                   int
	TotalQuestoes             int
	TempoGastoSegundos        int
	FinalizadoAutomaticamente bool
	Respostas                 map[string]any
	CreatedAt                 time.Time
}
