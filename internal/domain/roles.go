package domain

import "strings"

// Values that mark a role-like field as administrative.
const (
	RoleAdmin         = "admin"
	RoleAdministrador = "administrador"
)

// IsAdminValue reports whether a role-like string designates an administrator.
func IsAdminValue(v string) bool {
	n := strings.ToLower(strings.TrimSpace(v))
	return n == RoleAdmin || n == RoleAdministrador
}

// HasAdminValue matches a metadata value that may be a single string or a list of them.
// Non-string elements are ignored.
func HasAdminValue(v any) bool {
	switch t := v.(type) {
	case string:
		return IsAdminValue(t)
	case []string:
		for _, s := range t {
			if IsAdminValue(s) {
				return true
			}
		}
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok && IsAdminValue(s) {
				return true
			}
		}
	}
	return false
}
