package domain

import "strings"

// AdminAllowList is an immutable set of normalized admin emails.
// The zero value is a valid empty list.
type AdminAllowList struct {
	emails map[string]struct{}
}

// ParseAdminAllowList splits a comma-separated list, trimming and lower-casing entries.
// Blank entries are dropped; a blank input yields an empty list.
func ParseAdminAllowList(raw string) AdminAllowList {
	set := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		if e := NormalizeEmail(part); e != "" {
			set[e] = struct{}{}
		}
	}
	return AdminAllowList{emails: set}
}

func (l AdminAllowList) Contains(email string) bool {
	e := NormalizeEmail(email)
	if e == "" {
		return false
	}
	_, ok := l.emails[e]
	return ok
}

func (l AdminAllowList) Len() int { return len(l.emails) }

func (l AdminAllowList) Empty() bool { return len(l.emails) == 0 }

// Emails returns the configured entries in unspecified order.
func (l AdminAllowList) Emails() []string {
	out := make([]string, 0, len(l.emails))
	for e := range l.emails {
		out = append(out, e)
	}
	return out
}
