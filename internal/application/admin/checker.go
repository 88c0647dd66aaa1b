package admin

import (
	"context"

	"github.com/simulado-cea/simulado-service/internal/domain"
	"github.com/simulado-cea/simulado-service/internal/logger"
	"github.com/simulado-cea/simulado-service/internal/metrics"
)

// CheckSource names the check that granted admin access.
type CheckSource string

const (
	SourceAllowList CheckSource = "allow_list"
	SourceMetadata  CheckSource = "metadata"
	SourceDirectory CheckSource = "directory"
	SourceNone      CheckSource = "none"
)

type Decision struct {
	Granted bool
	Source  CheckSource
}

// metadataCandidate reads one role-like value out of a principal's metadata.
type metadataCandidate struct {
	path string
	get  func(domain.Principal) any
}

// metadataCandidates is consulted in order; the first admin match wins.
var metadataCandidates = []metadataCandidate{
	{"app_metadata.role", func(p domain.Principal) any { return p.AppMetadata["role"] }},
	{"app_metadata.roles", func(p domain.Principal) any { return p.AppMetadata["roles"] }},
	{"user_metadata.role", func(p domain.Principal) any { return p.UserMetadata["role"] }},
	{"user_metadata.perfil", func(p domain.Principal) any { return p.UserMetadata["perfil"] }},
	{"user_metadata.papel", func(p domain.Principal) any { return p.UserMetadata["papel"] }},
}

// Checker decides whether a principal is an administrator.
//
// Checks run in order and short-circuit on the first success:
//  1. the email is in the configured allow-list
//  2. a role-like metadata field says admin
//  3. the directory record's effective role says admin
//
// An empty allow-list grants nothing by itself. Directory errors count as a non-match.
type Checker struct {
	allow    domain.AdminAllowList
	dir      UserDirectory
	recorder DecisionRecorder
}

func NewChecker(allow domain.AdminAllowList, dir UserDirectory) *Checker {
	return &Checker{allow: allow, dir: dir}
}

func (c *Checker) WithRecorder(r DecisionRecorder) *Checker {
	c.recorder = r
	return c
}

// AllowList exposes the configured list for diagnostics.
func (c *Checker) AllowList() domain.AdminAllowList { return c.allow }

func (c *Checker) IsAdmin(ctx context.Context, p domain.Principal) bool {
	return c.Check(ctx, p).Granted
}

func (c *Checker) Check(ctx context.Context, p domain.Principal) Decision {
	d := c.evaluate(ctx, p)

	metrics.AdminDecisionsTotal.WithLabelValues(string(d.Source)).Inc()
	if c.recorder != nil {
		c.recorder.AdminDecision(ctx, p.ID, p.Email, d.Granted, string(d.Source))
	}
	return d
}

func (c *Checker) evaluate(ctx context.Context, p domain.Principal) Decision {
	lg := logger.WithCtx(ctx)

	if c.allow.Contains(p.Email) {
		lg.Debug().Str("user_id", p.ID).Msg("admin check: allow-list match")
		return Decision{Granted: true, Source: SourceAllowList}
	}

	for _, cand := range metadataCandidates {
		v := cand.get(p)
		if v == nil {
			continue
		}
		if domain.HasAdminValue(v) {
			lg.Debug().Str("user_id", p.ID).Str("field", cand.path).Msg("admin check: metadata match")
			return Decision{Granted: true, Source: SourceMetadata}
		}
	}

	if c.dir == nil || p.ID == "" {
		return Decision{Source: SourceNone}
	}

	rec, found, err := c.dir.FindByID(ctx, p.ID)
	switch {
	case err != nil:
		metrics.DirectoryLookupErrorsTotal.Inc()
		lg.Error().Err(err).Str("user_id", p.ID).Msg("admin check: directory lookup failed")
		return Decision{Source: SourceNone}
	case !found:
		lg.Debug().Str("user_id", p.ID).Msg("admin check: no directory record")
		return Decision{Source: SourceNone}
	}

	field, role := rec.EffectiveRole()
	if domain.IsAdminValue(role) {
		lg.Debug().Str("user_id", p.ID).Str("field", field).Msg("admin check: directory match")
		return Decision{Granted: true, Source: SourceDirectory}
	}

	lg.Debug().Str("user_id", p.ID).Str("field", field).Str("role", role).Msg("admin check: no match")
	return Decision{Source: SourceNone}
}
