package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	Cadastro(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
}

type AdminHandler interface {
	Dashboard(w http.ResponseWriter, r *http.Request)
	Check(w http.ResponseWriter, r *http.Request)
	PatchUsuario(w http.ResponseWriter, r *http.Request)
	DeleteUsuario(w http.ResponseWriter, r *http.Request)
}

type PaymentHandler interface {
	Preferencias(w http.ResponseWriter, r *http.Request)
	WebhookGET(w http.ResponseWriter, r *http.Request)
	WebhookPOST(w http.ResponseWriter, r *http.Request)
}

type ExamHandler interface {
	Submeter(w http.ResponseWriter, r *http.Request)
	Imagem(w http.ResponseWriter, r *http.Request)
}

type Middleware = func(http.Handler) http.Handler

type Deps struct {
	Health   HealthHandler
	Auth     AuthHandler
	Admin    AdminHandler
	Payments PaymentHandler
	Exams    ExamHandler

	// Metrics serves the Prometheus scrape endpoint. Optional.
	Metrics http.Handler

	// global chain
	RequestIDMW Middleware
	SecurityMW  Middleware
	AccessLogMW Middleware
	MetricsMW   Middleware
	GlobalRLMW  Middleware

	JSONMW         Middleware
	AuthMW         Middleware
	OptionalAuthMW Middleware
	AdminPageMW    Middleware
	AdminAPIMW     Middleware

	// class rate limits; nil disables
	RLAuth    Middleware
	RLAPI     Middleware
	RLPayment Middleware
}

func (d Deps) validate() error {
	switch {
	case d.Health == nil:
		return fmt.Errorf("nil Health handler")
	case d.Auth == nil:
		return fmt.Errorf("nil Auth handler")
	case d.Admin == nil:
		return fmt.Errorf("nil Admin handler")
	case d.Payments == nil:
		return fmt.Errorf("nil Payments handler")
	case d.Exams == nil:
		return fmt.Errorf("nil Exams handler")
	case d.RequestIDMW == nil:
		return fmt.Errorf("nil RequestID middleware")
	case d.JSONMW == nil:
		return fmt.Errorf("nil JSON middleware")
	case d.AuthMW == nil:
		return fmt.Errorf("nil Auth middleware")
	case d.OptionalAuthMW == nil:
		return fmt.Errorf("nil OptionalAuth middleware")
	case d.AdminPageMW == nil:
		return fmt.Errorf("nil AdminPage middleware")
	case d.AdminAPIMW == nil:
		return fmt.Errorf("nil AdminAPI middleware")
	}
	return nil
}

func New(deps Deps) (http.Handler, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(deps.RequestIDMW)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(present(deps.SecurityMW, deps.AccessLogMW, deps.MetricsMW, deps.GlobalRLMW)...)

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	// --- Admin page ---
	r.With(deps.AdminPageMW).Get("/admin", deps.Admin.Dashboard)

	r.Route("/api", func(r chi.Router) {
		// --- Registration / session ---
		r.With(present(deps.RLAuth, deps.JSONMW)...).Post("/cadastro", deps.Auth.Cadastro)
		r.Route("/auth", func(r chi.Router) {
			r.With(present(deps.RLAuth, deps.JSONMW)...).Post("/login", deps.Auth.Login)
			r.With(present(deps.RLAuth)...).Post("/refresh", deps.Auth.Refresh)
			r.With(present(deps.RLAPI, deps.OptionalAuthMW)...).Post("/logout", deps.Auth.Logout)
			r.With(present(deps.RLAPI, deps.AuthMW)...).Get("/me", deps.Auth.Me)
		})

		// --- Admin ---
		r.With(present(deps.RLAPI, deps.OptionalAuthMW)...).Get("/admin-check", deps.Admin.Check)
		r.Route("/admin", func(r chi.Router) {
			r.Use(present(deps.RLAPI, deps.AdminAPIMW, deps.JSONMW)...)
			r.Patch("/usuarios", deps.Admin.PatchUsuario)
			r.Delete("/usuarios", deps.Admin.DeleteUsuario)
		})

		// --- Payments ---
		r.Route("/pagamentos", func(r chi.Router) {
			r.With(present(deps.RLPayment, deps.AuthMW, deps.JSONMW)...).Post("/preferencias", deps.Payments.Preferencias)
			// gateway notifications carry no session and may not be JSON
			r.Get("/webhook", deps.Payments.WebhookGET)
			r.Post("/webhook", deps.Payments.WebhookPOST)
		})

		// --- Exams ---
		r.Route("/simulados", func(r chi.Router) {
			r.Use(present(deps.RLAPI)...)
			r.With(deps.AuthMW, deps.JSONMW).Post("/submeter", deps.Exams.Submeter)
			r.Get("/imagens/*", deps.Exams.Imagem)
		})
	})

	return r, nil
}

// present drops nil middlewares so optional ones can be passed unconditionally.
func present(mws ...Middleware) []Middleware {
	out := make([]Middleware, 0, len(mws))
	for _, mw := range mws {
		if mw != nil {
			out = append(out, mw)
		}
	}
	return out
}
