package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/simulado-cea/simulado-service/internal/application/admin"
	"github.com/simulado-cea/simulado-service/internal/domain"
)

// AdminLoginPath is where unauthenticated page requests are sent.
const AdminLoginPath = "/admin-login"

type AdminChecker interface {
	Check(ctx context.Context, p domain.Principal) admin.Decision
}

// AdminPage guards browser pages: a request without a session is redirected
// (303) to the admin login with redirectTo set to the original path and query.
func AdminPage(sessions SessionProvider, checker AdminChecker, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return adminGuard(sessions, checker, writeErr, func(w http.ResponseWriter, r *http.Request) {
		target := AdminLoginPath + "?redirectTo=" + url.QueryEscape(r.URL.RequestURI())
		http.Redirect(w, r, target, http.StatusSeeOther)
	})
}

// AdminAPI guards JSON endpoints: a request without a session gets 401.
func AdminAPI(sessions SessionProvider, checker AdminChecker, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return adminGuard(sessions, checker, writeErr, func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, r, domain.ErrTokenMissing())
	})
}

// adminGuard runs the admin check for the session principal. Denied requests get
// 403 admin_required; admitted ones carry the AdminUser in their context.
func adminGuard(sessions SessionProvider, checker AdminChecker, writeErr WriteErrFunc, unauthenticated http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				p, ok = sessions.Session(r)
			}
			if !ok {
				unauthenticated(w, r)
				return
			}

			if d := checker.Check(r.Context(), p); !d.Granted {
				writeErr(w, r, domain.ErrAdminRequired())
				return
			}

			ctx := WithPrincipal(r.Context(), p)
			ctx = WithAdminUser(ctx, domain.AdminUserFrom(p))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
