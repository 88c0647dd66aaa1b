package http_handlers

import (
	"context"
	"net/http"

	"github.com/simulado-cea/simulado-service/internal/application/admin"
	"github.com/simulado-cea/simulado-service/internal/domain"
	"github.com/simulado-cea/simulado-service/internal/transport/http/dto"
	"github.com/simulado-cea/simulado-service/internal/transport/http/middleware"
	"github.com/simulado-cea/simulado-service/internal/transport/http/response"
)

type AdminService interface {
	Dashboard(ctx context.Context, actor domain.AdminUser) (admin.Dashboard, error)
	UpdateStatus(ctx context.Context, actor domain.AdminUser, userID, action, status string) (domain.DirectoryRecord, error)
	DeleteUser(ctx context.Context, actor domain.AdminUser, userID string) error
}

type AdminReporter interface {
	Report(ctx context.Context, p *domain.Principal) admin.Report
}

type AdminHandler struct {
	svc      AdminService
	reporter AdminReporter
	sessions middleware.SessionProvider
}

func NewAdminHandler(svc AdminService, reporter AdminReporter, sessions middleware.SessionProvider) *AdminHandler {
	return &AdminHandler{svc: svc, reporter: reporter, sessions: sessions}
}

// Dashboard handles GET /admin. The admin guard has already run.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.AdminUserFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrAdminRequired())
		return
	}

	d, err := h.svc.Dashboard(r.Context(), actor)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, dto.NewAdminDashboard(d))
}

// Check handles GET /api/admin-check. It always answers 200; anonymous callers
// get authenticated=false.
func (h *AdminHandler) Check(w http.ResponseWriter, r *http.Request) {
	var pp *domain.Principal
	if p, ok := middleware.PrincipalFromContext(r.Context()); ok {
		pp = &p
	} else if p, ok := h.sessions.Session(r); ok {
		pp = &p
	}
	response.WriteJSON(w, http.StatusOK, h.reporter.Report(r.Context(), pp))
}

// PatchUsuario handles PATCH /api/admin/usuarios.
func (h *AdminHandler) PatchUsuario(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.AdminUserFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrAdminRequired())
		return
	}

	var req dto.AdminUserPatchRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	rec, err := h.svc.UpdateStatus(r.Context(), actor, req.UserID, req.Action, req.Status)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, dto.SuccessResponse{
		Success: true,
		Message: "Status do usuário atualizado para " + req.Status,
		Data:    dto.NewUsuarioView(rec),
	})
}

// DeleteUsuario handles DELETE /api/admin/usuarios.
func (h *AdminHandler) DeleteUsuario(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.AdminUserFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrAdminRequired())
		return
	}

	var req dto.AdminUserDeleteRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.DeleteUser(r.Context(), actor, req.UserID); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, dto.SuccessResponse{
		Success: true,
		Message: "Usuário excluído com sucesso",
	})
}
