package http_handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/simulado-cea/simulado-service/internal/application/exam"
	"github.com/simulado-cea/simulado-service/internal/domain"
	"github.com/simulado-cea/simulado-service/internal/transport/http/dto"
	"github.com/simulado-cea/simulado-service/internal/transport/http/middleware"
	"github.com/simulado-cea/simulado-service/internal/transport/http/response"
)

type ExamService interface {
	Submit(ctx context.Context, userID string, in exam.SubmitInput) error
	ImageURL(ctx context.Context, key string) (string, error)
}

type ExamHandler struct {
	svc ExamService
}

func NewExamHandler(svc ExamService) *ExamHandler {
	return &ExamHandler{svc: svc}
}

// Submeter handles POST /api/simulados/submeter.
func (h *ExamHandler) Submeter(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return
	}

	var req dto.SubmitRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	err := h.svc.Submit(r.Context(), p.ID, exam.SubmitInput{
		SimuladoNumero:            req.SimuladoNumero,
		Acertos:                   req.Acertos,
		Total:                     req.Total,
		TempoGastoSegundos:        req.TempoGastoSegundos,
		FinalizadoAutomaticamente: req.FinalizadoAutomaticamente,
		Respostas:                 req.Respostas,
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}

// Imagem handles GET /api/simulados/imagens/*, redirecting to a presigned URL.
// Keys may contain folders, e.g. simulado-1/q12.png.
func (h *ExamHandler) Imagem(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")

	u, err := h.svc.ImageURL(r.Context(), key)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=300")
	http.Redirect(w, r, u, http.StatusFound)
}
