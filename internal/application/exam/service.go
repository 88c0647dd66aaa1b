package exam

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

type ResultRepo interface {
	Insert(ctx context.Context, r domain.ExamResult) error
}

// ImageStore hands out time-limited URLs for question images.
type ImageStore interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Service struct {
	results    ResultRepo
	images     ImageStore
	presignTTL time.Duration
	now        func() time.Time
}

func NewService(results ResultRepo, images ImageStore, presignTTL time.Duration) *Service {
	if presignTTL <= 0 {
		presignTTL = 15 * time.Minute
	}
	return &Service{results: results, images: images, presignTTL: presignTTL, now: time.Now}
}

type SubmitInput struct {
	SimuladoNumero            int
	Acertos                   int
	Total                     int
	TempoGastoSegundos        int
	FinalizadoAutomaticamente bool
	Respostas                 map[string]any
}

// Submit records a finished attempt for userID.
func (s *Service) Submit(ctx context.Context, userID string, in SubmitInput) error {
	if strings.TrimSpace(userID) == "" {
		return domain.ErrTokenMissing()
	}
	if in.SimuladoNumero <= 0 {
		return domain.ErrMissingField("simuladoNumero")
	}
	if in.Total <= 0 {
		return domain.ErrMissingField("total")
	}
	if in.Acertos < 0 || in.Acertos > in.Total {
		return domain.ErrInvalidField("acertos", "must be between 0 and total")
	}
	if in.TempoGastoSegundos < 0 {
		return domain.ErrInvalidField("tempoGastoSegundos", "must not be negative")
	}
	if in.Respostas == nil {
		in.Respostas = map[string]any{}
	}

	return s.results.Insert(ctx, domain.ExamResult{
		UserID:                    userID,
		SimuladoNumero:            in.SimuladoNumero,
		Acertos:                   in.Acertos,
		TotalQuestoes:             in.Total,
		TempoGastoSegundos:        in.TempoGastoSegundos,
		FinalizadoAutomaticamente: in.FinalizadoAutomaticamente,
		Respostas:                 in.Respostas,
		CreatedAt:                 s.now().UTC(),
	})
}

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true, ".gif": true}

// ImageURL returns a presigned URL for a question image key such as "simulado-1/q12.png".
func (s *Service) ImageURL(ctx context.Context, key string) (string, error) {
	if s.images == nil {
		return "", domain.ErrObjectNotFound()
	}
	clean, err := cleanImageKey(key)
	if err != nil {
		return "", err
	}
	return s.images.PresignGet(ctx, clean, s.presignTTL)
}

func cleanImageKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", domain.ErrMissingField("key")
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", domain.ErrInvalidField("key", "invalid path")
	}
	clean := path.Clean(key)
	if !imageExts[strings.ToLower(path.Ext(clean))] {
		return "", domain.ErrInvalidField("key", "unsupported extension")
	}
	return clean, nil
}
