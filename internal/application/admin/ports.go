package admin

import (
	"context"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

// UserDirectory looks up directory records by principal id.
// A missing record is reported as found=false with a nil error.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (rec domain.DirectoryRecord, found bool, err error)
}

// DirectoryAdmin is the mutable side of the directory used by the admin panel.
type DirectoryAdmin interface {
	UserDirectory
	List(ctx context.Context) ([]domain.DirectoryRecord, error)
	Stats(ctx context.Context) (domain.DirectoryStats, error)
	// UpdateStatus returns ErrUserNotFound when no row matches.
	UpdateStatus(ctx context.Context, id string, status domain.UserStatus) (domain.DirectoryRecord, error)
	Delete(ctx context.Context, id string) error
}

// AuthUserRemover deletes authentication records.
type AuthUserRemover interface {
	Delete(ctx context.Context, id string) error
}

type SessionRevoker interface {
	RevokeAll(ctx context.Context, userID string) error
}

type EventPublisher interface {
	PublishUserStatusChanged(ctx context.Context, evt domain.UserStatusChangedEvent) error
	PublishUserDeleted(ctx context.Context, evt domain.UserDeletedEvent) error
}

// DecisionRecorder receives one entry per authorization decision.
type DecisionRecorder interface {
	AdminDecision(ctx context.Context, userID, email string, granted bool, source string)
}
