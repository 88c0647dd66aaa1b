package memory

import (
	"context"

	"github.com/simulado-cea/simulado-service/internal/domain"
	"github.com/simulado-cea/simulado-service/internal/logger"
)

// NoopPublisher logs events instead of publishing them. Used when RABBIT_URL is empty.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (p *NoopPublisher) PublishUserStatusChanged(ctx context.Context, evt domain.UserStatusChangedEvent) error {
	logger.WithCtx(ctx).Debug().
		Str("user_id", evt.UserID).
		Str("status", evt.Status).
		Str("changed_by", evt.ChangedBy).
		Msg("[noop-pub] user status changed")
	return nil
}

func (p *NoopPublisher) PublishUserDeleted(ctx context.Context, evt domain.UserDeletedEvent) error {
	logger.WithCtx(ctx).Debug().
		Str("user_id", evt.UserID).
		Str("deleted_by", evt.DeletedBy).
		Msg("[noop-pub] user deleted")
	return nil
}

func (p *NoopPublisher) PublishPaymentStatusChanged(ctx context.Context, evt domain.PaymentStatusChangedEvent) error {
	logger.WithCtx(ctx).Debug().
		Str("payment_id", evt.PaymentID).
		Str("user_id", evt.UserID).
		Str("status", evt.Status).
		Msg("[noop-pub] payment status changed")
	return nil
}
