package payment

import (
	"context"
	"strings"

	"github.com/simulado-cea/simulado-service/internal/domain"
	"github.com/simulado-cea/simulado-service/internal/logger"
	"github.com/simulado-cea/simulado-service/internal/metrics"
)

// Outcome summarizes what a notification did. The webhook always acknowledges.
type Outcome string

const (
	OutcomeApplied     Outcome = "applied"
	OutcomeIgnored     Outcome = "ignored"
	OutcomeFetchFailed Outcome = "fetch_failed"
	OutcomeNoUser      Outcome = "no_user"
	OutcomeStoreFailed Outcome = "store_failed"
)

const topicPayment = "payment"

// HandleNotification processes one gateway notification. Only payment topics are
// acted upon: the payment is fetched, recorded, and the owner's status updated.
func (s *Service) HandleNotification(ctx context.Context, topic, paymentID string) Outcome {
	out := s.handle(ctx, strings.TrimSpace(topic), strings.TrimSpace(paymentID))
	metrics.PaymentNotificationsTotal.WithLabelValues(string(out)).Inc()
	return out
}

func (s *Service) handle(ctx context.Context, topic, paymentID string) Outcome {
	lg := logger.WithCtx(ctx)

	if topic != topicPayment {
		return OutcomeIgnored
	}
	if paymentID == "" {
		lg.Warn().Msg("payment notification without id")
		return OutcomeIgnored
	}

	pay, err := s.gw.GetPayment(ctx, paymentID)
	if err != nil {
		lg.Error().Err(err).Str("payment_id", paymentID).Msg("fetch payment failed")
		return OutcomeFetchFailed
	}

	userID := pay.UserID()
	if userID == "" {
		lg.Warn().Str("payment_id", paymentID).Msg("payment without metadata user id, nothing to update")
		return OutcomeNoUser
	}

	status := pay.Status
	if strings.TrimSpace(status) == "" {
		status = "pending"
	}
	userStatus := domain.UserStatusForPayment(status)

	out := OutcomeApplied
	rec := domain.Payment{
		PaymentID:    pay.ID,
		UserID:       userID,
		Status:       status,
		StatusDetail: pay.StatusDetail,
		Valor:        pay.TransactionAmount,
		Moeda:        pay.CurrencyID,
		Metodo:       pay.PaymentMethodID,
		Tipo:         pay.PaymentTypeID,
		RawData:      pay.Raw,
		UpdatedAt:    s.now().UTC(),
	}
	if rec.PaymentID == "" {
		rec.PaymentID = paymentID
	}
	if err := s.repo.Upsert(ctx, rec); err != nil {
		lg.Error().Err(err).Str("payment_id", rec.PaymentID).Msg("record payment failed")
		out = OutcomeStoreFailed
	}

	if err := s.users.SetStatus(ctx, userID, userStatus); err != nil {
		lg.Error().Err(err).Str("user_id", userID).Str("status", string(userStatus)).Msg("update user status from payment failed")
		return OutcomeStoreFailed
	}

	lg.Info().Str("payment_id", rec.PaymentID).Str("user_id", userID).Str("status", string(userStatus)).
		Msg("user status updated from payment")
	s.audit("payment.apply_notification", map[string]string{
		"payment_id": rec.PaymentID, "user_id": userID, "payment_status": status,
		"user_status": string(userStatus), "result": "success",
	})

	if s.pub != nil {
		evt := domain.PaymentStatusChangedEvent{
			PaymentID:  rec.PaymentID,
			UserID:     userID,
			Status:     status,
			UserStatus: string(userStatus),
			Amount:     rec.Valor,
			OccurredAt: rec.UpdatedAt,
		}
		if err := s.pub.PublishPaymentStatusChanged(ctx, evt); err != nil {
			lg.Warn().Err(err).Str("payment_id", rec.PaymentID).Msg("publish payment status failed")
		}
	}
	return out
}
