package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

func TestHandleNotification_IgnoresOtherTopics(t *testing.T) {
	svc, gw, repo, users, _ := newSvcForTest(Config{})

	assert.Equal(t, OutcomeIgnored, svc.HandleNotification(context.Background(), "merchant_order", "123"))
	assert.Equal(t, OutcomeIgnored, svc.HandleNotification(context.Background(), "", "123"))
	assert.Equal(t, OutcomeIgnored, svc.HandleNotification(context.Background(), "payment", ""))
	assert.Empty(t, gw.fetchedID)
	assert.Empty(t, repo.upserted)
	assert.Empty(t, users.calls)
}

func TestHandleNotification_FetchFailure(t *testing.T) {
	svc, gw, repo, _, _ := newSvcForTest(Config{})
	gw.getErr = errors.New("timeout")

	assert.Equal(t, OutcomeFetchFailed, svc.HandleNotification(context.Background(), "payment", "123"))
	assert.Empty(t, repo.upserted)
}

func TestHandleNotification_NoUserInMetadata(t *testing.T) {
	svc, gw, repo, _, _ := newSvcForTest(Config{})
	gw.payments["123"] = GatewayPayment{ID: "123", Status: "approved", Metadata: map[string]any{}}

	assert.Equal(t, OutcomeNoUser, svc.HandleNotification(context.Background(), "payment", "123"))
	assert.Empty(t, repo.upserted)
}

func TestHandleNotification_Approved_ActivatesUser(t *testing.T) {
	svc, gw, repo, users, pub := newSvcForTest(Config{})
	gw.payments["123"] = GatewayPayment{
		ID: "123", Status: "approved", StatusDetail: "accredited",
		TransactionAmount: 29.9, CurrencyID: "BRL", PaymentMethodID: "pix", PaymentTypeID: "bank_transfer",
		Metadata: map[string]any{"user_id": "u1"},
		Raw:      []byte(`{"id":123}`),
	}

	out := svc.HandleNotification(context.Background(), "payment", "123")
	assert.Equal(t, OutcomeApplied, out)

	require.Len(t, repo.upserted, 1)
	p := repo.upserted[0]
	assert.Equal(t, "123", p.PaymentID)
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "approved", p.Status)
	assert.Equal(t, 29.9, p.Valor)
	assert.Equal(t, "BRL", p.Moeda)

	require.Len(t, users.calls, 1)
	assert.Equal(t, statusCall{"u1", domain.StatusAtivo}, users.calls[0])

	require.Len(t, pub.events, 1)
	assert.Equal(t, "ativo", pub.events[0].UserStatus)
}

func TestHandleNotification_MissingStatusTreatedAsPending(t *testing.T) {
	svc, gw, _, users, _ := newSvcForTest(Config{})
	gw.payments["9"] = GatewayPayment{ID: "9", Metadata: map[string]any{"userId": "u2"}}

	svc.HandleNotification(context.Background(), "payment", "9")
	require.Len(t, users.calls, 1)
	assert.Equal(t, domain.StatusPendente, users.calls[0].status)
}

func TestHandleNotification_RepoFailure_StillUpdatesUser(t *testing.T) {
	svc, gw, repo, users, _ := newSvcForTest(Config{})
	repo.err = errors.New("db down")
	gw.payments["5"] = GatewayPayment{ID: "5", Status: "refunded", Metadata: map[string]any{"userId": "u3"}}

	assert.Equal(t, OutcomeStoreFailed, svc.HandleNotification(context.Background(), "payment", "5"))
	require.Len(t, users.calls, 1)
	assert.Equal(t, domain.StatusReembolso, users.calls[0].status)
}

func TestHandleNotification_UserUpdateFailure(t *testing.T) {
	svc, gw, _, users, pub := newSvcForTest(Config{})
	users.err = errors.New("db down")
	gw.payments["5"] = GatewayPayment{ID: "5", Status: "rejected", Metadata: map[string]any{"userId": "u3"}}

	assert.Equal(t, OutcomeStoreFailed, svc.HandleNotification(context.Background(), "payment", "5"))
	assert.Empty(t, pub.events)
}

func TestGatewayPayment_UserID(t *testing.T) {
	assert.Equal(t, "a", GatewayPayment{Metadata: map[string]any{"userId": "a"}}.UserID())
	assert.Equal(t, "b", GatewayPayment{Metadata: map[string]any{"user_id": "b"}}.UserID())
	assert.Equal(t, "", GatewayPayment{Metadata: map[string]any{"userId": 7}}.UserID())
	assert.Equal(t, "", GatewayPayment{}.UserID())
}
