package payment

import (
	"context"
	"sync"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

type fakeGateway struct {
	mu sync.Mutex

	pref      domain.PaymentPreference
	prefErr   error
	payments  map[string]GatewayPayment
	getErr    error
	requests  []PreferenceRequest
	fetchedID []string
}

func (g *fakeGateway) CreatePreference(ctx context.Context, req PreferenceRequest) (domain.PaymentPreference, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.prefErr != nil {
		return domain.PaymentPreference{}, g.prefErr
	}
	return g.pref, nil
}

func (g *fakeGateway) GetPayment(ctx context.Context, id string) (GatewayPayment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetchedID = append(g.fetchedID, id)
	if g.getErr != nil {
		return GatewayPayment{}, g.getErr
	}
	p, ok := g.payments[id]
	if !ok {
		return GatewayPayment{}, domain.New(domain.KindNotFound, "payment_not_found", "payment not found")
	}
	return p, nil
}

type fakeRepo struct {
	err      error
	upserted []domain.Payment
}

func (r *fakeRepo) Upsert(ctx context.Context, p domain.Payment) error {
	r.upserted = append(r.upserted, p)
	return r.err
}

type statusCall struct {
	userID string
	status domain.UserStatus
}

type fakeUsers struct {
	err   error
	calls []statusCall
}

func (u *fakeUsers) SetStatus(ctx context.Context, userID string, status domain.UserStatus) error {
	u.calls = append(u.calls, statusCall{userID, status})
	return u.err
}

type fakePublisher struct {
	events []domain.PaymentStatusChangedEvent
}

func (p *fakePublisher) PublishPaymentStatusChanged(ctx context.Context, evt domain.PaymentStatusChangedEvent) error {
	p.events = append(p.events, evt)
	return nil
}

func newSvcForTest(cfg Config) (*Service, *fakeGateway, *fakeRepo, *fakeUsers, *fakePublisher) {
	gw := &fakeGateway{payments: map[string]GatewayPayment{}}
	repo := &fakeRepo{}
	users := &fakeUsers{}
	pub := &fakePublisher{}
	return NewService(gw, repo, users, pub, cfg), gw, repo, users, pub
}
