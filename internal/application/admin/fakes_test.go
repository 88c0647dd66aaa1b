package admin

import (
	"context"
	"sync"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

type fakeDirectory struct {
	mu sync.Mutex

	byID map[string]domain.DirectoryRecord

	findErr   error
	listErr   error
	statsErr  error
	updateErr error
	deleteErr error

	findCalls int
	deleted   []string
}

func newFakeDirectory(recs ...domain.DirectoryRecord) *fakeDirectory {
	f := &fakeDirectory{byID: map[string]domain.DirectoryRecord{}}
	for _, r := range recs {
		f.byID[r.ID] = r
	}
	return f
}

func (f *fakeDirectory) FindByID(ctx context.Context, id string) (domain.DirectoryRecord, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.findCalls++
	if f.findErr != nil {
		return domain.DirectoryRecord{}, false, f.findErr
	}
	r, ok := f.byID[id]
	return r, ok, nil
}

func (f *fakeDirectory) List(ctx context.Context) ([]domain.DirectoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.DirectoryRecord, 0, len(f.byID))
	for _, r := range f.byID {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeDirectory) Stats(ctx context.Context) (domain.DirectoryStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.statsErr != nil {
		return domain.DirectoryStats{}, f.statsErr
	}
	st := domain.DirectoryStats{TotalUsuarios: len(f.byID)}
	for _, r := range f.byID {
		if r.IsActive() {
			st.UsuariosAtivos++
		}
	}
	return st, nil
}

func (f *fakeDirectory) UpdateStatus(ctx context.Context, id string, status domain.UserStatus) (domain.DirectoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return domain.DirectoryRecord{}, f.updateErr
	}
	r, ok := f.byID[id]
	if !ok {
		return domain.DirectoryRecord{}, domain.ErrUserNotFound()
	}
	r.Status = string(status)
	f.byID[id] = r
	return r, nil
}

func (f *fakeDirectory) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeAuthUsers struct {
	deleteErr error
	deleted   []string
}

func (f *fakeAuthUsers) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

type fakeRevoker struct {
	err     error
	revoked []string
}

func (f *fakeRevoker) RevokeAll(ctx context.Context, userID string) error {
	f.revoked = append(f.revoked, userID)
	return f.err
}

type fakePublisher struct {
	mu            sync.Mutex
	err           error
	statusChanged []domain.UserStatusChangedEvent
	deleted       []domain.UserDeletedEvent
}

func (p *fakePublisher) PublishUserStatusChanged(ctx context.Context, evt domain.UserStatusChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statusChanged = append(p.statusChanged, evt)
	return p.err
}

func (p *fakePublisher) PublishUserDeleted(ctx context.Context, evt domain.UserDeletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, evt)
	return p.err
}

type recordedDecision struct {
	userID  string
	granted bool
	source  string
}

type fakeRecorder struct {
	mu        sync.Mutex
	decisions []recordedDecision
}

func (r *fakeRecorder) AdminDecision(ctx context.Context, userID, email string, granted bool, source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions = append(r.decisions, recordedDecision{userID: userID, granted: granted, source: source})
}

type auditEntry struct {
	action string
	fields map[string]string
}
