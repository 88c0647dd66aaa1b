package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

type auditEntry struct {
	action string
	fields map[string]string
}

type fakeUserRepo struct {
	mu sync.Mutex

	byID    map[string]domain.AuthUser
	byEmail map[string]domain.AuthUser

	getByEmailErr error
	createErr     error
	deleteErr     error

	deleted []string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    map[string]domain.AuthUser{},
		byEmail: map[string]domain.AuthUser{},
	}
}

func (f *fakeUserRepo) put(u domain.AuthUser) {
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.AuthUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByEmailErr != nil {
		return domain.AuthUser{}, f.getByEmailErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return domain.AuthUser{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (domain.AuthUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[id]
	if !ok {
		return domain.AuthUser{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.AuthUser) (domain.AuthUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.AuthUser{}, f.createErr
	}
	f.put(u)
	return u, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleted = append(f.deleted, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrUserNotFound()
	}
	delete(f.byID, id)
	delete(f.byEmail, u.Email)
	return nil
}

type fakeDirectory struct {
	mu        sync.Mutex
	byID      map[string]domain.DirectoryRecord
	insertErr error
	findErr   error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{byID: map[string]domain.DirectoryRecord{}}
}

func (d *fakeDirectory) Insert(ctx context.Context, rec domain.DirectoryRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.insertErr != nil {
		return d.insertErr
	}
	d.byID[rec.ID] = rec
	return nil
}

func (d *fakeDirectory) FindByID(ctx context.Context, id string) (domain.DirectoryRecord, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.findErr != nil {
		return domain.DirectoryRecord{}, false, d.findErr
	}
	r, ok := d.byID[id]
	return r, ok, nil
}

type fakeHasher struct {
	hashFn func(pw string) (string, error)
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(password)
	}
	return "hash:" + password, nil
}

func (h *fakeHasher) Compare(hash string, password string) error {
	if hash == "hash:"+password {
		return nil
	}
	return errors.New("mismatch")
}

type fakeSigner struct {
	signErr error
	signed  []domain.Principal
}

func (s *fakeSigner) SignAccessToken(p domain.Principal, ttl time.Duration) (string, error) {
	if s.signErr != nil {
		return "", s.signErr
	}
	s.signed = append(s.signed, p)
	return fmt.Sprintf("jwt(%s)", p.ID), nil
}

func (s *fakeSigner) VerifyAccessToken(token string) (domain.Principal, error) {
	return domain.Principal{}, domain.ErrTokenInvalid()
}

type fakeSessions struct {
	mu sync.Mutex

	byToken map[string]string // refreshToken -> userID

	createErr error
	revoked   []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byToken: map[string]string{}}
}

func (s *fakeSessions) CreateRefreshToken(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return "", s.createErr
	}
	tok := "rft:" + userID
	s.byToken[tok] = userID
	return tok, nil
}

func (s *fakeSessions) RotateRefreshToken(ctx context.Context, oldToken string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, ok := s.byToken[oldToken]
	if !ok {
		return "", errors.New("invalid refresh")
	}
	delete(s.byToken, oldToken)
	newTok := "rft2:" + uid
	s.byToken[newTok] = uid
	return newTok, nil
}

func (s *fakeSessions) RevokeRefreshToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byToken, token)
	s.revoked = append(s.revoked, token)
	return nil
}

func (s *fakeSessions) RevokeAll(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for tok, uid := range s.byToken {
		if uid == userID {
			delete(s.byToken, tok)
		}
	}
	return nil
}

func (s *fakeSessions) GetUserIDByRefreshToken(ctx context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, ok := s.byToken[token]
	if !ok {
		return "", errors.New("invalid refresh")
	}
	return uid, nil
}

type testDeps struct {
	users    *fakeUserRepo
	dir      *fakeDirectory
	hasher   *fakeHasher
	signer   *fakeSigner
	sessions *fakeSessions
	audits   *[]auditEntry
}

func newSvcForTest() (*Service, testDeps) {
	d := testDeps{
		users:    newFakeUserRepo(),
		dir:      newFakeDirectory(),
		hasher:   &fakeHasher{},
		signer:   &fakeSigner{},
		sessions: newFakeSessions(),
		audits:   &[]auditEntry{},
	}
	svc := NewService(d.users, d.dir, d.hasher, d.signer, d.sessions, Config{
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	}).WithAudit(func(action string, fields map[string]string) {
		*d.audits = append(*d.audits, auditEntry{action: action, fields: fields})
	})
	return svc, d
}
