package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

type fakeSeederHasher struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (h *fakeSeederHasher) Hash(pw string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	if h.err != nil {
		return "", h.err
	}
	return "HASH(" + pw + ")", nil
}

type fakeSeederRepo struct {
	existing *domain.AuthUser
	getErr   error
	created  []domain.AuthUser
}

func (r *fakeSeederRepo) GetByEmail(ctx context.Context, email string) (domain.AuthUser, error) {
	if r.getErr != nil {
		return domain.AuthUser{}, r.getErr
	}
	if r.existing != nil {
		return *r.existing, nil
	}
	return domain.AuthUser{}, domain.ErrUserNotFound()
}

func (r *fakeSeederRepo) Create(ctx context.Context, u domain.AuthUser) (domain.AuthUser, error) {
	r.created = append(r.created, u)
	return u, nil
}

type fakeSeederDirectory struct {
	upserts []domain.DirectoryRecord
}

func (d *fakeSeederDirectory) UpsertRole(ctx context.Context, rec domain.DirectoryRecord) error {
	d.upserts = append(d.upserts, rec)
	return nil
}

func TestSeedAdmin_CreatesAccountAndDirectoryRow(t *testing.T) {
	t.Parallel()

	repo := &fakeSeederRepo{}
	dir := &fakeSeederDirectory{}
	hasher := &fakeSeederHasher{}

	SeedAdmin(context.Background(), repo, dir, hasher, " Admin@Example.com ", "S3nha!")

	if len(repo.created) != 1 {
		t.Fatalf("expected 1 user created, got %d", len(repo.created))
	}
	u := repo.created[0]
	if u.Email != "admin@example.com" || u.PasswordHash != "HASH(S3nha!)" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.AppMetadata["role"] != "admin" {
		t.Fatalf("expected app_metadata.role=admin, got %+v", u.AppMetadata)
	}
	if len(dir.upserts) != 1 || dir.upserts[0].Papel != "admin" || dir.upserts[0].ID != u.ID {
		t.Fatalf("unexpected directory upserts: %+v", dir.upserts)
	}
}

func TestSeedAdmin_ExistingAccount_OnlyPromotes(t *testing.T) {
	t.Parallel()

	repo := &fakeSeederRepo{existing: &domain.AuthUser{ID: "u1", Email: "admin@example.com"}}
	dir := &fakeSeederDirectory{}
	hasher := &fakeSeederHasher{}

	SeedAdmin(context.Background(), repo, dir, hasher, "admin@example.com", "pw")

	if hasher.calls != 0 || len(repo.created) != 0 {
		t.Fatal("existing account must not be recreated")
	}
	if len(dir.upserts) != 1 || dir.upserts[0].ID != "u1" {
		t.Fatalf("expected promotion of u1, got %+v", dir.upserts)
	}
}

func TestSeedAdmin_NoCredentials_NoOp(t *testing.T) {
	t.Parallel()

	repo := &fakeSeederRepo{}
	dir := &fakeSeederDirectory{}
	SeedAdmin(context.Background(), repo, dir, &fakeSeederHasher{}, "", "")

	if len(repo.created) != 0 || len(dir.upserts) != 0 {
		t.Fatal("expected no-op")
	}
}

func TestSeedAdmin_HashFail_Skips(t *testing.T) {
	t.Parallel()

	repo := &fakeSeederRepo{}
	dir := &fakeSeederDirectory{}
	SeedAdmin(context.Background(), repo, dir, &fakeSeederHasher{err: errors.New("hash fail")}, "a@b.co", "pw")

	if len(repo.created) != 0 || len(dir.upserts) != 0 {
		t.Fatal("expected nothing persisted when hashing fails")
	}
}
