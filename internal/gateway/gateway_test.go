package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saeid-a/FitProfileSync/internal/store"
	"github.com/saeid-a/FitProfileSync/pkg/utils"
)

type stubRow struct {
	values []any
	err    error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i := range dest {
		target, ok := dest[i].(*string)
		if !ok {
			return errors.New("unsupported scan target")
		}
		*target = r.values[i].(string)
	}
	return nil
}

type stubDBTX struct {
	queryRowFn func(ctx context.Context, query string, args ...any) stubRow
	execErr    error
	execHits   int
	lastArgs   []any
}

func (db *stubDBTX) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	db.execHits++
	db.lastArgs = args
	if db.execErr != nil {
		return pgconn.CommandTag{}, db.execErr
	}
	return pgconn.NewCommandTag("INSERT 1"), nil
}

func (db *stubDBTX) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return db.queryRowFn(ctx, query, args...)
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return hash
}

func TestAuthenticateVerifiesPassword(t *testing.T) {
	hash := hashFor(t, "password123")
	db := &stubDBTX{
		queryRowFn: func(_ context.Context, _ string, _ ...any) stubRow {
			return stubRow{values: []any{"u1", "sam@example.com", hash}}
		},
	}
	auth := NewPgAuthenticator(db)

	identity, err := auth.Authenticate(context.Background(), " Sam@Example.com ", "password123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if identity.ID != "u1" || identity.Email != "sam@example.com" {
		t.Fatalf("unexpected identity: %+v", identity)
	}

	_, err = auth.Authenticate(context.Background(), "sam@example.com", "wrong")
	if !errors.Is(err, store.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
}

func TestAuthenticateUnknownAccount(t *testing.T) {
	db := &stubDBTX{
		queryRowFn: func(_ context.Context, _ string, _ ...any) stubRow {
			return stubRow{err: pgx.ErrNoRows}
		},
	}
	auth := NewPgAuthenticator(db)

	_, err := auth.Authenticate(context.Background(), "sam@example.com", "password123")
	if !errors.Is(err, store.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
}

func TestAuthenticateMapsDriverErrorToNetwork(t *testing.T) {
	db := &stubDBTX{
		queryRowFn: func(_ context.Context, _ string, _ ...any) stubRow {
			return stubRow{err: errors.New("connection reset")}
		},
	}
	auth := NewPgAuthenticator(db)

	_, err := auth.Authenticate(context.Background(), "sam@example.com", "password123")
	if !errors.Is(err, store.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestCreateAccountRejectsDuplicateEmail(t *testing.T) {
	db := &stubDBTX{execErr: &pgconn.PgError{Code: "23505"}}
	auth := NewPgAuthenticator(db)

	_, err := auth.CreateAccount(context.Background(), "sam@example.com", "password123")
	if !errors.Is(err, store.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
}

func TestCreateAccountMintsOpaqueIdentity(t *testing.T) {
	db := &stubDBTX{}
	auth := NewPgAuthenticator(db)

	identity, err := auth.CreateAccount(context.Background(), "Sam@Example.com", "password123")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if identity.ID == "" {
		t.Fatal("expected minted identity")
	}
	if identity.Email != "sam@example.com" {
		t.Fatalf("expected normalized email, got %q", identity.Email)
	}
}

type stubAuthenticator struct {
	identity store.Identity
	err      error
	resets   int
}

func (a *stubAuthenticator) Authenticate(_ context.Context, _, _ string) (store.Identity, error) {
	return a.identity, a.err
}

func (a *stubAuthenticator) CreateAccount(_ context.Context, _, _ string) (store.Identity, error) {
	return a.identity, a.err
}

func (a *stubAuthenticator) CreatePasswordReset(_ context.Context, _ string) error {
	a.resets++
	return a.err
}

func TestSessionTracksIdentity(t *testing.T) {
	auth := &stubAuthenticator{identity: store.Identity{ID: "u1", Email: "sam@example.com"}}
	session := NewSession(auth)

	if _, ok := session.CurrentIdentity(); ok {
		t.Fatal("expected no identity before sign-in")
	}

	if _, err := session.SignIn(context.Background(), "sam@example.com", "password123"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if id, ok := session.CurrentIdentity(); !ok || id != "u1" {
		t.Fatalf("expected identity u1, got %q ok=%v", id, ok)
	}
	if email, ok := session.CurrentEmail(); !ok || email != "sam@example.com" {
		t.Fatalf("expected email, got %q ok=%v", email, ok)
	}

	session.SignOut()
	if _, ok := session.CurrentIdentity(); ok {
		t.Fatal("expected no identity after sign-out")
	}
}

func TestSessionFailedSignInLeavesStateUntouched(t *testing.T) {
	auth := &stubAuthenticator{err: store.ErrAuthentication}
	session := NewSession(auth)

	if _, err := session.SignIn(context.Background(), "sam@example.com", "bad"); !errors.Is(err, store.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
	if _, ok := session.CurrentIdentity(); ok {
		t.Fatal("expected failed sign-in to leave session signed out")
	}
}

func TestNewAuthenticatedSessionResumesIdentity(t *testing.T) {
	session := NewAuthenticatedSession(&stubAuthenticator{}, store.Identity{ID: "u1", Email: "sam@example.com"})
	if id, ok := session.CurrentIdentity(); !ok || id != "u1" {
		t.Fatalf("expected resumed identity, got %q ok=%v", id, ok)
	}
}
