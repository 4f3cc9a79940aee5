package gateway

import (
	"context"
	"sync"

	"github.com/saeid-a/FitProfileSync/internal/store"
)

// Authenticator is the remote side of the gateway; Session adds the
// per-client state the store reads synchronously.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (store.Identity, error)
	CreateAccount(ctx context.Context, email, password string) (store.Identity, error)
	CreatePasswordReset(ctx context.Context, email string) error
}

// Session implements store.AuthGateway: fire-once remote calls through the
// Authenticator, plus mutex-guarded current-identity state.
type Session struct {
	auth Authenticator

	mu       sync.Mutex
	identity *store.Identity
}

func NewSession(auth Authenticator) *Session {
	return &Session{auth: auth}
}

// NewAuthenticatedSession resumes a session for an already verified identity,
// e.g. one carried by a bearer token.
func NewAuthenticatedSession(auth Authenticator, identity store.Identity) *Session {
	return &Session{auth: auth, identity: &identity}
}

func (s *Session) SignIn(ctx context.Context, email, password string) (store.Identity, error) {
	identity, err := s.auth.Authenticate(ctx, email, password)
	if err != nil {
		return store.Identity{}, err
	}
	s.mu.Lock()
	s.identity = &identity
	s.mu.Unlock()
	return identity, nil
}

func (s *Session) Register(ctx context.Context, email, password string) (store.Identity, error) {
	identity, err := s.auth.CreateAccount(ctx, email, password)
	if err != nil {
		return store.Identity{}, err
	}
	s.mu.Lock()
	s.identity = &identity
	s.mu.Unlock()
	return identity, nil
}

func (s *Session) SendPasswordReset(ctx context.Context, email string) error {
	return s.auth.CreatePasswordReset(ctx, email)
}

func (s *Session) SignOut() {
	s.mu.Lock()
	s.identity = nil
	s.mu.Unlock()
}

func (s *Session) CurrentIdentity() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return "", false
	}
	return s.identity.ID, true
}

func (s *Session) CurrentEmail() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return "", false
	}
	return s.identity.Email, true
}
