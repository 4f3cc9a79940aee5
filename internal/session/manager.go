package session

import (
	"sync"

	"github.com/saeid-a/FitProfileSync/internal/controller"
	"github.com/saeid-a/FitProfileSync/internal/gateway"
	"github.com/saeid-a/FitProfileSync/internal/store"
	"github.com/saeid-a/FitProfileSync/internal/wizard"
)

// Session binds one signed-in identity to its profile store, controller and,
// while onboarding is in flight, a wizard.
type Session struct {
	Identity   store.Identity
	Store      *store.ProfileStore
	Controller *controller.ProfileController

	mu     sync.Mutex
	wizard *wizard.Wizard
}

// StartWizard begins (or restarts) the onboarding flow for this session.
func (s *Session) StartWizard() *wizard.Wizard {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wizard = wizard.New(s.Controller, s.Identity.ID, s.Identity.Email)
	return s.wizard
}

func (s *Session) ActiveWizard() (*wizard.Wizard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wizard == nil {
		return nil, false
	}
	return s.wizard, true
}

// EndWizard abandons the flow; the transient accumulator is discarded.
func (s *Session) EndWizard() {
	s.mu.Lock()
	s.wizard = nil
	s.mu.Unlock()
}

// WithWizard runs fn while holding the session's wizard lock. The wizard
// itself is not safe for concurrent use.
func (s *Session) WithWizard(fn func(w *wizard.Wizard) error) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wizard == nil {
		return false, nil
	}
	err := fn(s.wizard)
	if s.wizard.Done() {
		s.wizard = nil
	}
	return true, err
}

// Manager creates and tracks per-identity sessions.
type Manager struct {
	auth   gateway.Authenticator
	remote store.RemoteStore
	cache  store.Cache

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(auth gateway.Authenticator, remote store.RemoteStore, cache store.Cache) *Manager {
	return &Manager{
		auth:     auth,
		remote:   remote,
		cache:    cache,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for an identity, creating it on first use.
func (m *Manager) Get(identity store.Identity) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.sessions[identity.ID]; ok {
		return existing
	}

	gw := gateway.NewAuthenticatedSession(m.auth, identity)
	st := store.New(gw, m.remote, m.cache)
	s := &Session{
		Identity:   identity,
		Store:      st,
		Controller: controller.New(st),
	}
	m.sessions[identity.ID] = s
	return s
}

func (m *Manager) Lookup(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// End signs the session out (clearing its cached profile), closes the
// controller and forgets the session.
func (m *Manager) End(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return
	}
	s.Controller.SignOut()
	s.Controller.Close()
}
