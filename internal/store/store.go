package store

import (
	"context"
	"encoding/json"
	"log"

	"github.com/saeid-a/FitProfileSync/internal/models"
)

// Identity is the opaque account identity minted by the authentication
// gateway at registration.
type Identity struct {
	ID    string
	Email string
}

// AuthGateway is the external authentication collaborator. Session reads are
// synchronous; everything else is a fire-once remote call.
type AuthGateway interface {
	SignIn(ctx context.Context, email, password string) (Identity, error)
	Register(ctx context.Context, email, password string) (Identity, error)
	SendPasswordReset(ctx context.Context, email string) error
	SignOut()
	CurrentIdentity() (string, bool)
	CurrentEmail() (string, bool)
}

// ProfilePatch carries the editable fields merged into the remote record by
// UpdateProfile. Identity fields and the onboarding flag are never patched.
type ProfilePatch struct {
	Age           int
	Height        int
	Weight        float64
	Goal          models.Goal
	ActivityLevel models.ActivityLevel
}

// RemoteStore is the authoritative record store, keyed by profile id.
type RemoteStore interface {
	Get(ctx context.Context, id string) (*models.Profile, error)
	Set(ctx context.Context, id string, profile *models.Profile) error
	Merge(ctx context.Context, id string, patch ProfilePatch) error
}

// Cache is the best-effort local mirror: a key/value slot store that is
// overwritten wholesale, consulted only when a remote read fails, and cleared
// on sign-out.
type Cache interface {
	Put(key string, value []byte) error
	Get(key string) ([]byte, bool)
	Remove(key string) error
}

// ProfileStore mediates between the authentication gateway, the remote record
// store and the local cache. Failures never escape as panics; every operation
// returns a value or a taxonomy error.
type ProfileStore struct {
	gateway AuthGateway
	remote  RemoteStore
	cache   Cache
}

func New(gateway AuthGateway, remote RemoteStore, cache Cache) *ProfileStore {
	return &ProfileStore{gateway: gateway, remote: remote, cache: cache}
}

func cacheKey(id string) string {
	return "profile:" + id
}

func (s *ProfileStore) SignIn(ctx context.Context, email, password string) (Identity, error) {
	return s.gateway.SignIn(ctx, email, password)
}

func (s *ProfileStore) Register(ctx context.Context, email, password string) (Identity, error) {
	return s.gateway.Register(ctx, email, password)
}

func (s *ProfileStore) RequestPasswordReset(ctx context.Context, email string) error {
	return s.gateway.SendPasswordReset(ctx, email)
}

// SignOut tears down the gateway session and drops the cached profile for the
// signed-in identity.
func (s *ProfileStore) SignOut() {
	if id, ok := s.gateway.CurrentIdentity(); ok {
		if err := s.cache.Remove(cacheKey(id)); err != nil {
			log.Printf("sign-out: drop cached profile: %v", err)
		}
	}
	s.gateway.SignOut()
}

func (s *ProfileStore) IsAuthenticated() bool {
	_, ok := s.gateway.CurrentIdentity()
	return ok
}

func (s *ProfileStore) CurrentIdentity() (string, bool) {
	return s.gateway.CurrentIdentity()
}

func (s *ProfileStore) CurrentEmail() (string, bool) {
	return s.gateway.CurrentEmail()
}

// SaveProfile writes the full profile to the remote store and, on success
// only, through to the local cache.
func (s *ProfileStore) SaveProfile(ctx context.Context, profile *models.Profile) error {
	if err := s.remote.Set(ctx, profile.ID, profile); err != nil {
		return err
	}
	s.writeThrough(profile)
	return nil
}

// FetchProfile reads the remote record. A successful read refreshes the
// cache. A failed read falls back to the cache: a hit is returned as a
// success regardless of age, a miss surfaces the original failure.
func (s *ProfileStore) FetchProfile(ctx context.Context, id string) (*models.Profile, error) {
	profile, err := s.remote.Get(ctx, id)
	if err == nil {
		s.writeThrough(profile)
		return profile, nil
	}

	if cached, ok := s.CachedProfile(id); ok {
		return cached, nil
	}
	return nil, err
}

// UpdateProfile merges the editable fields into the remote record and writes
// the full given profile through to the cache.
func (s *ProfileStore) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	patch := ProfilePatch{
		Age:           profile.Age,
		Height:        profile.Height,
		Weight:        profile.Weight,
		Goal:          profile.Goal,
		ActivityLevel: profile.ActivityLevel,
	}
	if err := s.remote.Merge(ctx, profile.ID, patch); err != nil {
		return err
	}
	s.writeThrough(profile)
	return nil
}

// HasCompletedOnboarding swallows every failure: the completion check must
// never block a caller's flow.
func (s *ProfileStore) HasCompletedOnboarding(ctx context.Context, id string) bool {
	profile, err := s.FetchProfile(ctx, id)
	if err != nil {
		return false
	}
	return profile.OnboardingCompleted
}

// CachedProfile reads the local mirror directly. Exposed because the
// controller's load path consults the cache a second time after a failed
// fetch.
func (s *ProfileStore) CachedProfile(id string) (*models.Profile, bool) {
	raw, ok := s.cache.Get(cacheKey(id))
	if !ok {
		return nil, false
	}
	var profile models.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		log.Printf("cache: discard corrupt profile %s: %v", id, err)
		return nil, false
	}
	return &profile, true
}

func (s *ProfileStore) writeThrough(profile *models.Profile) {
	raw, err := json.Marshal(profile)
	if err != nil {
		log.Printf("cache: encode profile %s: %v", profile.ID, err)
		return
	}
	if err := s.cache.Put(cacheKey(profile.ID), raw); err != nil {
		log.Printf("cache: write-through profile %s: %v", profile.ID, err)
	}
}
