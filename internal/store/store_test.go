package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/saeid-a/FitProfileSync/internal/models"
)

type stubGateway struct {
	identity    Identity
	signInErr   error
	registerErr error
	resetErr    error
	signedIn    bool
	signOutHits int
}

func (g *stubGateway) SignIn(_ context.Context, _, _ string) (Identity, error) {
	if g.signInErr != nil {
		return Identity{}, g.signInErr
	}
	g.signedIn = true
	return g.identity, nil
}

func (g *stubGateway) Register(_ context.Context, _, _ string) (Identity, error) {
	if g.registerErr != nil {
		return Identity{}, g.registerErr
	}
	g.signedIn = true
	return g.identity, nil
}

func (g *stubGateway) SendPasswordReset(_ context.Context, _ string) error {
	return g.resetErr
}

func (g *stubGateway) SignOut() {
	g.signOutHits++
	g.signedIn = false
}

func (g *stubGateway) CurrentIdentity() (string, bool) {
	if !g.signedIn {
		return "", false
	}
	return g.identity.ID, true
}

func (g *stubGateway) CurrentEmail() (string, bool) {
	if !g.signedIn {
		return "", false
	}
	return g.identity.Email, true
}

type stubRemote struct {
	profiles  map[string]*models.Profile
	getErr    error
	setErr    error
	mergeErr  error
	setCalls  int
	mergeHits int
	lastPatch ProfilePatch
}

func newStubRemote() *stubRemote {
	return &stubRemote{profiles: make(map[string]*models.Profile)}
}

func (r *stubRemote) Get(_ context.Context, id string) (*models.Profile, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	profile, ok := r.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *profile
	return &copied, nil
}

func (r *stubRemote) Set(_ context.Context, id string, profile *models.Profile) error {
	r.setCalls++
	if r.setErr != nil {
		return r.setErr
	}
	copied := *profile
	r.profiles[id] = &copied
	return nil
}

func (r *stubRemote) Merge(_ context.Context, id string, patch ProfilePatch) error {
	r.mergeHits++
	r.lastPatch = patch
	if r.mergeErr != nil {
		return r.mergeErr
	}
	existing, ok := r.profiles[id]
	if !ok {
		return ErrNotFound
	}
	existing.Age = patch.Age
	existing.Height = patch.Height
	existing.Weight = patch.Weight
	existing.Goal = patch.Goal
	existing.ActivityLevel = patch.ActivityLevel
	return nil
}

type memCache struct {
	slots map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{slots: make(map[string][]byte)}
}

func (c *memCache) Put(key string, value []byte) error {
	c.slots[key] = value
	return nil
}

func (c *memCache) Get(key string) ([]byte, bool) {
	value, ok := c.slots[key]
	return value, ok
}

func (c *memCache) Remove(key string) error {
	delete(c.slots, key)
	return nil
}

func testProfile(id string) *models.Profile {
	return &models.Profile{
		ID:                  id,
		Email:               "sam@example.com",
		Age:                 30,
		Height:              175,
		Weight:              70,
		Gender:              models.GenderMale,
		Goal:                models.GoalMaintain,
		ActivityLevel:       models.ActivityModerate,
		OnboardingCompleted: true,
	}
}

func cachedProfile(t *testing.T, cache *memCache, id string) *models.Profile {
	t.Helper()
	raw, ok := cache.Get(cacheKey(id))
	if !ok {
		t.Fatalf("expected cache entry for %s", id)
	}
	var profile models.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		t.Fatalf("decode cached profile: %v", err)
	}
	return &profile
}

func TestSaveProfileWritesThroughOnSuccess(t *testing.T) {
	remote := newStubRemote()
	cache := newMemCache()
	s := New(&stubGateway{}, remote, cache)

	profile := testProfile("u1")
	if err := s.SaveProfile(context.Background(), profile); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	if got := cachedProfile(t, cache, "u1"); *got != *profile {
		t.Fatalf("cache mismatch: got %+v want %+v", got, profile)
	}
}

func TestSaveProfileSkipsCacheOnFailure(t *testing.T) {
	remote := newStubRemote()
	remote.setErr = ErrNetwork
	cache := newMemCache()
	s := New(&stubGateway{}, remote, cache)

	if err := s.SaveProfile(context.Background(), testProfile("u1")); !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if _, ok := cache.Get(cacheKey("u1")); ok {
		t.Fatal("cache must not be written on a failed save")
	}
}

func TestFetchProfileRefreshesCache(t *testing.T) {
	remote := newStubRemote()
	cache := newMemCache()
	s := New(&stubGateway{}, remote, cache)

	want := testProfile("u1")
	remote.profiles["u1"] = want

	got, err := s.FetchProfile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("FetchProfile: %v", err)
	}
	if *got != *want {
		t.Fatalf("profile mismatch: got %+v", got)
	}
	if cached := cachedProfile(t, cache, "u1"); *cached != *want {
		t.Fatalf("cache not refreshed: %+v", cached)
	}
}

func TestFetchProfileFallsBackToCache(t *testing.T) {
	remote := newStubRemote()
	cache := newMemCache()
	s := New(&stubGateway{}, remote, cache)

	// Seed the cache through a successful save, then kill the remote.
	want := testProfile("u1")
	if err := s.SaveProfile(context.Background(), want); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	remote.getErr = ErrNetwork

	got, err := s.FetchProfile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected cache fallback to succeed, got %v", err)
	}
	if *got != *want {
		t.Fatalf("expected cached profile, got %+v", got)
	}
}

func TestFetchProfileSurfacesFailureOnEmptyCache(t *testing.T) {
	remote := newStubRemote()
	remote.getErr = ErrNetwork
	s := New(&stubGateway{}, remote, newMemCache())

	_, err := s.FetchProfile(context.Background(), "u1")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected original failure, got %v", err)
	}
}

func TestUpdateProfileMergesAndCachesFullProfile(t *testing.T) {
	remote := newStubRemote()
	cache := newMemCache()
	s := New(&stubGateway{}, remote, cache)

	remote.profiles["u1"] = testProfile("u1")

	updated := testProfile("u1")
	updated.Weight = 68.5
	updated.Goal = models.GoalLoseWeight
	if err := s.UpdateProfile(context.Background(), updated); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	if remote.lastPatch.Weight != 68.5 || remote.lastPatch.Goal != models.GoalLoseWeight {
		t.Fatalf("unexpected patch: %+v", remote.lastPatch)
	}
	if remote.profiles["u1"].Email != "sam@example.com" {
		t.Fatal("merge must not touch identity fields")
	}
	if got := cachedProfile(t, cache, "u1"); *got != *updated {
		t.Fatalf("expected full profile in cache, got %+v", got)
	}
}

func TestUpdateProfileIsIdempotent(t *testing.T) {
	remote := newStubRemote()
	cache := newMemCache()
	s := New(&stubGateway{}, remote, cache)

	remote.profiles["u1"] = testProfile("u1")
	updated := testProfile("u1")
	updated.Age = 31

	for i := 0; i < 2; i++ {
		if err := s.UpdateProfile(context.Background(), updated); err != nil {
			t.Fatalf("UpdateProfile #%d: %v", i+1, err)
		}
	}

	if *remote.profiles["u1"] != *updated {
		t.Fatalf("remote drifted: %+v", remote.profiles["u1"])
	}
	if got := cachedProfile(t, cache, "u1"); *got != *updated {
		t.Fatalf("cache drifted: %+v", got)
	}
	if remote.mergeHits != 2 {
		t.Fatalf("expected 2 merges, got %d", remote.mergeHits)
	}
}

func TestHasCompletedOnboardingSwallowsFailures(t *testing.T) {
	remote := newStubRemote()
	remote.getErr = ErrNetwork
	s := New(&stubGateway{}, remote, newMemCache())

	if s.HasCompletedOnboarding(context.Background(), "u1") {
		t.Fatal("expected false on failure")
	}

	remote.getErr = nil
	remote.profiles["u1"] = testProfile("u1")
	if !s.HasCompletedOnboarding(context.Background(), "u1") {
		t.Fatal("expected true for completed profile")
	}

	remote.profiles["u1"].OnboardingCompleted = false
	if s.HasCompletedOnboarding(context.Background(), "u1") {
		t.Fatal("expected false for incomplete profile")
	}
}

func TestHasCompletedOnboardingUsesCacheFallback(t *testing.T) {
	remote := newStubRemote()
	cache := newMemCache()
	s := New(&stubGateway{}, remote, cache)

	if err := s.SaveProfile(context.Background(), testProfile("u1")); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	remote.getErr = ErrNetwork

	if !s.HasCompletedOnboarding(context.Background(), "u1") {
		t.Fatal("expected cached completion flag")
	}
}

func TestSignOutClearsCachedProfile(t *testing.T) {
	gateway := &stubGateway{identity: Identity{ID: "u1", Email: "sam@example.com"}}
	remote := newStubRemote()
	cache := newMemCache()
	s := New(gateway, remote, cache)

	if _, err := s.SignIn(context.Background(), "sam@example.com", "password123"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if err := s.SaveProfile(context.Background(), testProfile("u1")); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	s.SignOut()

	if _, ok := cache.Get(cacheKey("u1")); ok {
		t.Fatal("expected cache cleared on sign-out")
	}
	if gateway.signOutHits != 1 {
		t.Fatalf("expected gateway sign-out, got %d calls", gateway.signOutHits)
	}
	if s.IsAuthenticated() {
		t.Fatal("expected unauthenticated after sign-out")
	}
}

func TestCachedProfileDiscardsCorruptEntries(t *testing.T) {
	cache := newMemCache()
	cache.slots[cacheKey("u1")] = []byte("{not json")
	s := New(&stubGateway{}, newStubRemote(), cache)

	if _, ok := s.CachedProfile("u1"); ok {
		t.Fatal("expected corrupt cache entry to be ignored")
	}
}
