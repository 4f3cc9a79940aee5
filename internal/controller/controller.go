package controller

import (
	"context"
	"sync"

	"github.com/saeid-a/FitProfileSync/internal/metrics"
	"github.com/saeid-a/FitProfileSync/internal/models"
	"github.com/saeid-a/FitProfileSync/internal/store"
)

// Action identifies a user-initiated operation with a one-shot result slot.
type Action string

const (
	ActionSignIn        Action = "sign_in"
	ActionRegister      Action = "register"
	ActionPasswordReset Action = "password_reset"
	ActionProfileUpdate Action = "profile_update"
	ActionOnboarding    Action = "onboarding"
)

// ActionResult is consumed exactly once via TakeResult; it never replays.
type ActionResult struct {
	Action Action
	Err    error
}

// DerivedMetrics is republished whenever a complete profile is set.
type DerivedMetrics struct {
	BMR              int              `json:"bmr"`
	TDEE             int              `json:"tdee"`
	DailyCalorieGoal int              `json:"dailyCalorieGoal"`
	BMI              float64          `json:"bmi"`
	BMIClass         metrics.BMIClass `json:"bmiClass"`
}

// State is the observable surface consumed by presentation layers.
type State struct {
	Identity  string          `json:"identity"`
	Email     string          `json:"email"`
	LoggedIn  bool            `json:"loggedIn"`
	Profile   *models.Profile `json:"profile"`
	Metrics   *DerivedMetrics `json:"metrics"`
	Loading   bool            `json:"loading"`
	LastError string          `json:"lastError,omitempty"`
}

type profileBackend interface {
	SignIn(ctx context.Context, email, password string) (store.Identity, error)
	Register(ctx context.Context, email, password string) (store.Identity, error)
	RequestPasswordReset(ctx context.Context, email string) error
	SignOut()
	CurrentIdentity() (string, bool)
	SaveProfile(ctx context.Context, profile *models.Profile) error
	FetchProfile(ctx context.Context, id string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error
	CachedProfile(id string) (*models.Profile, bool)
}

// ProfileController orchestrates asynchronous store operations and holds the
// single source of observable truth. Actions are fire-once: nothing is
// cancelled, and completions after Close are dropped.
type ProfileController struct {
	backend profileBackend

	mu          sync.Mutex
	state       State
	results     map[Action]*ActionResult
	subscribers map[int]chan State
	nextSubID   int
	closed      bool
}

func New(backend profileBackend) *ProfileController {
	return &ProfileController{
		backend:     backend,
		results:     make(map[Action]*ActionResult),
		subscribers: make(map[int]chan State),
	}
}

// Subscribe returns a channel receiving state snapshots on every change and a
// teardown func the consumer owns. Slow consumers miss intermediate
// snapshots; Snapshot stays authoritative.
func (c *ProfileController) Subscribe() (<-chan State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	ch := make(chan State, 16)
	c.subscribers[id] = ch

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subscribers[id]; ok {
			delete(c.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Snapshot returns a copy of the current state.
func (c *ProfileController) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// TakeResult consumes the one-shot result for an action. The second take
// reports absence, which removes the "forgot to clear, re-fires on replay"
// failure mode.
func (c *ProfileController) TakeResult(action Action) (ActionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result, ok := c.results[action]
	if !ok {
		return ActionResult{}, false
	}
	delete(c.results, action)
	return *result, true
}

// Close tears the controller down. In-flight operations run to completion but
// their state updates become no-ops.
func (c *ProfileController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for id, sub := range c.subscribers {
		delete(c.subscribers, id)
		close(sub)
	}
}

func (c *ProfileController) SignIn(ctx context.Context, email, password string) {
	c.beginLoading()
	go func() {
		identity, err := c.backend.SignIn(ctx, email, password)
		c.finish(ActionSignIn, err, func() {
			if err == nil {
				c.state.Identity = identity.ID
				c.state.Email = identity.Email
				c.state.LoggedIn = true
			}
		})
	}()
}

// Register creates the account and immediately persists the all-default
// profile for it.
func (c *ProfileController) Register(ctx context.Context, email, password string) {
	c.beginLoading()
	go func() {
		identity, err := c.backend.Register(ctx, email, password)
		var profile *models.Profile
		if err == nil {
			profile = models.NewDefaultProfile(identity.ID, identity.Email)
			err = c.backend.SaveProfile(ctx, profile)
		}
		c.finish(ActionRegister, err, func() {
			if err == nil {
				c.state.Identity = identity.ID
				c.state.Email = identity.Email
				c.state.LoggedIn = true
				c.setProfileLocked(profile)
			}
		})
	}()
}

func (c *ProfileController) RequestPasswordReset(ctx context.Context, email string) {
	c.beginLoading()
	go func() {
		err := c.backend.RequestPasswordReset(ctx, email)
		c.finish(ActionPasswordReset, err, nil)
	}()
}

// SignOut is synchronous: the gateway session and cache clearing do not block.
func (c *ProfileController) SignOut() {
	c.backend.SignOut()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state = State{}
	c.results = make(map[Action]*ActionResult)
	c.notifyLocked()
}

// LoadProfile fetches the signed-in identity's profile. When the fetch fails
// it consults the cache once more on top of the store's own fallback and
// publishes whatever is found.
func (c *ProfileController) LoadProfile(ctx context.Context) {
	id, ok := c.backend.CurrentIdentity()
	if !ok {
		return
	}
	c.beginLoading()
	go func() {
		profile, err := c.backend.FetchProfile(ctx, id)
		if err != nil {
			if cached, ok := c.backend.CachedProfile(id); ok {
				profile = cached
			}
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return
		}
		c.state.Loading = false
		if err != nil {
			c.state.LastError = err.Error()
		}
		if profile != nil {
			c.setProfileLocked(profile)
		}
		c.notifyLocked()
	}()
}

func (c *ProfileController) UpdateProfile(ctx context.Context, profile *models.Profile) {
	c.beginLoading()
	go func() {
		err := c.backend.UpdateProfile(ctx, profile)
		c.finish(ActionProfileUpdate, err, func() {
			if err == nil {
				c.setProfileLocked(profile)
			}
		})
	}()
}

// CompleteOnboarding commits the wizard's assembled profile wholesale.
func (c *ProfileController) CompleteOnboarding(ctx context.Context, profile *models.Profile) {
	profile.OnboardingCompleted = true
	c.beginLoading()
	go func() {
		err := c.backend.SaveProfile(ctx, profile)
		c.finish(ActionOnboarding, err, func() {
			if err == nil {
				c.setProfileLocked(profile)
			}
		})
	}()
}

func (c *ProfileController) beginLoading() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state.Loading = true
	c.notifyLocked()
}

func (c *ProfileController) finish(action Action, err error, apply func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state.Loading = false
	c.results[action] = &ActionResult{Action: action, Err: err}
	if err != nil {
		c.state.LastError = err.Error()
	}
	if apply != nil {
		apply()
	}
	c.notifyLocked()
}

// setProfileLocked replaces the current profile and republishes derived
// metrics. Defaulted profiles with zero numerics publish no metrics: a zero
// height would put BMI at infinity.
func (c *ProfileController) setProfileLocked(profile *models.Profile) {
	copied := *profile
	c.state.Profile = &copied

	if profile.Weight > 0 && profile.Height > 0 && profile.Age > 0 {
		bmr, tdee, goal := metrics.ComputeAll(profile)
		bmi := metrics.BMI(profile.Weight, profile.Height)
		c.state.Metrics = &DerivedMetrics{
			BMR:              bmr,
			TDEE:             tdee,
			DailyCalorieGoal: goal,
			BMI:              bmi,
			BMIClass:         metrics.ClassifyBMI(bmi),
		}
	}
}

func (c *ProfileController) snapshotLocked() State {
	snapshot := c.state
	if c.state.Profile != nil {
		profile := *c.state.Profile
		snapshot.Profile = &profile
	}
	if c.state.Metrics != nil {
		derived := *c.state.Metrics
		snapshot.Metrics = &derived
	}
	return snapshot
}

func (c *ProfileController) notifyLocked() {
	snapshot := c.snapshotLocked()
	for _, sub := range c.subscribers {
		select {
		case sub <- snapshot:
		default:
		}
	}
}
