package wizard

import (
	"context"
	"strconv"
	"strings"

	"github.com/saeid-a/FitProfileSync/internal/models"
)

// Step is the wizard's state: an index into the fixed collection order.
type Step int

const (
	StepAge Step = iota
	StepHeight
	StepWeight
	StepGoal
	StepActivityLevel

	StepCount = 5
)

var stepNames = [StepCount]string{"age", "height", "weight", "goal", "activityLevel"}

func (s Step) String() string {
	if s < 0 || s >= StepCount {
		return "unknown"
	}
	return stepNames[s]
}

// The wizard never collects gender; commits carry this fixed default. Kept as
// observed product behavior, pinned by a test.
const defaultGender = models.GenderMale

// Committer receives the assembled profile at the final step. The commit is
// asynchronous on the controller side; the wizard is done once it hands off.
type Committer interface {
	CompleteOnboarding(ctx context.Context, profile *models.Profile)
}

// accumulator holds the validated values collected so far. Defaults match a
// fresh profile.
type accumulator struct {
	age      int
	height   int
	weight   float64
	goal     models.Goal
	activity models.ActivityLevel
}

// Wizard drives the five-step onboarding flow. Values are staged as raw form
// input, validated on Next against the profile field bounds, and committed
// atomically as one full profile at the last step. Not safe for concurrent
// use; each wizard belongs to one session.
type Wizard struct {
	committer Committer
	identity  string
	email     string

	step    Step
	staged  [StepCount]string
	visited [StepCount]bool
	acc     accumulator
	done    bool
}

func New(committer Committer, identity, email string) *Wizard {
	return &Wizard{
		committer: committer,
		identity:  identity,
		email:     email,
		acc: accumulator{
			goal:     models.GoalLoseWeight,
			activity: models.ActivitySedentary,
		},
	}
}

func (w *Wizard) Step() Step {
	return w.step
}

func (w *Wizard) Done() bool {
	return w.done
}

// Stage records raw input for the current step without validating it.
func (w *Wizard) Stage(input string) {
	w.staged[w.step] = strings.TrimSpace(input)
}

// Prefill returns the value to show when re-entering a step: the staged input
// if any, otherwise the accumulated value for an already visited step.
func (w *Wizard) Prefill() string {
	if w.staged[w.step] != "" {
		return w.staged[w.step]
	}
	if !w.visited[w.step] {
		return ""
	}
	switch w.step {
	case StepAge:
		return strconv.Itoa(w.acc.age)
	case StepHeight:
		return strconv.Itoa(w.acc.height)
	case StepWeight:
		return strconv.FormatFloat(w.acc.weight, 'f', -1, 64)
	case StepGoal:
		return string(w.acc.goal)
	case StepActivityLevel:
		return string(w.acc.activity)
	}
	return ""
}

// Next validates the staged value for the current step. On failure the state
// is unchanged and a step-scoped validation error is returned. On success the
// accumulator is written and the wizard advances; at the last step it
// assembles the full profile and hands it to the committer.
func (w *Wizard) Next(ctx context.Context) *models.ValidationError {
	if w.done {
		return &models.ValidationError{Field: w.step.String(), Message: "onboarding already committed"}
	}

	if err := w.commitStep(); err != nil {
		return err
	}
	w.visited[w.step] = true

	if w.step < StepActivityLevel {
		w.step++
		return nil
	}

	w.committer.CompleteOnboarding(ctx, w.assemble())
	w.done = true
	return nil
}

// Previous never validates and never mutates the accumulator.
func (w *Wizard) Previous() {
	if w.step > 0 {
		w.step--
	}
}

func (w *Wizard) commitStep() *models.ValidationError {
	input := w.staged[w.step]
	switch w.step {
	case StepAge:
		age, err := strconv.Atoi(input)
		if err != nil {
			return &models.ValidationError{Field: "age", Message: "age must be a whole number"}
		}
		if verr := models.ValidateAge(age); verr != nil {
			return verr
		}
		w.acc.age = age
	case StepHeight:
		height, err := strconv.Atoi(input)
		if err != nil {
			return &models.ValidationError{Field: "height", Message: "height must be a whole number"}
		}
		if verr := models.ValidateHeight(height); verr != nil {
			return verr
		}
		w.acc.height = height
	case StepWeight:
		weight, err := strconv.ParseFloat(input, 64)
		if err != nil {
			return &models.ValidationError{Field: "weight", Message: "weight must be a number"}
		}
		if verr := models.ValidateWeight(weight); verr != nil {
			return verr
		}
		w.acc.weight = weight
	case StepGoal:
		if input == "" {
			return &models.ValidationError{Field: "goal", Message: "select a goal"}
		}
		goal := models.Goal(input)
		if verr := models.ValidateGoal(goal); verr != nil {
			return verr
		}
		w.acc.goal = goal
	case StepActivityLevel:
		if input == "" {
			return &models.ValidationError{Field: "activityLevel", Message: "select an activity level"}
		}
		level := models.ActivityLevel(input)
		if verr := models.ValidateActivityLevel(level); verr != nil {
			return verr
		}
		w.acc.activity = level
	}
	return nil
}

func (w *Wizard) assemble() *models.Profile {
	return &models.Profile{
		ID:                  w.identity,
		Email:               w.email,
		Age:                 w.acc.age,
		Height:              w.acc.height,
		Weight:              w.acc.weight,
		Gender:              defaultGender,
		Goal:                w.acc.goal,
		ActivityLevel:       w.acc.activity,
		OnboardingCompleted: true,
	}
}
