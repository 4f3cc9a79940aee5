package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/saeid-a/FitProfileSync/internal/models"
	"github.com/saeid-a/FitProfileSync/internal/session"
	"github.com/saeid-a/FitProfileSync/internal/wizard"
)

// OnboardingHandler drives the step-wise wizard over HTTP. The wizard state
// is transient and session-scoped; abandoning it never persists anything.
type OnboardingHandler struct {
	sessions *session.Manager
}

func NewOnboardingHandler(sessions *session.Manager) *OnboardingHandler {
	return &OnboardingHandler{sessions: sessions}
}

type onboardingStepRequest struct {
	Value string `json:"value"`
}

func wizardState(w *wizard.Wizard) fiber.Map {
	return fiber.Map{
		"step":       int(w.Step()),
		"stepName":   w.Step().String(),
		"totalSteps": wizard.StepCount,
		"prefill":    w.Prefill(),
		"done":       w.Done(),
	}
}

func (h *OnboardingHandler) Start(c *fiber.Ctx) error {
	identity, err := identityFromLocals(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	sess := h.sessions.Get(identity)
	w := sess.StartWizard()
	return c.JSON(wizardState(w))
}

func (h *OnboardingHandler) State(c *fiber.Ctx) error {
	identity, err := identityFromLocals(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	sess := h.sessions.Get(identity)
	w, ok := sess.ActiveWizard()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No onboarding in progress"})
	}
	return c.JSON(wizardState(w))
}

func (h *OnboardingHandler) Next(c *fiber.Ctx) error {
	identity, err := identityFromLocals(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req onboardingStepRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	sess := h.sessions.Get(identity)
	var (
		verr  *models.ValidationError
		state fiber.Map
	)
	active, _ := sess.WithWizard(func(w *wizard.Wizard) error {
		w.Stage(req.Value)
		// The commit must outlive this request; it is fire-once and not
		// cancellable.
		verr = w.Next(context.Background())
		state = wizardState(w)
		return nil
	})
	if !active {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No onboarding in progress"})
	}
	if verr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": verr.Message,
			"field": verr.Field,
		})
	}
	return c.JSON(state)
}

func (h *OnboardingHandler) Previous(c *fiber.Ctx) error {
	identity, err := identityFromLocals(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	sess := h.sessions.Get(identity)
	var state fiber.Map
	active, _ := sess.WithWizard(func(w *wizard.Wizard) error {
		w.Previous()
		state = wizardState(w)
		return nil
	})
	if !active {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No onboarding in progress"})
	}
	return c.JSON(state)
}

// Abandon discards the in-flight wizard without persisting anything.
func (h *OnboardingHandler) Abandon(c *fiber.Ctx) error {
	identity, err := identityFromLocals(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	h.sessions.Get(identity).EndWizard()
	return c.JSON(fiber.Map{"status": "abandoned"})
}

// Status reports the persisted completion flag. Failures read as "not
// completed" so this check never blocks a client flow.
func (h *OnboardingHandler) Status(c *fiber.Ctx) error {
	identity, err := identityFromLocals(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	sess := h.sessions.Get(identity)
	completed := sess.Store.HasCompletedOnboarding(c.Context(), identity.ID)
	return c.JSON(fiber.Map{"onboardingCompleted": completed})
}
