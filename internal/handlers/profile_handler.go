package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/saeid-a/FitProfileSync/internal/metrics"
	"github.com/saeid-a/FitProfileSync/internal/models"
	"github.com/saeid-a/FitProfileSync/internal/session"
)

type ProfileHandler struct {
	sessions *session.Manager
}

func NewProfileHandler(sessions *session.Manager) *ProfileHandler {
	return &ProfileHandler{sessions: sessions}
}

type updateProfileRequest struct {
	Age           int                  `json:"age"`
	Height        int                  `json:"height"`
	Weight        float64              `json:"weight"`
	Goal          models.Goal          `json:"goal"`
	ActivityLevel models.ActivityLevel `json:"activityLevel"`
}

func validateUpdateProfileRequest(req updateProfileRequest) *models.ValidationError {
	if err := models.ValidateAge(req.Age); err != nil {
		return err
	}
	if err := models.ValidateHeight(req.Height); err != nil {
		return err
	}
	if err := models.ValidateWeight(req.Weight); err != nil {
		return err
	}
	if err := models.ValidateGoal(req.Goal); err != nil {
		return err
	}
	return models.ValidateActivityLevel(req.ActivityLevel)
}

func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	identity, err := identityFromLocals(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	sess := h.sessions.Get(identity)
	profile, err := sess.Store.FetchProfile(c.Context(), identity.ID)
	if err != nil {
		return mapStoreError(c, err)
	}

	return c.JSON(fiber.Map{"profile": profile})
}

// UpdateProfile edits the tunable fields; id, email and the onboarding flag
// are never client-writable here.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	identity, err := identityFromLocals(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if verr := validateUpdateProfileRequest(req); verr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": verr.Message,
			"field": verr.Field,
		})
	}

	sess := h.sessions.Get(identity)
	current, err := sess.Store.FetchProfile(c.Context(), identity.ID)
	if err != nil {
		return mapStoreError(c, err)
	}

	updated := *current
	updated.Age = req.Age
	updated.Height = req.Height
	updated.Weight = req.Weight
	updated.Goal = req.Goal
	updated.ActivityLevel = req.ActivityLevel

	if err := sess.Store.UpdateProfile(c.Context(), &updated); err != nil {
		return mapStoreError(c, err)
	}

	// Nudge the session controller so websocket observers see the edit. The
	// reload must outlive this request.
	sess.Controller.LoadProfile(context.Background())

	return c.JSON(fiber.Map{"profile": updated})
}

// GetMetrics recomputes the derived values from the authoritative profile.
// Incomplete profiles yield no metrics rather than a nonsense BMI.
func (h *ProfileHandler) GetMetrics(c *fiber.Ctx) error {
	identity, err := identityFromLocals(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	sess := h.sessions.Get(identity)
	profile, err := sess.Store.FetchProfile(c.Context(), identity.ID)
	if err != nil {
		return mapStoreError(c, err)
	}

	if profile.Weight <= 0 || profile.Height <= 0 || profile.Age <= 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Profile is incomplete; finish onboarding first",
		})
	}

	bmr, tdee, goal := metrics.ComputeAll(profile)
	bmi := metrics.BMI(profile.Weight, profile.Height)
	return c.JSON(fiber.Map{
		"bmr":              bmr,
		"tdee":             tdee,
		"dailyCalorieGoal": goal,
		"bmi":              bmi,
		"bmiClass":         metrics.ClassifyBMI(bmi),
	})
}
