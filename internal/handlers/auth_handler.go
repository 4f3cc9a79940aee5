package handlers

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saeid-a/FitProfileSync/internal/gateway"
	"github.com/saeid-a/FitProfileSync/internal/models"
	"github.com/saeid-a/FitProfileSync/internal/session"
	"github.com/saeid-a/FitProfileSync/internal/store"
	"github.com/saeid-a/FitProfileSync/pkg/utils"
)

type AuthHandler struct {
	auth      gateway.Authenticator
	remote    store.RemoteStore
	cache     store.Cache
	sessions  *session.Manager
	jwtSecret string
}

func NewAuthHandler(
	auth gateway.Authenticator,
	remote store.RemoteStore,
	cache store.Cache,
	sessions *session.Manager,
	jwtSecret string,
) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		remote:    remote,
		cache:     cache,
		sessions:  sessions,
		jwtSecret: jwtSecret,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

// requestStore builds a ProfileStore around a fresh gateway session, so each
// request's sign-in state stays isolated.
func (h *AuthHandler) requestStore() *store.ProfileStore {
	return store.New(gateway.NewSession(h.auth), h.remote, h.cache)
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	parsedEmail, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email format"})
	}
	req.Email = strings.ToLower(parsedEmail.Address)
	if len(req.Password) < models.MinPasswordLength {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "Password must be at least 8 characters"})
	}

	st := h.requestStore()
	identity, err := st.Register(c.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrAuthentication) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email already exists"})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to create account"})
	}

	// A registered account immediately owns an all-default profile.
	profile := models.NewDefaultProfile(identity.ID, identity.Email)
	if err := st.SaveProfile(c.Context(), profile); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to create profile"})
	}

	token, err := utils.GenerateToken(identity.ID, identity.Email, h.jwtSecret)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to generate token"})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    identity.ID,
			"email": identity.Email,
		},
		"profile": profile,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	identity, err := h.requestStore().SignIn(c.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrAuthentication) {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"error": "Invalid email or password"})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to sign in"})
	}

	token, err := utils.GenerateToken(identity.ID, identity.Email, h.jwtSecret)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to generate token"})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    identity.ID,
			"email": identity.Email,
		},
	})
}

func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req passwordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.requestStore().RequestPasswordReset(c.Context(), req.Email); err != nil {
		if errors.Is(err, store.ErrAuthentication) {
			// Do not reveal whether the email exists.
			return c.JSON(fiber.Map{"status": "ok"})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to request reset"})
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

// Logout ends the server-side session: gateway sign-out, cached profile
// dropped, controller closed.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	identity, err := identityFromLocals(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	h.sessions.End(identity.ID)
	return c.JSON(fiber.Map{"status": "signed_out"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, err := identityFromLocals(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	st := h.sessions.Get(identity).Store
	profile, err := st.FetchProfile(c.Context(), identity.ID)
	if err != nil {
		return mapStoreError(c, err)
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":    identity.ID,
			"email": identity.Email,
		},
		"profile":             profile,
		"onboardingCompleted": profile.OnboardingCompleted,
	})
}

func identityFromLocals(c *fiber.Ctx) (store.Identity, error) {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return store.Identity{}, errors.New("missing user id")
	}
	email, _ := c.Locals("email").(string)
	return store.Identity{ID: userID, Email: email}, nil
}

func mapStoreError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
	case errors.Is(err, store.ErrAuthentication):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication failed"})
	case errors.Is(err, store.ErrNetwork):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Upstream unavailable"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process request"})
	}
}
