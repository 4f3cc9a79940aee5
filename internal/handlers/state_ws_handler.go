package handlers

import (
	"context"
	"errors"
	"strings"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/saeid-a/FitProfileSync/internal/session"
	"github.com/saeid-a/FitProfileSync/internal/store"
	"github.com/saeid-a/FitProfileSync/pkg/utils"
)

// StateWSHandler streams controller state snapshots to connected clients, so
// a UI can observe profile, loading and derived-metric changes as they land.
type StateWSHandler struct {
	sessions  *session.Manager
	jwtSecret string
}

func NewStateWSHandler(sessions *session.Manager, jwtSecret string) *StateWSHandler {
	return &StateWSHandler{sessions: sessions, jwtSecret: jwtSecret}
}

func (h *StateWSHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}

	claims, err := h.parseWSClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("email", claims.Email)
	return c.Next()
}

func (h *StateWSHandler) HandleWebSocket(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(string)
	email, _ := conn.Locals("email").(string)
	if userID == "" {
		_ = conn.Close()
		return
	}

	sess := h.sessions.Get(store.Identity{ID: userID, Email: email})
	updates, cancel := sess.Controller.Subscribe()
	defer cancel()

	// Seed the stream with the current snapshot, then refresh from the
	// remote store.
	if err := conn.WriteJSON(sess.Controller.Snapshot()); err != nil {
		_ = conn.Close()
		return
	}
	sess.Controller.LoadProfile(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer conn.Close()
	for {
		select {
		case state, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(state); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *StateWSHandler) parseWSClaims(c *fiber.Ctx) (*utils.Claims, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		authHeader := strings.TrimSpace(c.Get("Authorization"))
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
	}

	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	return utils.ValidateToken(tokenString, h.jwtSecret)
}
