package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/paulexconde/surveyflow/internal/models"
	"github.com/paulexconde/surveyflow/pkg/fault"
)

const sessionLocal = "session"

// withSession resolves the cookie token to a live session or rejects the
// request. A token that no longer matches anything also clears the stale
// cookie so the client does not keep replaying it.
func (h *Handler) withSession(c *fiber.Ctx) error {
	token := c.Cookies(h.cfg.CookieName)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "no session"})
	}

	session, err := h.sessions.FindByToken(c.UserContext(), token)
	if err != nil {
		if errors.Is(err, fault.ErrNotFound) {
			h.clearSessionCookie(c)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unknown session"})
		}
		return h.fail(c, err)
	}

	c.Locals(sessionLocal, session)
	return c.Next()
}

func sessionFrom(c *fiber.Ctx) *models.Session {
	return c.Locals(sessionLocal).(*models.Session)
}

func (h *Handler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.CookieTTL.Seconds()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
