package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/paulexconde/surveyflow/internal/models"
	"github.com/paulexconde/surveyflow/pkg/fault"
)

type respondRequest struct {
	Values models.ValueMap `json:"values" validate:"required"`
}

type startResponse struct {
	Session  *models.Session `json:"session"`
	Response *int            `json:"response,omitempty"`
}

type responsePayload struct {
	Response  *models.Response  `json:"response"`
	Questions []models.Question `json:"questions"`
}

func (h *Handler) listSurveys(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	result, err := h.surveys.PaginateQuery(c.UserContext(),
		"SELECT * FROM surveys WHERE deleted_at IS NULL ORDER BY priority DESC, id",
		nil, page, limit)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(result)
}

// startSession opens a session on the survey, or redirects to the identity
// provider when the survey requires (or the respondent requested) identity.
func (h *Handler) startSession(c *fiber.Ctx) error {
	surveyID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid survey id"})
	}

	result, err := h.sessions.Start(c.UserContext(), surveyID, c.QueryBool("auth"))
	if err != nil {
		return h.fail(c, err)
	}

	if result.Redirect != "" {
		return c.Redirect(result.Redirect, fiber.StatusFound)
	}

	h.setSessionCookie(c, result.Session.Token)
	return c.Status(fiber.StatusCreated).JSON(startResponse{
		Session:  result.Session,
		Response: result.Session.LastResponseID,
	})
}

// identityCallback is the provider's return leg: the ticket resolves to
// verified contact data and the signed state recovers which survey the
// hand-off belonged to.
func (h *Handler) identityCallback(c *fiber.Ctx) error {
	ticket := c.Query("ticket")
	state := c.Query("state")
	if ticket == "" || state == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ticket and state are required"})
	}

	result, err := h.sessions.CompleteIdentity(c.UserContext(), ticket, state)
	if err != nil {
		return h.fail(c, err)
	}

	h.setSessionCookie(c, result.Session.Token)
	return c.Status(fiber.StatusCreated).JSON(startResponse{
		Session:  result.Session,
		Response: result.Session.LastResponseID,
	})
}

func (h *Handler) respond(c *fiber.Ctx) error {
	responseID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid response id"})
	}

	var req respondRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "values are required"})
	}

	result, err := h.sessions.Respond(c.UserContext(), sessionFrom(c), responseID, req.Values)
	if err != nil {
		return h.fail(c, err)
	}

	// A clean submit with no next response means the survey just finished.
	if len(result.Errors) == 0 && result.NextResponse == nil {
		h.clearSessionCookie(c)
	}

	return c.JSON(result)
}

func (h *Handler) getResponse(c *fiber.Ctx) error {
	responseID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid response id"})
	}

	session := sessionFrom(c)

	response, err := h.reader.GetSessionResponse(c.UserContext(), session.ID, responseID)
	if err != nil {
		if errors.Is(err, fault.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "response not found"})
		}
		return h.fail(c, err)
	}

	questions, err := h.reader.ResolveQuestions(c.UserContext(), response.Questions)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(responsePayload{Response: response, Questions: questions})
}

func (h *Handler) currentSession(c *fiber.Ctx) error {
	return c.JSON(sessionFrom(c))
}

func (h *Handler) cancelSession(c *fiber.Ctx) error {
	if err := h.sessions.Cancel(c.UserContext(), sessionFrom(c)); err != nil {
		return h.fail(c, err)
	}

	h.clearSessionCookie(c)
	return c.SendStatus(fiber.StatusNoContent)
}
