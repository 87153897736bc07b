// Package api is the HTTP surface: fiber handlers over the session service
// plus the read-only listing endpoints. Session identity travels in an
// opaque cookie set on start and cleared on every terminal transition.
package api

import (
	"context"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/paulexconde/surveyflow/internal/config"
	"github.com/paulexconde/surveyflow/internal/models"
	"github.com/paulexconde/surveyflow/internal/pkg/paginator"
	"github.com/paulexconde/surveyflow/internal/services"
)

// ResponseReader is the direct read surface handlers use outside the
// session flow.
type ResponseReader interface {
	GetSessionResponse(ctx context.Context, sessionID, id int) (*models.Response, error)
	ResolveQuestions(ctx context.Context, ids []int) ([]models.Question, error)
}

type Handler struct {
	sessions services.SessionService
	reader   ResponseReader
	surveys  paginator.Paginator[models.Survey]
	cfg      *config.Config
	validate *validator.Validate
	logger   *log.Logger
}

func NewHandler(
	sessions services.SessionService,
	reader ResponseReader,
	surveys paginator.Paginator[models.Survey],
	cfg *config.Config,
	logger *log.Logger,
) *Handler {
	return &Handler{
		sessions: sessions,
		reader:   reader,
		surveys:  surveys,
		cfg:      cfg,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *Handler) Register(app *fiber.App) {
	app.Get("/ping", h.ping)
	app.Get("/surveys", h.listSurveys)
	app.Post("/surveys/:id/start", h.startSession)
	app.Get("/identity/callback", h.identityCallback)

	scoped := app.Group("", h.withSession)
	scoped.Post("/responses/:id/respond", h.respond)
	scoped.Get("/responses/:id", h.getResponse)
	scoped.Get("/sessions/current", h.currentSession)
	scoped.Post("/sessions/cancel", h.cancelSession)
}

func (h *Handler) ping(c *fiber.Ctx) error {
	return c.SendString("pong")
}
