// Package seed loads the demo survey graphs on first start. Seeding is
// idempotent: any existing survey row means the database is already
// populated and the whole run is skipped.
package seed

import (
	"context"
	"log"
	"time"

	"github.com/paulexconde/surveyflow/internal/models"
	"github.com/paulexconde/surveyflow/internal/pkg/workerpool"
)

// Store is the graph-write surface seeding needs. Questions reference
// successors that do not exist yet at insert time, so rows are created
// first and linked after through LinkQuestion/LinkOption.
type Store interface {
	SurveyCount(ctx context.Context) (int, error)
	CreateSurvey(ctx context.Context, survey models.Survey) (*models.Survey, error)
	CreatePage(ctx context.Context, page models.Page) (*models.Page, error)
	CreateQuestion(ctx context.Context, question models.Question) (*models.Question, error)
	CreateOption(ctx context.Context, option models.QuestionOption) (*models.QuestionOption, error)
	LinkQuestion(ctx context.Context, id, nextID int) error
	LinkOption(ctx context.Context, id, nextID int) error
	RelateQuestion(ctx context.Context, id, relatedID int) error
}

// Run seeds the demo surveys unless the database already holds any.
func Run(ctx context.Context, store Store, logger *log.Logger) error {
	count, err := store.SurveyCount(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Printf("[SEED] %d surveys present, skipping", count)
		return nil
	}

	pool := workerpool.NewWorkerPool(ctx, 2, 4)

	pool.Submit(workerpool.WithRetry(3, time.Second, func() error {
		return productFeedback(ctx, store)
	}))
	pool.Submit(workerpool.WithRetry(3, time.Second, func() error {
		return workplacePulse(ctx, store)
	}))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	pool.Shutdown(shutdownCtx)

	logger.Println("[SEED] demo surveys loaded")
	return nil
}
