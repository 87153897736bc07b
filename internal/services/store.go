package services

import (
	"context"
	"time"

	"github.com/paulexconde/surveyflow/internal/models"
)

// Narrow views over the store collaborator. The engine only ever reads the
// survey graph; sessions and responses are the two entities it writes.

type SurveyStore interface {
	ResolveSurvey(ctx context.Context, id int) (*models.Survey, error)
}

type PageStore interface {
	ResolvePage(ctx context.Context, id int) (*models.Page, error)
	// PageQuestions returns the page's questions with options populated,
	// ordered by priority descending then id.
	PageQuestions(ctx context.Context, pageID int) ([]models.Question, error)
}

type QuestionStore interface {
	// ResolveQuestions returns questions with options populated, in the
	// order of the given ids. Unknown ids resolve to nothing.
	ResolveQuestions(ctx context.Context, ids []int) ([]models.Question, error)
}

type SessionStore interface {
	GetSession(ctx context.Context, id int) (*models.Session, error)
	FindSessionByToken(ctx context.Context, token string) (*models.Session, error)
	CreateSession(ctx context.Context, draft SessionDraft) (*models.Session, error)
	UpdateSession(ctx context.Context, id int, patch SessionPatch) error
}

type ResponseStore interface {
	// GetSessionResponse fetches a response scoped to the owning session;
	// a response of another session is not found, never forbidden.
	GetSessionResponse(ctx context.Context, sessionID, id int) (*models.Response, error)
	FindPageResponse(ctx context.Context, sessionID, pageID int) (*models.Response, error)
	CreateResponse(ctx context.Context, draft ResponseDraft) (*models.Response, error)
	UpdateResponse(ctx context.Context, id int, patch ResponsePatch) error
}

// Store bundles every view a full engine needs.
type Store interface {
	SurveyStore
	PageStore
	QuestionStore
	SessionStore
	ResponseStore
}

type SessionDraft struct {
	SurveyID int
	Token    string
	Auth     *bool
	Email    *string
	Phone    *string
}

type SessionPatch struct {
	LastResponseID *int
	FinishedAt     *time.Time
	CanceledAt     *time.Time
}

type ResponseDraft struct {
	SessionID          int
	PageID             int
	PreviousResponseID *int
	Questions          models.IDList
	Values             models.ValueMap
}

type ResponsePatch struct {
	Questions          models.IDList
	Values             models.ValueMap
	PreviousResponseID *int
}
