// Package graphstore is the Postgres-backed store collaborator: read-only
// access to the survey graph plus the session and response ledgers.
package graphstore

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/paulexconde/surveyflow/internal/models"
	"github.com/paulexconde/surveyflow/internal/pkg/store"
	"github.com/paulexconde/surveyflow/internal/services"
)

type Store struct {
	surveys   store.Datastorer[models.Survey]
	pages     store.Datastorer[models.Page]
	questions store.Datastorer[models.Question]
	options   store.Datastorer[models.QuestionOption]
	sessions  store.Datastorer[models.Session]
	responses store.Datastorer[models.Response]
}

func New(db *sqlx.DB) *Store {
	return &Store{
		surveys:   store.NewDataStore[models.Survey](db, "surveys"),
		pages:     store.NewDataStore[models.Page](db, "pages"),
		questions: store.NewDataStore[models.Question](db, "questions"),
		options:   store.NewDataStore[models.QuestionOption](db, "question_options"),
		sessions:  store.NewDataStore[models.Session](db, "sessions"),
		responses: store.NewDataStore[models.Response](db, "responses"),
	}
}

// Surveys exposes the raw survey datastore for listing queries.
func (s *Store) Surveys() store.Datastorer[models.Survey] {
	return s.surveys
}

func (s *Store) ResolveSurvey(ctx context.Context, id int) (*models.Survey, error) {
	return s.surveys.Get(ctx, "SELECT * FROM surveys WHERE id = $1 AND deleted_at IS NULL", id)
}

func (s *Store) ResolvePage(ctx context.Context, id int) (*models.Page, error) {
	return s.pages.Get(ctx, "SELECT * FROM pages WHERE id = $1 AND deleted_at IS NULL", id)
}

func (s *Store) PageQuestions(ctx context.Context, pageID int) ([]models.Question, error) {
	questions, err := s.questions.Select(ctx,
		"SELECT * FROM questions WHERE page_id = $1 AND deleted_at IS NULL ORDER BY priority DESC, id",
		pageID)
	if err != nil {
		return nil, err
	}

	return s.populateOptions(ctx, questions)
}

func (s *Store) ResolveQuestions(ctx context.Context, ids []int) ([]models.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.questions.Select(ctx,
		"SELECT * FROM questions WHERE id = ANY($1) AND deleted_at IS NULL",
		pq.Array(ids))
	if err != nil {
		return nil, err
	}

	// Callers depend on candidate order, the database does not keep it.
	byID := make(map[int]models.Question, len(rows))
	for _, question := range rows {
		byID[question.ID] = question
	}

	ordered := make([]models.Question, 0, len(rows))
	for _, id := range ids {
		if question, ok := byID[id]; ok {
			ordered = append(ordered, question)
		}
	}

	return s.populateOptions(ctx, ordered)
}

func (s *Store) populateOptions(ctx context.Context, questions []models.Question) ([]models.Question, error) {
	if len(questions) == 0 {
		return questions, nil
	}

	ids := make([]int, len(questions))
	for i, question := range questions {
		ids[i] = question.ID
	}

	options, err := s.options.Select(ctx,
		"SELECT * FROM question_options WHERE question_id = ANY($1) AND deleted_at IS NULL ORDER BY id",
		pq.Array(ids))
	if err != nil {
		return nil, err
	}

	byQuestion := make(map[int][]models.QuestionOption, len(questions))
	for _, option := range options {
		byQuestion[option.QuestionID] = append(byQuestion[option.QuestionID], option)
	}

	for i := range questions {
		questions[i].Options = byQuestion[questions[i].ID]
	}

	return questions, nil
}

func (s *Store) GetSession(ctx context.Context, id int) (*models.Session, error) {
	return s.sessions.Get(ctx, "SELECT * FROM sessions WHERE id = $1 AND deleted_at IS NULL", id)
}

func (s *Store) FindSessionByToken(ctx context.Context, token string) (*models.Session, error) {
	return s.sessions.Get(ctx, "SELECT * FROM sessions WHERE token = $1 AND deleted_at IS NULL", token)
}

func (s *Store) CreateSession(ctx context.Context, draft services.SessionDraft) (*models.Session, error) {
	created, err := s.sessions.Create(ctx, sessionDTO{
		Token:    draft.Token,
		SurveyID: draft.SurveyID,
		Auth:     draft.Auth,
		Email:    draft.Email,
		Phone:    draft.Phone,
	})
	if err != nil {
		return nil, err
	}

	return s.GetSession(ctx, created.(*models.Session).ID)
}

func (s *Store) UpdateSession(ctx context.Context, id int, patch services.SessionPatch) error {
	_, err := s.sessions.Update(ctx, id, sessionPatchDTO{
		LastResponseID: patch.LastResponseID,
		FinishedAt:     patch.FinishedAt,
		CanceledAt:     patch.CanceledAt,
	})
	return err
}

func (s *Store) GetResponse(ctx context.Context, id int) (*models.Response, error) {
	return s.responses.Get(ctx, "SELECT * FROM responses WHERE id = $1 AND deleted_at IS NULL", id)
}

func (s *Store) GetSessionResponse(ctx context.Context, sessionID, id int) (*models.Response, error) {
	return s.responses.Get(ctx,
		"SELECT * FROM responses WHERE id = $1 AND session_id = $2 AND deleted_at IS NULL",
		id, sessionID)
}

func (s *Store) FindPageResponse(ctx context.Context, sessionID, pageID int) (*models.Response, error) {
	return s.responses.Get(ctx,
		"SELECT * FROM responses WHERE session_id = $1 AND page_id = $2 AND deleted_at IS NULL",
		sessionID, pageID)
}

func (s *Store) CreateResponse(ctx context.Context, draft services.ResponseDraft) (*models.Response, error) {
	created, err := s.responses.Create(ctx, responseDTO{
		SessionID:          draft.SessionID,
		PageID:             draft.PageID,
		PreviousResponseID: draft.PreviousResponseID,
		Questions:          draft.Questions,
		Values:             draft.Values,
	})
	if err != nil {
		return nil, err
	}

	return s.GetResponse(ctx, created.(*models.Response).ID)
}

func (s *Store) UpdateResponse(ctx context.Context, id int, patch services.ResponsePatch) error {
	_, err := s.responses.Update(ctx, id, responsePatchDTO{
		Questions:          patch.Questions,
		Values:             patch.Values,
		PreviousResponseID: patch.PreviousResponseID,
	})
	return err
}

// Graph writes below are used by seeding only; the engine never mutates the
// survey graph.

func (s *Store) SurveyCount(ctx context.Context) (int, error) {
	return s.surveys.Count(ctx)
}

func (s *Store) CreateSurvey(ctx context.Context, survey models.Survey) (*models.Survey, error) {
	created, err := s.surveys.Create(ctx, surveyDTO{
		Title:       survey.Title,
		Description: survey.Description,
		Icon:        survey.Icon,
		AuthType:    survey.AuthType,
		FirstPageID: survey.FirstPageID,
		Priority:    survey.Priority,
	})
	if err != nil {
		return nil, err
	}
	return created.(*models.Survey), nil
}

func (s *Store) CreatePage(ctx context.Context, page models.Page) (*models.Page, error) {
	created, err := s.pages.Create(ctx, pageDTO{
		Title:       page.Title,
		Description: page.Description,
		Type:        page.Type,
	})
	if err != nil {
		return nil, err
	}
	return created.(*models.Page), nil
}

func (s *Store) CreateQuestion(ctx context.Context, question models.Question) (*models.Question, error) {
	created, err := s.questions.Create(ctx, questionDTO{
		PageID:         question.PageID,
		SurveyID:       question.SurveyID,
		Type:           question.Type,
		Required:       question.Required,
		RiskEvaluation: question.RiskEvaluation,
		Title:          question.Title,
		Description:    question.Description,
		Hint:           question.Hint,
		Priority:       question.Priority,
		NextQuestionID: question.NextQuestionID,
		Condition:      question.Condition,
		Data:           question.Data,
		AuthRelation:   question.AuthRelation,
	})
	if err != nil {
		return nil, err
	}
	return created.(*models.Question), nil
}

// LinkQuestion points an already created question at its successor. Seed
// data references questions that do not exist yet at insert time, so the
// graph is created first and linked after.
func (s *Store) LinkQuestion(ctx context.Context, id, nextID int) error {
	_, err := s.questions.Update(ctx, id, questionLinkDTO{NextQuestionID: &nextID})
	return err
}

func (s *Store) LinkOption(ctx context.Context, id, nextID int) error {
	_, err := s.options.Update(ctx, id, optionLinkDTO{NextQuestionID: &nextID})
	return err
}

// RelateQuestion stores the question that receives the verified email once
// identity completes.
func (s *Store) RelateQuestion(ctx context.Context, id, relatedID int) error {
	_, err := s.questions.Update(ctx, id, questionLinkDTO{
		Data: &models.QuestionData{RelatedQuestion: relatedID},
	})
	return err
}

func (s *Store) CreateOption(ctx context.Context, option models.QuestionOption) (*models.QuestionOption, error) {
	created, err := s.options.Create(ctx, optionDTO{
		QuestionID:     option.QuestionID,
		Title:          option.Title,
		Description:    option.Description,
		Hint:           option.Hint,
		Icon:           option.Icon,
		Data:           option.Data,
		NextQuestionID: option.NextQuestionID,
	})
	if err != nil {
		return nil, err
	}
	return created.(*models.QuestionOption), nil
}
