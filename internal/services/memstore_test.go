package services

import (
	"context"
	"sort"

	"github.com/paulexconde/surveyflow/internal/models"
	"github.com/paulexconde/surveyflow/pkg/fault"
)

// memStore is the in-memory Store used by the engine tests. CreateResponse
// enforces the one-row-per-(session,page) rule the way the database partial
// unique index does; conflictOnce additionally simulates losing that insert
// race to a concurrent submit.
type memStore struct {
	surveys   map[int]*models.Survey
	pages     map[int]*models.Page
	questions map[int]*models.Question
	sessions  map[int]*models.Session
	responses map[int]*models.Response

	nextID       int
	conflictOnce bool
}

var _ Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		surveys:   map[int]*models.Survey{},
		pages:     map[int]*models.Page{},
		questions: map[int]*models.Question{},
		sessions:  map[int]*models.Session{},
		responses: map[int]*models.Response{},
		nextID:    1000,
	}
}

func (m *memStore) id() int {
	m.nextID++
	return m.nextID
}

func (m *memStore) ResolveSurvey(ctx context.Context, id int) (*models.Survey, error) {
	survey, ok := m.surveys[id]
	if !ok {
		return nil, fault.ErrNotFound
	}
	return survey, nil
}

func (m *memStore) ResolvePage(ctx context.Context, id int) (*models.Page, error) {
	page, ok := m.pages[id]
	if !ok {
		return nil, fault.ErrNotFound
	}
	return page, nil
}

func (m *memStore) PageQuestions(ctx context.Context, pageID int) ([]models.Question, error) {
	var questions []models.Question
	for _, question := range m.questions {
		if question.PageID == pageID {
			questions = append(questions, *question)
		}
	}
	sort.Slice(questions, func(i, j int) bool {
		if questions[i].Priority != questions[j].Priority {
			return questions[i].Priority > questions[j].Priority
		}
		return questions[i].ID < questions[j].ID
	})
	return questions, nil
}

func (m *memStore) ResolveQuestions(ctx context.Context, ids []int) ([]models.Question, error) {
	var questions []models.Question
	for _, id := range ids {
		if question, ok := m.questions[id]; ok {
			questions = append(questions, *question)
		}
	}
	return questions, nil
}

func (m *memStore) GetSession(ctx context.Context, id int) (*models.Session, error) {
	session, ok := m.sessions[id]
	if !ok {
		return nil, fault.ErrNotFound
	}
	return session, nil
}

func (m *memStore) FindSessionByToken(ctx context.Context, token string) (*models.Session, error) {
	for _, session := range m.sessions {
		if session.Token == token {
			return session, nil
		}
	}
	return nil, fault.ErrNotFound
}

func (m *memStore) CreateSession(ctx context.Context, draft SessionDraft) (*models.Session, error) {
	session := &models.Session{
		ID:       m.id(),
		Token:    draft.Token,
		SurveyID: draft.SurveyID,
		Auth:     draft.Auth,
		Email:    draft.Email,
		Phone:    draft.Phone,
	}
	m.sessions[session.ID] = session
	return session, nil
}

func (m *memStore) UpdateSession(ctx context.Context, id int, patch SessionPatch) error {
	session, ok := m.sessions[id]
	if !ok {
		return fault.ErrNotFound
	}
	if patch.LastResponseID != nil {
		session.LastResponseID = patch.LastResponseID
	}
	if patch.FinishedAt != nil {
		session.FinishedAt = patch.FinishedAt
	}
	if patch.CanceledAt != nil {
		session.CanceledAt = patch.CanceledAt
	}
	return nil
}

func (m *memStore) GetSessionResponse(ctx context.Context, sessionID, id int) (*models.Response, error) {
	response, ok := m.responses[id]
	if !ok || response.SessionID != sessionID {
		return nil, fault.ErrNotFound
	}
	return response, nil
}

func (m *memStore) FindPageResponse(ctx context.Context, sessionID, pageID int) (*models.Response, error) {
	for _, response := range m.responses {
		if response.SessionID == sessionID && response.PageID == pageID {
			return response, nil
		}
	}
	return nil, fault.ErrNotFound
}

func (m *memStore) CreateResponse(ctx context.Context, draft ResponseDraft) (*models.Response, error) {
	if m.conflictOnce {
		// A concurrent submit wins the insert just before ours lands.
		m.conflictOnce = false
		m.insertResponse(draft)
		return nil, fault.ErrUniqueViolation
	}

	if _, err := m.FindPageResponse(ctx, draft.SessionID, draft.PageID); err == nil {
		return nil, fault.ErrUniqueViolation
	}

	return m.insertResponse(draft), nil
}

func (m *memStore) insertResponse(draft ResponseDraft) *models.Response {
	response := &models.Response{
		ID:                 m.id(),
		SessionID:          draft.SessionID,
		PageID:             draft.PageID,
		PreviousResponseID: draft.PreviousResponseID,
		Questions:          draft.Questions,
		Values:             draft.Values,
	}
	m.responses[response.ID] = response
	return response
}

func (m *memStore) UpdateResponse(ctx context.Context, id int, patch ResponsePatch) error {
	response, ok := m.responses[id]
	if !ok {
		return fault.ErrNotFound
	}
	if patch.Questions != nil {
		response.Questions = patch.Questions
	}
	if patch.Values != nil {
		response.Values = patch.Values
	}
	if patch.PreviousResponseID != nil {
		response.PreviousResponseID = patch.PreviousResponseID
	}
	return nil
}
