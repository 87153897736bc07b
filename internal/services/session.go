package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"github.com/paulexconde/surveyflow/internal/identity"
	"github.com/paulexconde/surveyflow/internal/models"
	"github.com/paulexconde/surveyflow/pkg/fault"
)

// StartResult is either a created session or a redirect instruction for the
// identity hand-off, never both.
type StartResult struct {
	Session  *models.Session
	Redirect string
}

// RespondResult carries validation errors or the id of the next response;
// a nil NextResponse with no errors means the survey finished.
type RespondResult struct {
	Errors       map[int]string `json:"errors,omitempty"`
	NextResponse *int           `json:"nextResponse"`
}

// SessionService drives a session from start to a terminal state. The
// identity hand-off during Start is the only suspension point; everything
// else completes within one call.
type SessionService interface {
	Start(ctx context.Context, surveyID int, wantAuth bool) (*StartResult, error)
	CompleteIdentity(ctx context.Context, ticket, state string) (*StartResult, error)
	FindByToken(ctx context.Context, token string) (*models.Session, error)
	Respond(ctx context.Context, session *models.Session, responseID int, values models.ValueMap) (*RespondResult, error)
	Cancel(ctx context.Context, session *models.Session) error
}

type sessionService struct {
	store     Store
	validator AnswerValidator
	resolver  BranchResolver
	ledger    ResponseLedger
	provider  identity.Provider
	states    *identity.StateCodec
	logger    *log.Logger
}

func NewSessionService(store Store, provider identity.Provider, states *identity.StateCodec, logger *log.Logger) SessionService {
	return &sessionService{
		store:     store,
		validator: NewAnswerValidator(),
		resolver:  NewBranchResolver(store, store, logger),
		ledger:    NewResponseLedger(store, store),
		provider:  provider,
		states:    states,
		logger:    logger,
	}
}

func (s *sessionService) Start(ctx context.Context, surveyID int, wantAuth bool) (*StartResult, error) {
	survey, err := s.resolveSurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	needsIdentity := survey.AuthType == models.AuthRequired ||
		(survey.AuthType == models.AuthOptional && wantAuth)

	if needsIdentity {
		state, err := s.states.Encode(survey.ID)
		if err != nil {
			return nil, err
		}
		return &StartResult{Redirect: s.provider.BeginURL(state)}, nil
	}

	return s.begin(ctx, survey, nil)
}

func (s *sessionService) CompleteIdentity(ctx context.Context, ticket, state string) (*StartResult, error) {
	surveyID, err := s.states.Decode(state)
	if err != nil {
		return nil, err
	}

	ident, err := s.provider.Resolve(ctx, ticket)
	if err != nil {
		return nil, err
	}

	survey, err := s.resolveSurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	return s.begin(ctx, survey, ident)
}

func (s *sessionService) FindByToken(ctx context.Context, token string) (*models.Session, error) {
	return s.store.FindSessionByToken(ctx, token)
}

func (s *sessionService) Respond(ctx context.Context, session *models.Session, responseID int, values models.ValueMap) (*RespondResult, error) {
	if !session.Active() {
		return nil, fault.NewConflictError("session is not active", nil)
	}

	response, err := s.store.GetSessionResponse(ctx, session.ID, responseID)
	if err != nil {
		if errors.Is(err, fault.ErrNotFound) {
			return nil, fault.NewClientError("response not found", err)
		}
		return nil, fault.NewInternalError("loading response", err)
	}

	questions, err := s.store.ResolveQuestions(ctx, response.Questions)
	if err != nil {
		return nil, fault.NewInternalError("loading response questions", err)
	}

	result := s.validator.Validate(questions, values)
	if len(result.Errors) > 0 {
		return &RespondResult{Errors: result.Errors}, nil
	}

	dest, err := s.resolver.Resolve(ctx, result.Next, FlowRef{SessionID: session.ID, ResponseID: response.ID})
	if err != nil {
		return nil, err
	}

	next, err := s.ledger.Advance(ctx, response, values, result.Derived, dest)
	if err != nil {
		return nil, err
	}

	return &RespondResult{NextResponse: next}, nil
}

func (s *sessionService) Cancel(ctx context.Context, session *models.Session) error {
	if session.FinishedAt != nil {
		return fault.NewConflictError("session already finished", nil)
	}
	if session.CanceledAt != nil {
		return nil
	}

	now := time.Now()
	if err := s.store.UpdateSession(ctx, session.ID, SessionPatch{CanceledAt: &now}); err != nil {
		return fault.NewInternalError("canceling session", err)
	}
	return nil
}

func (s *sessionService) resolveSurvey(ctx context.Context, id int) (*models.Survey, error) {
	survey, err := s.store.ResolveSurvey(ctx, id)
	if err != nil {
		if errors.Is(err, fault.ErrNotFound) {
			return nil, fault.NewClientError("survey not found", err)
		}
		return nil, fault.NewInternalError("loading survey", err)
	}
	return survey, nil
}

// begin creates the session and its first response on the effective entry
// page, with or without a verified identity.
func (s *sessionService) begin(ctx context.Context, survey *models.Survey, ident *identity.Identity) (*StartResult, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, fault.NewInternalError("generating session token", err)
	}

	draft := SessionDraft{SurveyID: survey.ID, Token: token}
	if ident != nil {
		authed := true
		draft.Auth = &authed
		if ident.Email != "" {
			email := ident.Email
			draft.Email = &email
		}
		if ident.Phone != "" {
			phone := ident.Phone
			draft.Phone = &phone
		}
	}

	session, err := s.store.CreateSession(ctx, draft)
	if err != nil {
		return nil, fault.NewInternalError("creating session", err)
	}

	page, questionIDs, values, err := s.entryPage(ctx, survey, session.ID, ident)
	if err != nil {
		return nil, err
	}

	response, err := s.store.CreateResponse(ctx, ResponseDraft{
		SessionID: session.ID,
		PageID:    page.ID,
		Questions: questionIDs,
		Values:    values,
	})
	if err != nil {
		return nil, fault.NewInternalError("creating first response", err)
	}

	if err := s.store.UpdateSession(ctx, session.ID, SessionPatch{LastResponseID: &response.ID}); err != nil {
		return nil, fault.NewInternalError("updating session pointer", err)
	}
	session.LastResponseID = &response.ID

	return &StartResult{Session: session}, nil
}

// entryPage computes the effective first page. Auth-related questions are
// auto-filled from the verified identity; for an anonymous respondent they
// are skipped, and a page consisting only of them is skipped entirely by
// following the successor pointers until a page with at least one open
// question turns up.
func (s *sessionService) entryPage(ctx context.Context, survey *models.Survey, sessionID int, ident *identity.Identity) (*models.Page, models.IDList, models.ValueMap, error) {
	pageID := survey.FirstPageID
	visited := map[int]bool{}

	for {
		page, err := s.store.ResolvePage(ctx, pageID)
		if err != nil {
			return nil, nil, nil, fault.NewInternalError("loading entry page", err)
		}

		questions, err := s.store.PageQuestions(ctx, pageID)
		if err != nil {
			return nil, nil, nil, fault.NewInternalError("loading entry page questions", err)
		}

		if ident == nil && fullyAuthGated(questions) {
			visited[pageID] = true

			next, err := s.skipTarget(ctx, questions)
			if err != nil {
				return nil, nil, nil, err
			}
			if next == 0 || visited[next] {
				s.logger.Printf("[FLOW] no open entry page for anonymous session: session=%d survey=%d page=%d",
					sessionID, survey.ID, pageID)
				return page, presentable(questions, nil), nil, nil
			}

			pageID = next
			continue
		}

		values := models.ValueMap{}
		for _, question := range questions {
			if question.AuthRelation == nil || ident == nil {
				continue
			}
			switch *question.AuthRelation {
			case models.AuthRelationEmail:
				values[question.ID] = ident.Email
			case models.AuthRelationPhone:
				values[question.ID] = ident.Phone
			}
		}

		return page, presentable(questions, ident), values, nil
	}
}

// skipTarget picks the page the successors of a fully gated page lead to.
func (s *sessionService) skipTarget(ctx context.Context, questions []models.Question) (int, error) {
	var candidates []int
	for _, question := range questions {
		if question.NextQuestionID != nil {
			candidates = append(candidates, *question.NextQuestionID)
		}
		for _, option := range question.Options {
			if option.NextQuestionID != nil {
				candidates = append(candidates, *option.NextQuestionID)
			}
		}
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	resolved, err := s.store.ResolveQuestions(ctx, candidates)
	if err != nil {
		return 0, fault.NewInternalError("resolving entry skip target", err)
	}
	if len(resolved) == 0 {
		return 0, nil
	}

	return resolved[0].PageID, nil
}

// presentable lists the page's question ids, leaving out auth-filled
// questions when there is no identity to fill them from.
func presentable(questions []models.Question, ident *identity.Identity) models.IDList {
	ids := make(models.IDList, 0, len(questions))
	for _, question := range questions {
		if question.AuthRelation != nil && ident == nil {
			continue
		}
		ids = append(ids, question.ID)
	}
	return ids
}

func fullyAuthGated(questions []models.Question) bool {
	if len(questions) == 0 {
		return false
	}
	for _, question := range questions {
		if question.AuthRelation == nil {
			return false
		}
	}
	return true
}

func newSessionToken() (string, error) {
	buf := make([]byte, 64)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
