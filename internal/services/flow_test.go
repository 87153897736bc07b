package services

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/paulexconde/surveyflow/internal/identity"
	"github.com/paulexconde/surveyflow/internal/models"
	"github.com/paulexconde/surveyflow/pkg/fault"
)

type fakeProvider struct {
	ident *identity.Identity
}

func (p *fakeProvider) BeginURL(state string) string {
	return "https://id.example/begin?state=" + state
}

func (p *fakeProvider) Resolve(ctx context.Context, ticket string) (*identity.Identity, error) {
	if p.ident == nil {
		return nil, fault.NewClientError("unknown identity ticket", nil)
	}
	return p.ident, nil
}

// flowStore builds a two page survey: a static page with one branching
// radio question, then a dynamic page whose visible questions depend on the
// chosen option.
func flowStore() *memStore {
	m := newMemStore()
	m.surveys[1] = &models.Survey{ID: 1, AuthType: models.AuthNone, FirstPageID: 1}
	m.pages[1] = &models.Page{ID: 1, Type: models.PageStatic}
	m.pages[2] = &models.Page{ID: 2, Type: models.PageDynamic}
	m.questions[1] = &models.Question{
		ID: 1, PageID: 1, SurveyID: 1,
		Type: models.QuestionRadio, Required: true,
		Options: []models.QuestionOption{
			{ID: 21, QuestionID: 1, NextQuestionID: intp(2)},
			{ID: 22, QuestionID: 1, NextQuestionID: intp(3)},
		},
	}
	m.questions[2] = &models.Question{ID: 2, PageID: 2, SurveyID: 1, Type: models.QuestionText}
	m.questions[3] = &models.Question{ID: 3, PageID: 2, SurveyID: 1, Type: models.QuestionInput}
	return m
}

func newFlowService(m *memStore, p identity.Provider) (SessionService, *identity.StateCodec) {
	states := identity.NewStateCodec("test-secret", time.Hour)
	return NewSessionService(m, p, states, discardLogger()), states
}

func TestStart_CreatesSessionAndFirstResponse(t *testing.T) {
	store := flowStore()
	svc, _ := newFlowService(store, &fakeProvider{})

	result, err := svc.Start(context.Background(), 1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Redirect != "" {
		t.Fatalf("expected no redirect, got %q", result.Redirect)
	}

	session := result.Session
	if session == nil || session.Token == "" {
		t.Fatalf("expected session with token, got %+v", session)
	}
	if len(session.Token) != 128 {
		t.Errorf("expected 128 char token, got %d", len(session.Token))
	}
	if session.LastResponseID == nil {
		t.Fatalf("expected first response pointer on session")
	}

	response := store.responses[*session.LastResponseID]
	if response.PageID != 1 {
		t.Errorf("expected first response on page 1, got %d", response.PageID)
	}
	if !reflect.DeepEqual(response.Questions, models.IDList{1}) {
		t.Errorf("expected questions [1], got %v", response.Questions)
	}
}

func TestStart_UnknownSurvey(t *testing.T) {
	svc, _ := newFlowService(newMemStore(), &fakeProvider{})

	_, err := svc.Start(context.Background(), 404, false)
	if !fault.IsClientError(err) {
		t.Errorf("expected client error, got %v", err)
	}
}

func TestStart_RequiredAuthRedirects(t *testing.T) {
	store := flowStore()
	store.surveys[1].AuthType = models.AuthRequired
	svc, _ := newFlowService(store, &fakeProvider{})

	result, err := svc.Start(context.Background(), 1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(result.Redirect, "https://id.example/begin?state=") {
		t.Errorf("expected provider redirect, got %q", result.Redirect)
	}
	if result.Session != nil {
		t.Errorf("expected no session before identity completes")
	}
	if len(store.sessions) != 0 {
		t.Errorf("expected no session rows, got %d", len(store.sessions))
	}
}

func TestStart_OptionalAuthRedirectsOnlyWhenRequested(t *testing.T) {
	store := flowStore()
	store.surveys[1].AuthType = models.AuthOptional
	svc, _ := newFlowService(store, &fakeProvider{})

	result, err := svc.Start(context.Background(), 1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Session == nil {
		t.Errorf("expected anonymous session without auth request")
	}

	result, err = svc.Start(context.Background(), 1, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Redirect == "" {
		t.Errorf("expected redirect when auth requested")
	}
}

func TestCompleteIdentity_CreatesAuthenticatedSession(t *testing.T) {
	emailRelation := models.AuthRelationEmail

	store := flowStore()
	store.surveys[1].AuthType = models.AuthRequired
	store.questions[4] = &models.Question{
		ID: 4, PageID: 1, SurveyID: 1,
		Type:         models.QuestionEmail,
		AuthRelation: &emailRelation,
	}

	provider := &fakeProvider{ident: &identity.Identity{Email: "jane@example.com"}}
	svc, states := newFlowService(store, provider)

	state, err := states.Encode(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.CompleteIdentity(context.Background(), "ticket-1", state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	session := result.Session
	if session.Auth == nil || !*session.Auth {
		t.Errorf("expected authenticated session, got %+v", session)
	}
	if session.Email == nil || *session.Email != "jane@example.com" {
		t.Errorf("expected verified email on session, got %+v", session.Email)
	}

	response := store.responses[*session.LastResponseID]
	if response.Values[4] != "jane@example.com" {
		t.Errorf("expected auto-filled email on question 4, got %v", response.Values)
	}
	if !reflect.DeepEqual(response.Questions, models.IDList{1, 4}) {
		t.Errorf("expected questions [1 4], got %v", response.Questions)
	}
}

func TestCompleteIdentity_RejectsTamperedState(t *testing.T) {
	svc, _ := newFlowService(flowStore(), &fakeProvider{ident: &identity.Identity{Email: "x@y.z"}})

	_, err := svc.CompleteIdentity(context.Background(), "ticket-1", "not-a-state")
	if !fault.IsClientError(err) {
		t.Errorf("expected client error, got %v", err)
	}
}

func TestStart_AnonymousSkipsAuthOnlyPage(t *testing.T) {
	emailRelation := models.AuthRelationEmail

	store := newMemStore()
	store.surveys[3] = &models.Survey{ID: 3, AuthType: models.AuthOptional, FirstPageID: 5}
	store.pages[5] = &models.Page{ID: 5, Type: models.PageStatic}
	store.pages[6] = &models.Page{ID: 6, Type: models.PageStatic}
	store.questions[6] = &models.Question{
		ID: 6, PageID: 5, SurveyID: 3,
		Type:           models.QuestionEmail,
		AuthRelation:   &emailRelation,
		NextQuestionID: intp(7),
	}
	store.questions[7] = &models.Question{ID: 7, PageID: 6, SurveyID: 3, Type: models.QuestionText}

	svc, _ := newFlowService(store, &fakeProvider{})

	result, err := svc.Start(context.Background(), 3, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	response := store.responses[*result.Session.LastResponseID]
	if response.PageID != 6 {
		t.Errorf("expected entry to skip to page 6, got %d", response.PageID)
	}
	if !reflect.DeepEqual(response.Questions, models.IDList{7}) {
		t.Errorf("expected questions [7], got %v", response.Questions)
	}
}

func TestRespond_ValidationErrorsDoNotAdvance(t *testing.T) {
	store := flowStore()
	svc, _ := newFlowService(store, &fakeProvider{})

	started, _ := svc.Start(context.Background(), 1, false)
	session := started.Session

	result, err := svc.Respond(context.Background(), session, *session.LastResponseID, models.ValueMap{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Errors[1] != ErrCodeRequired {
		t.Errorf("expected REQUIRED error, got %v", result.Errors)
	}
	if result.NextResponse != nil {
		t.Errorf("expected no advance on validation errors")
	}
	if len(store.responses) != 1 {
		t.Errorf("expected no new response rows, got %d", len(store.responses))
	}
}

func TestRespond_AdvancesToBranchTarget(t *testing.T) {
	store := flowStore()
	svc, _ := newFlowService(store, &fakeProvider{})

	started, _ := svc.Start(context.Background(), 1, false)
	session := started.Session
	first := *session.LastResponseID

	result, err := svc.Respond(context.Background(), session, first, models.ValueMap{1: float64(21)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NextResponse == nil {
		t.Fatalf("expected next response, got finish")
	}

	next := store.responses[*result.NextResponse]
	if next.PageID != 2 {
		t.Errorf("expected next response on page 2, got %d", next.PageID)
	}
	// Dynamic page: only the chosen branch is visible.
	if !reflect.DeepEqual(next.Questions, models.IDList{2}) {
		t.Errorf("expected questions [2], got %v", next.Questions)
	}
	if next.PreviousResponseID == nil || *next.PreviousResponseID != first {
		t.Errorf("expected chain link to response %d", first)
	}
	if session.LastResponseID == nil || store.sessions[session.ID].LastResponseID == nil ||
		*store.sessions[session.ID].LastResponseID != next.ID {
		t.Errorf("expected session pointer on response %d", next.ID)
	}

	// The submitted values were recorded on the answered response.
	if store.responses[first].Values[1] != float64(21) {
		t.Errorf("expected recorded answer, got %v", store.responses[first].Values)
	}
}

func TestRespond_FinishesWhenNothingFollows(t *testing.T) {
	store := flowStore()
	svc, _ := newFlowService(store, &fakeProvider{})

	started, _ := svc.Start(context.Background(), 1, false)
	session := started.Session

	result, err := svc.Respond(context.Background(), session, *session.LastResponseID, models.ValueMap{1: float64(21)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err = svc.Respond(context.Background(), session, *result.NextResponse, models.ValueMap{2: "all good"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NextResponse != nil {
		t.Errorf("expected finish, got next response %v", *result.NextResponse)
	}
	if store.sessions[session.ID].FinishedAt == nil {
		t.Errorf("expected finished session")
	}
}

func TestRespond_RevisitUpdatesExistingPageResponse(t *testing.T) {
	store := flowStore()
	svc, _ := newFlowService(store, &fakeProvider{})

	started, _ := svc.Start(context.Background(), 1, false)
	session := started.Session
	first := *session.LastResponseID

	result, err := svc.Respond(context.Background(), session, first, models.ValueMap{1: float64(21)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pageTwo := *result.NextResponse

	// Going back and choosing the other branch reuses the page 2 row.
	result, err = svc.Respond(context.Background(), session, first, models.ValueMap{1: float64(22)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *result.NextResponse != pageTwo {
		t.Errorf("expected reused response %d, got %d", pageTwo, *result.NextResponse)
	}
	if !reflect.DeepEqual(store.responses[pageTwo].Questions, models.IDList{3}) {
		t.Errorf("expected refreshed questions [3], got %v", store.responses[pageTwo].Questions)
	}
}

func TestRespond_InsertRaceFallsBackToWinner(t *testing.T) {
	store := flowStore()
	svc, _ := newFlowService(store, &fakeProvider{})

	started, _ := svc.Start(context.Background(), 1, false)
	session := started.Session

	store.conflictOnce = true

	result, err := svc.Respond(context.Background(), session, *session.LastResponseID, models.ValueMap{1: float64(21)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NextResponse == nil {
		t.Fatalf("expected next response after conflict retry")
	}

	count := 0
	for _, response := range store.responses {
		if response.SessionID == session.ID && response.PageID == 2 {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one page 2 response, got %d", count)
	}
}

func TestRespond_DerivedEmailLandsOnNextResponse(t *testing.T) {
	store := newMemStore()
	store.surveys[4] = &models.Survey{ID: 4, AuthType: models.AuthNone, FirstPageID: 7}
	store.pages[7] = &models.Page{ID: 7, Type: models.PageStatic}
	store.pages[8] = &models.Page{ID: 8, Type: models.PageDynamic}
	store.questions[8] = &models.Question{
		ID: 8, PageID: 7, SurveyID: 4,
		Type: models.QuestionAuth, Required: true,
		Data: models.QuestionData{RelatedQuestion: 9},
		Options: []models.QuestionOption{
			{ID: 41, QuestionID: 8, Data: models.OptionData{Auth: true}, NextQuestionID: intp(9)},
		},
	}
	store.questions[9] = &models.Question{ID: 9, PageID: 8, SurveyID: 4, Type: models.QuestionEmail}

	svc, _ := newFlowService(store, &fakeProvider{})

	started, _ := svc.Start(context.Background(), 4, false)
	session := started.Session

	result, err := svc.Respond(context.Background(), session, *session.LastResponseID, models.ValueMap{
		8: map[string]any{
			"option": float64(41),
			"data": map[string]any{
				"personalCode": "39001010000",
				"email":        "jane@example.com",
				"fullName":     "Jane Example",
			},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	next := store.responses[*result.NextResponse]
	if next.Values[9] != "jane@example.com" {
		t.Errorf("expected derived email on question 9, got %v", next.Values)
	}
}

func TestRespond_InactiveSessionConflicts(t *testing.T) {
	store := flowStore()
	svc, _ := newFlowService(store, &fakeProvider{})

	started, _ := svc.Start(context.Background(), 1, false)
	session := started.Session

	if err := svc.Cancel(context.Background(), session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	session = store.sessions[session.ID]
	_, err := svc.Respond(context.Background(), session, *session.LastResponseID, models.ValueMap{1: float64(21)})
	if !fault.IsConflictError(err) {
		t.Errorf("expected conflict on canceled session, got %v", err)
	}
}

func TestCancel_Transitions(t *testing.T) {
	store := flowStore()
	svc, _ := newFlowService(store, &fakeProvider{})

	started, _ := svc.Start(context.Background(), 1, false)
	session := started.Session

	if err := svc.Cancel(context.Background(), session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.sessions[session.ID].CanceledAt == nil {
		t.Errorf("expected canceled session")
	}

	// Canceling again is a no-op.
	if err := svc.Cancel(context.Background(), store.sessions[session.ID]); err != nil {
		t.Errorf("expected idempotent cancel, got %v", err)
	}

	// Canceling a finished session is a conflict.
	now := time.Now()
	finished := &models.Session{ID: 99, FinishedAt: &now}
	if err := svc.Cancel(context.Background(), finished); !fault.IsConflictError(err) {
		t.Errorf("expected conflict, got %v", err)
	}
}
