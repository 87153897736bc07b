package services

import (
	"bytes"
	"context"
	"io"
	"log"
	"reflect"
	"strings"
	"testing"

	"github.com/paulexconde/surveyflow/internal/models"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestResolve_NoCandidatesMeansCompletion(t *testing.T) {
	store := newMemStore()
	resolver := NewBranchResolver(store, store, discardLogger())

	dest, err := resolver.Resolve(context.Background(), nil, FlowRef{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest != nil {
		t.Errorf("expected nil destination, got %+v", dest)
	}
}

func TestResolve_UnknownCandidatesMeanCompletion(t *testing.T) {
	store := newMemStore()
	resolver := NewBranchResolver(store, store, discardLogger())

	dest, err := resolver.Resolve(context.Background(), []int{404}, FlowRef{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest != nil {
		t.Errorf("expected nil destination for unresolvable candidates, got %+v", dest)
	}
}

func TestResolve_StaticPageTakesAllQuestions(t *testing.T) {
	store := newMemStore()
	store.pages[1] = &models.Page{ID: 1, Type: models.PageStatic}
	store.questions[10] = &models.Question{ID: 10, PageID: 1, Priority: 1}
	store.questions[11] = &models.Question{ID: 11, PageID: 1, Priority: 2}
	store.questions[12] = &models.Question{ID: 12, PageID: 1}

	resolver := NewBranchResolver(store, store, discardLogger())

	dest, err := resolver.Resolve(context.Background(), []int{10}, FlowRef{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest.Page.ID != 1 {
		t.Errorf("expected page 1, got %d", dest.Page.ID)
	}
	// Every question of the page in priority order, not just the candidate.
	if !reflect.DeepEqual(dest.QuestionIDs, models.IDList{11, 10, 12}) {
		t.Errorf("expected [11 10 12], got %v", dest.QuestionIDs)
	}
}

func TestResolve_DynamicPageWalksReachableQuestions(t *testing.T) {
	store := newMemStore()
	store.pages[2] = &models.Page{ID: 2, Type: models.PageDynamic}
	store.questions[10] = &models.Question{ID: 10, PageID: 2, NextQuestionID: intp(11)}
	store.questions[11] = &models.Question{
		ID:     11,
		PageID: 2,
		Options: []models.QuestionOption{
			{ID: 30, NextQuestionID: intp(12)},
		},
	}
	store.questions[12] = &models.Question{ID: 12, PageID: 2}
	// Not reachable from the candidate.
	store.questions[13] = &models.Question{ID: 13, PageID: 2}

	resolver := NewBranchResolver(store, store, discardLogger())

	dest, err := resolver.Resolve(context.Background(), []int{10}, FlowRef{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(dest.QuestionIDs, models.IDList{10, 11, 12}) {
		t.Errorf("expected [10 11 12], got %v", dest.QuestionIDs)
	}
}

func TestResolve_DynamicWalkStaysOnPage(t *testing.T) {
	store := newMemStore()
	store.pages[2] = &models.Page{ID: 2, Type: models.PageDynamic}
	store.questions[10] = &models.Question{ID: 10, PageID: 2, NextQuestionID: intp(50)}
	// Successor on another page, must not join the set.
	store.questions[50] = &models.Question{ID: 50, PageID: 3}

	resolver := NewBranchResolver(store, store, discardLogger())

	dest, err := resolver.Resolve(context.Background(), []int{10}, FlowRef{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(dest.QuestionIDs, models.IDList{10}) {
		t.Errorf("expected [10], got %v", dest.QuestionIDs)
	}
}

func TestResolve_CyclicGraphTerminates(t *testing.T) {
	store := newMemStore()
	store.pages[2] = &models.Page{ID: 2, Type: models.PageDynamic}
	store.questions[10] = &models.Question{ID: 10, PageID: 2, NextQuestionID: intp(11)}
	store.questions[11] = &models.Question{ID: 11, PageID: 2, NextQuestionID: intp(10)}

	var buf bytes.Buffer
	resolver := NewBranchResolver(store, store, log.New(&buf, "", 0))

	dest, err := resolver.Resolve(context.Background(), []int{10}, FlowRef{SessionID: 1, ResponseID: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(dest.QuestionIDs, models.IDList{10, 11}) {
		t.Errorf("expected [10 11], got %v", dest.QuestionIDs)
	}
	if !strings.Contains(buf.String(), "cycle") {
		t.Errorf("expected cycle log entry, got %q", buf.String())
	}
}

func TestResolve_ConvergingBranchesAreNotCycles(t *testing.T) {
	store := newMemStore()
	store.pages[2] = &models.Page{ID: 2, Type: models.PageDynamic}
	// Diamond: both options of 10 lead to 12.
	store.questions[10] = &models.Question{
		ID:     10,
		PageID: 2,
		Options: []models.QuestionOption{
			{ID: 30, NextQuestionID: intp(11)},
			{ID: 31, NextQuestionID: intp(12)},
		},
	}
	store.questions[11] = &models.Question{ID: 11, PageID: 2, NextQuestionID: intp(12)}
	store.questions[12] = &models.Question{ID: 12, PageID: 2}

	var buf bytes.Buffer
	resolver := NewBranchResolver(store, store, log.New(&buf, "", 0))

	dest, err := resolver.Resolve(context.Background(), []int{10}, FlowRef{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(dest.QuestionIDs, models.IDList{10, 11, 12}) {
		t.Errorf("expected [10 11 12], got %v", dest.QuestionIDs)
	}
	if strings.Contains(buf.String(), "cycle") {
		t.Errorf("diamond merge logged as cycle: %q", buf.String())
	}
}

func TestResolve_CrossPageSpreadPicksFirstCandidatePage(t *testing.T) {
	store := newMemStore()
	store.pages[2] = &models.Page{ID: 2, Type: models.PageDynamic}
	store.pages[3] = &models.Page{ID: 3, Type: models.PageDynamic}
	store.questions[10] = &models.Question{ID: 10, PageID: 2}
	store.questions[20] = &models.Question{ID: 20, PageID: 3}

	var buf bytes.Buffer
	resolver := NewBranchResolver(store, store, log.New(&buf, "", 0))

	dest, err := resolver.Resolve(context.Background(), []int{10, 20}, FlowRef{SessionID: 1, ResponseID: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest.Page.ID != 2 {
		t.Errorf("expected first candidate's page 2, got %d", dest.Page.ID)
	}
	if !strings.Contains(buf.String(), "span pages") {
		t.Errorf("expected integrity log entry, got %q", buf.String())
	}
}
