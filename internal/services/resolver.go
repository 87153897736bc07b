package services

import (
	"context"
	"log"

	"github.com/paulexconde/surveyflow/internal/models"
	"github.com/paulexconde/surveyflow/pkg/fault"
)

// Destination is the resolved next page and the authoritative ordered set
// of question ids to present on it.
type Destination struct {
	Page        *models.Page
	QuestionIDs models.IDList
}

// FlowRef identifies the in-flight submission for integrity logging.
type FlowRef struct {
	SessionID  int
	ResponseID int
}

// BranchResolver turns candidate next-question ids into a destination. A
// nil destination with a nil error signals survey completion.
type BranchResolver interface {
	Resolve(ctx context.Context, candidates []int, ref FlowRef) (*Destination, error)
}

type branchResolver struct {
	pages     PageStore
	questions QuestionStore
	logger    *log.Logger
}

func NewBranchResolver(pages PageStore, questions QuestionStore, logger *log.Logger) BranchResolver {
	return &branchResolver{pages: pages, questions: questions, logger: logger}
}

func (r *branchResolver) Resolve(ctx context.Context, candidates []int, ref FlowRef) (*Destination, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	resolved, err := r.questions.ResolveQuestions(ctx, candidates)
	if err != nil {
		return nil, fault.NewInternalError("resolving candidate questions", err)
	}

	if len(resolved) == 0 {
		return nil, nil
	}

	// All candidates must live on one page. A spread is an authoring
	// defect: keep the respondent moving on the first candidate's page.
	pageID := resolved[0].PageID
	for _, question := range resolved[1:] {
		if question.PageID != pageID {
			r.logger.Printf("[FLOW] next questions span pages: session=%d response=%d question=%d page=%d picked page=%d",
				ref.SessionID, ref.ResponseID, question.ID, question.PageID, pageID)
		}
	}

	page, err := r.pages.ResolvePage(ctx, pageID)
	if err != nil {
		return nil, fault.NewInternalError("resolving destination page", err)
	}

	pageQuestions, err := r.pages.PageQuestions(ctx, pageID)
	if err != nil {
		return nil, fault.NewInternalError("resolving destination page questions", err)
	}

	return &Destination{
		Page:        page,
		QuestionIDs: r.questionSet(page, pageQuestions, candidates, ref),
	}, nil
}

// questionSet computes the page's authoritative question set: every
// question of a static page, or for a dynamic page only the ones reachable
// from the candidates through nextQuestion pointers of questions and their
// options, in first-discovered order.
func (r *branchResolver) questionSet(page *models.Page, pageQuestions []models.Question, candidates []int, ref FlowRef) models.IDList {
	if page.Type != models.PageDynamic {
		ids := make(models.IDList, 0, len(pageQuestions))
		for _, question := range pageQuestions {
			ids = append(ids, question.ID)
		}
		return ids
	}

	byID := make(map[int]*models.Question, len(pageQuestions))
	for i := range pageQuestions {
		byID[pageQuestions[i].ID] = &pageQuestions[i]
	}

	visited := make(map[int]bool)
	inStack := make(map[int]bool)
	order := models.IDList{}
	cycleSeen := false

	var walk func(id int)
	walk = func(id int) {
		question, onPage := byID[id]
		if !onPage {
			return
		}
		if visited[id] {
			// Converging branches revisit questions legitimately; only a
			// revisit of a question still on the walk stack is a cycle.
			// Either way the walk stops here instead of recursing.
			if inStack[id] && !cycleSeen {
				cycleSeen = true
				r.logger.Printf("[FLOW] question graph cycle: session=%d response=%d page=%d question=%d",
					ref.SessionID, ref.ResponseID, page.ID, id)
			}
			return
		}
		visited[id] = true
		inStack[id] = true
		order = append(order, id)

		if question.NextQuestionID != nil {
			walk(*question.NextQuestionID)
		}
		for _, option := range question.Options {
			if option.NextQuestionID != nil {
				walk(*option.NextQuestionID)
			}
		}

		inStack[id] = false
	}

	for _, id := range candidates {
		walk(id)
	}

	return order
}
