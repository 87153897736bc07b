package services

import (
	"context"
	"errors"
	"time"

	"github.com/paulexconde/surveyflow/internal/models"
	"github.com/paulexconde/surveyflow/pkg/fault"
)

// ResponseLedger persists a validated submission and materializes the
// destination page's response: find-or-create per (session, page), carrying
// forward derived values and relinking the response chain.
type ResponseLedger interface {
	// Advance returns the next response id, or nil when the flow finished.
	Advance(ctx context.Context, current *models.Response, values, derived models.ValueMap, dest *Destination) (*int, error)
}

type responseLedger struct {
	responses ResponseStore
	sessions  SessionStore
}

func NewResponseLedger(responses ResponseStore, sessions SessionStore) ResponseLedger {
	return &responseLedger{responses: responses, sessions: sessions}
}

func (l *responseLedger) Advance(ctx context.Context, current *models.Response, values, derived models.ValueMap, dest *Destination) (*int, error) {
	// Submitted values are kept even when the flow ends here.
	if values == nil {
		values = models.ValueMap{}
	}
	if err := l.responses.UpdateResponse(ctx, current.ID, ResponsePatch{Values: values}); err != nil {
		return nil, fault.NewInternalError("persisting response values", err)
	}

	if dest == nil {
		now := time.Now()
		if err := l.sessions.UpdateSession(ctx, current.SessionID, SessionPatch{FinishedAt: &now}); err != nil {
			return nil, fault.NewInternalError("finishing session", err)
		}
		return nil, nil
	}

	next, err := l.findOrCreate(ctx, current, derived, dest)
	if err != nil {
		return nil, err
	}

	if err := l.sessions.UpdateSession(ctx, current.SessionID, SessionPatch{LastResponseID: &next.ID}); err != nil {
		return nil, fault.NewInternalError("updating session pointer", err)
	}

	return &next.ID, nil
}

func (l *responseLedger) findOrCreate(ctx context.Context, current *models.Response, derived models.ValueMap, dest *Destination) (*models.Response, error) {
	existing, err := l.responses.FindPageResponse(ctx, current.SessionID, dest.Page.ID)

	switch {
	case err == nil:
		return l.refresh(ctx, existing, current, derived, dest)

	case errors.Is(err, fault.ErrNotFound):
		draft := ResponseDraft{
			SessionID:          current.SessionID,
			PageID:             dest.Page.ID,
			PreviousResponseID: &current.ID,
			Questions:          dest.QuestionIDs,
			Values:             derived.Clone(),
		}

		created, createErr := l.responses.CreateResponse(ctx, draft)
		if createErr == nil {
			return created, nil
		}

		// A concurrent respond for the same page won the insert; the
		// (session_id, page_id) unique index turned ours into a conflict.
		// Fall back to updating the winner's row.
		if errors.Is(createErr, fault.ErrUniqueViolation) {
			existing, err = l.responses.FindPageResponse(ctx, current.SessionID, dest.Page.ID)
			if err != nil {
				return nil, fault.NewInternalError("re-reading response after conflict", err)
			}
			return l.refresh(ctx, existing, current, derived, dest)
		}

		return nil, fault.NewInternalError("creating next response", createErr)

	default:
		return nil, fault.NewInternalError("looking up next response", err)
	}
}

// refresh overwrites the question set, relinks the chain and merges derived
// values into an already materialized response. Fresh derived values win;
// unrelated recorded values stay.
func (l *responseLedger) refresh(ctx context.Context, existing, current *models.Response, derived models.ValueMap, dest *Destination) (*models.Response, error) {
	patch := ResponsePatch{
		Questions:          dest.QuestionIDs,
		PreviousResponseID: &current.ID,
	}

	if len(derived) > 0 {
		merged := existing.Values.Clone()
		for id, value := range derived {
			merged[id] = value
		}
		patch.Values = merged
	}

	if err := l.responses.UpdateResponse(ctx, existing.ID, patch); err != nil {
		return nil, fault.NewInternalError("updating next response", err)
	}

	existing.Questions = dest.QuestionIDs
	existing.PreviousResponseID = &current.ID
	if patch.Values != nil {
		existing.Values = patch.Values
	}

	return existing, nil
}
