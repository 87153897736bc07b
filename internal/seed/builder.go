package seed

import (
	"context"
	"fmt"

	"github.com/paulexconde/surveyflow/internal/models"
)

// builder carries the context and first error through a survey definition so
// the seed functions read as a flat script. Next-question links are deferred
// until every question of the survey exists.
type builder struct {
	ctx   context.Context
	store Store
	err   error
	qids  map[string]int
	links []func() error
}

func newBuilder(ctx context.Context, store Store) *builder {
	return &builder{
		ctx:   ctx,
		store: store,
		qids:  make(map[string]int),
	}
}

func (b *builder) page(title, description string, typ models.PageType) int {
	if b.err != nil {
		return 0
	}

	page, err := b.store.CreatePage(b.ctx, models.Page{
		Title:       title,
		Description: description,
		Type:        typ,
	})
	if err != nil {
		b.err = err
		return 0
	}

	return page.ID
}

func (b *builder) survey(survey models.Survey) int {
	if b.err != nil {
		return 0
	}

	created, err := b.store.CreateSurvey(b.ctx, survey)
	if err != nil {
		b.err = err
		return 0
	}

	return created.ID
}

func (b *builder) question(key string, question models.Question) int {
	if b.err != nil {
		return 0
	}

	created, err := b.store.CreateQuestion(b.ctx, question)
	if err != nil {
		b.err = err
		return 0
	}

	b.qids[key] = created.ID
	return created.ID
}

func (b *builder) option(questionKey string, option models.QuestionOption, nextKey string) int {
	if b.err != nil {
		return 0
	}

	option.QuestionID = b.id(questionKey)
	created, err := b.store.CreateOption(b.ctx, option)
	if err != nil {
		b.err = err
		return 0
	}

	if nextKey != "" {
		id := created.ID
		b.links = append(b.links, func() error {
			return b.store.LinkOption(b.ctx, id, b.id(nextKey))
		})
	}

	return created.ID
}

// next wires question fromKey to question toKey once both exist.
func (b *builder) next(fromKey, toKey string) {
	b.links = append(b.links, func() error {
		return b.store.LinkQuestion(b.ctx, b.id(fromKey), b.id(toKey))
	})
}

// relate marks targetKey as the question receiving the verified email after
// identity completes on authKey.
func (b *builder) relate(authKey, targetKey string) {
	b.links = append(b.links, func() error {
		return b.store.RelateQuestion(b.ctx, b.id(authKey), b.id(targetKey))
	})
}

func (b *builder) id(key string) int {
	id, ok := b.qids[key]
	if !ok && b.err == nil {
		b.err = fmt.Errorf("seed references unknown question %q", key)
	}
	return id
}

func (b *builder) finish() error {
	if b.err != nil {
		return b.err
	}

	for _, link := range b.links {
		if err := link(); err != nil {
			return err
		}
		if b.err != nil {
			return b.err
		}
	}

	return nil
}
