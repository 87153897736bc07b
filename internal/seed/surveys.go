package seed

import (
	"context"
	"fmt"

	"github.com/paulexconde/surveyflow/internal/models"
)

// productFeedback is the branching demo: optional sign-in on the first page,
// a satisfaction fork, and dynamic pages that only show reachable questions.
func productFeedback(ctx context.Context, store Store) error {
	b := newBuilder(ctx, store)

	welcome := b.page("Welcome", "Tell us how you want to continue.", models.PageStatic)
	experience := b.page("Your experience", "", models.PageDynamic)
	details := b.page("Details", "", models.PageDynamic)

	sv := b.survey(models.Survey{
		Title:       "Product feedback",
		Description: "Help us understand how the product works for you.",
		Icon:        "chat",
		AuthType:    models.AuthOptional,
		FirstPageID: welcome,
		Priority:    10,
	})

	emailRelation := models.AuthRelationEmail

	b.question("auth", models.Question{
		PageID:   welcome,
		SurveyID: sv,
		Type:     models.QuestionAuth,
		Required: true,
		Title:    "How would you like to continue?",
		Priority: 1,
	})
	b.option("auth", models.QuestionOption{
		Title: "Continue anonymously",
	}, "email")
	b.option("auth", models.QuestionOption{
		Title: "Sign in with your account",
		Data:  models.OptionData{Auth: true},
	}, "satisfaction")
	b.relate("auth", "email")

	b.question("email", models.Question{
		PageID:       experience,
		SurveyID:     sv,
		Type:         models.QuestionEmail,
		Required:     true,
		Title:        "Your email address",
		Hint:         "We only use it to follow up on your feedback.",
		Priority:     2,
		AuthRelation: &emailRelation,
	})
	b.next("email", "satisfaction")

	b.question("satisfaction", models.Question{
		PageID:   experience,
		SurveyID: sv,
		Type:     models.QuestionRadio,
		Required: true,
		Title:    "How satisfied are you with the product?",
		Priority: 1,
	})
	b.option("satisfaction", models.QuestionOption{Title: "Satisfied"}, "features")
	b.option("satisfaction", models.QuestionOption{Title: "Neutral"}, "features")
	b.option("satisfaction", models.QuestionOption{Title: "Unsatisfied"}, "problems")

	b.question("problems", models.Question{
		PageID:   details,
		SurveyID: sv,
		Type:     models.QuestionText,
		Required: true,
		Title:    "What went wrong?",
		Priority: 2,
	})
	b.next("problems", "features")

	b.question("features", models.Question{
		PageID:   details,
		SurveyID: sv,
		Type:     models.QuestionMultiselect,
		Title:    "Which features do you use regularly?",
		Priority: 1,
	})
	b.option("features", models.QuestionOption{Title: "Dashboards"}, "")
	b.option("features", models.QuestionOption{Title: "Alerts"}, "")
	b.option("features", models.QuestionOption{Title: "Public API"}, "")

	return b.finish()
}

// workplacePulse is the flat demo: static pages, no identity, a required
// question gated on consent and an expression-gated follow-up.
func workplacePulse(ctx context.Context, store Store) error {
	b := newBuilder(ctx, store)

	basics := b.page("Basics", "", models.PageStatic)
	habits := b.page("Work habits", "", models.PageStatic)

	sv := b.survey(models.Survey{
		Title:       "Workplace pulse",
		Description: "A two minute check-in on how and where you work.",
		Icon:        "pulse",
		AuthType:    models.AuthNone,
		FirstPageID: basics,
		Priority:    5,
	})

	consent := b.question("consent", models.Question{
		PageID:   basics,
		SurveyID: sv,
		Type:     models.QuestionCheckbox,
		Required: true,
		Title:    "I agree to the anonymous processing of my answers",
		Priority: 2,
	})
	b.next("consent", "mode")

	mode := b.question("mode", models.Question{
		PageID:    basics,
		SurveyID:  sv,
		Type:      models.QuestionRadio,
		Required:  true,
		Title:     "Where do you usually work?",
		Priority:  1,
		Condition: models.Condition{Question: consent, Answer: true},
	})
	remote := b.option("mode", models.QuestionOption{Title: "Remote"}, "remote-days")
	b.option("mode", models.QuestionOption{Title: "Office"}, "commute")
	b.option("mode", models.QuestionOption{Title: "Hybrid"}, "remote-days")

	b.question("remote-days", models.Question{
		PageID:   habits,
		SurveyID: sv,
		Type:     models.QuestionSelect,
		Required: true,
		Title:    "How many days a week do you work remotely?",
		Priority: 2,
		Condition: models.Condition{
			Expression: fmt.Sprintf(`values["%d"] == %d`, mode, remote),
		},
	})
	for _, days := range []string{"One", "Two", "Three", "Four", "Five"} {
		b.option("remote-days", models.QuestionOption{Title: days}, "")
	}
	b.next("remote-days", "commute")

	b.question("commute", models.Question{
		PageID:   habits,
		SurveyID: sv,
		Type:     models.QuestionInput,
		Title:    "How long is your commute on office days?",
		Priority: 1,
	})

	return b.finish()
}
