package services

import (
	"github.com/paulexconde/surveyflow/internal/models"
)

// Validation error codes returned per question id.
const (
	ErrCodeRequired   = "REQUIRED"
	ErrCodeOption     = "OPTION"
	ErrCodeArray      = "ARRAY"
	ErrCodeBoolean    = "BOOLEAN"
	ErrCodeAuthOption = "AUTH_OPTION"
	ErrCodeAuthData   = "AUTH_DATA"
)

// ValidationResult is either a non-empty Errors map, or the candidate
// next-question ids plus values derived as a side effect of answering
// (identity data copied into a later question).
type ValidationResult struct {
	Errors  map[int]string
	Next    []int
	Derived models.ValueMap
}

func (r *ValidationResult) addNext(id int) {
	for _, existing := range r.Next {
		if existing == id {
			return
		}
	}
	r.Next = append(r.Next, id)
}

// AnswerValidator checks one page's submitted values against the
// question-type rules.
type AnswerValidator interface {
	Validate(questions []models.Question, values models.ValueMap) *ValidationResult
}

type answerValidator struct{}

func NewAnswerValidator() AnswerValidator {
	return &answerValidator{}
}

func (v *answerValidator) Validate(questions []models.Question, values models.ValueMap) *ValidationResult {
	result := &ValidationResult{
		Errors:  map[int]string{},
		Derived: models.ValueMap{},
	}

	for _, question := range questions {
		// Every question that names a successor contributes it, so pages
		// with several independently branching questions keep all exits.
		if question.NextQuestionID != nil {
			result.addNext(*question.NextQuestionID)
		}

		value, ok := values[question.ID]
		if !ok || value == nil {
			if question.Required && conditionMet(question.Condition, values) {
				result.Errors[question.ID] = ErrCodeRequired
			}
			continue
		}

		switch question.Type {
		case models.QuestionRadio, models.QuestionSelect:
			option := matchOption(question.Options, value)
			if option == nil {
				result.Errors[question.ID] = ErrCodeOption
				break
			}
			if option.NextQuestionID != nil {
				result.addNext(*option.NextQuestionID)
			}

		case models.QuestionCheckbox:
			if _, isBool := value.(bool); !isBool {
				result.Errors[question.ID] = ErrCodeBoolean
			}

		case models.QuestionMultiselect:
			items, isSlice := asSlice(value)
			if !isSlice {
				result.Errors[question.ID] = ErrCodeArray
				break
			}
			for _, item := range items {
				option := matchOption(question.Options, item)
				if option == nil {
					result.Errors[question.ID] = ErrCodeOption
					break
				}
				if option.NextQuestionID != nil {
					result.addNext(*option.NextQuestionID)
				}
			}

		case models.QuestionAuth:
			v.validateAuth(question, value, result)

		case models.QuestionFiles, models.QuestionEmail, models.QuestionLocation:
			// accepted structurally, semantic rules reserved
		}
	}

	return result
}

// validateAuth checks an AUTH answer: {option, data?}. The chosen option
// must exist; an auth-flagged option additionally needs personal code,
// email and full name, and the verified email becomes a derived value for
// the related question on the next page's response.
func (v *answerValidator) validateAuth(question models.Question, value any, result *ValidationResult) {
	body, isMap := value.(map[string]any)
	if !isMap {
		result.Errors[question.ID] = ErrCodeAuthOption
		return
	}

	option := matchOption(question.Options, body["option"])
	if option == nil {
		result.Errors[question.ID] = ErrCodeAuthOption
		return
	}

	if option.Data.Auth {
		data, _ := body["data"].(map[string]any)
		personalCode, _ := data["personalCode"].(string)
		email, _ := data["email"].(string)
		fullName, _ := data["fullName"].(string)

		if personalCode == "" || email == "" || fullName == "" {
			result.Errors[question.ID] = ErrCodeAuthData
			return
		}

		if question.Data.RelatedQuestion != 0 {
			result.Derived[question.Data.RelatedQuestion] = email
		}
	}

	if option.NextQuestionID != nil {
		result.addNext(*option.NextQuestionID)
	}
}

// matchOption finds the option whose id equals the submitted value.
// Submitted ids arrive as json numbers, so the comparison is numeric.
func matchOption(options []models.QuestionOption, value any) *models.QuestionOption {
	id, ok := asID(value)
	if !ok {
		return nil
	}
	for i := range options {
		if options[i].ID == id {
			return &options[i]
		}
	}
	return nil
}

func asID(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}

func asSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case models.IDList:
		items := make([]any, len(v))
		for i, id := range v {
			items[i] = id
		}
		return items, true
	default:
		return nil, false
	}
}
