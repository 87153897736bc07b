package graphstore

import (
	"time"

	"github.com/paulexconde/surveyflow/internal/models"
)

type sessionDTO struct {
	Token    string  `db:"token"`
	SurveyID int     `db:"survey_id"`
	Auth     *bool   `db:"auth"`
	Email    *string `db:"email"`
	Phone    *string `db:"phone"`
}

func (d sessionDTO) ToModel(id int) any {
	return &models.Session{
		ID:       id,
		Token:    d.Token,
		SurveyID: d.SurveyID,
		Auth:     d.Auth,
		Email:    d.Email,
		Phone:    d.Phone,
	}
}

type sessionPatchDTO struct {
	LastResponseID *int       `db:"last_response_id"`
	FinishedAt     *time.Time `db:"finished_at"`
	CanceledAt     *time.Time `db:"canceled_at"`
}

func (d sessionPatchDTO) ToModel(id int) any {
	return &models.Session{ID: id}
}

type responseDTO struct {
	SessionID          int             `db:"session_id"`
	PageID             int             `db:"page_id"`
	PreviousResponseID *int            `db:"previous_response_id"`
	Questions          models.IDList   `db:"questions"`
	Values             models.ValueMap `db:"answers"`
}

func (d responseDTO) ToModel(id int) any {
	return &models.Response{
		ID:                 id,
		SessionID:          d.SessionID,
		PageID:             d.PageID,
		PreviousResponseID: d.PreviousResponseID,
		Questions:          d.Questions,
		Values:             d.Values,
	}
}

type responsePatchDTO struct {
	Questions          models.IDList   `db:"questions"`
	Values             models.ValueMap `db:"answers"`
	PreviousResponseID *int            `db:"previous_response_id"`
}

func (d responsePatchDTO) ToModel(id int) any {
	return &models.Response{ID: id}
}

type surveyDTO struct {
	Title       string          `db:"title"`
	Description string          `db:"description"`
	Icon        string          `db:"icon"`
	AuthType    models.AuthType `db:"auth_type"`
	FirstPageID int             `db:"first_page_id"`
	Priority    int             `db:"priority"`
}

func (d surveyDTO) ToModel(id int) any {
	return &models.Survey{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Icon:        d.Icon,
		AuthType:    d.AuthType,
		FirstPageID: d.FirstPageID,
		Priority:    d.Priority,
	}
}

type pageDTO struct {
	Title       string          `db:"title"`
	Description string          `db:"description"`
	Type        models.PageType `db:"type"`
}

func (d pageDTO) ToModel(id int) any {
	return &models.Page{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Type:        d.Type,
	}
}

type questionDTO struct {
	PageID         int                  `db:"page_id"`
	SurveyID       int                  `db:"survey_id"`
	Type           models.QuestionType  `db:"type"`
	Required       bool                 `db:"required"`
	RiskEvaluation bool                 `db:"risk_evaluation"`
	Title          string               `db:"title"`
	Description    string               `db:"description"`
	Hint           string               `db:"hint"`
	Priority       int                  `db:"priority"`
	NextQuestionID *int                 `db:"next_question_id"`
	Condition      models.Condition     `db:"condition"`
	Data           models.QuestionData  `db:"data"`
	AuthRelation   *models.AuthRelation `db:"auth_relation"`
}

func (d questionDTO) ToModel(id int) any {
	return &models.Question{
		ID:             id,
		PageID:         d.PageID,
		SurveyID:       d.SurveyID,
		Type:           d.Type,
		Required:       d.Required,
		RiskEvaluation: d.RiskEvaluation,
		Title:          d.Title,
		Description:    d.Description,
		Hint:           d.Hint,
		Priority:       d.Priority,
		NextQuestionID: d.NextQuestionID,
		Condition:      d.Condition,
		Data:           d.Data,
		AuthRelation:   d.AuthRelation,
	}
}

type questionLinkDTO struct {
	NextQuestionID *int                 `db:"next_question_id"`
	Data           *models.QuestionData `db:"data"`
}

func (d questionLinkDTO) ToModel(id int) any {
	return &models.Question{ID: id}
}

type optionLinkDTO struct {
	NextQuestionID *int `db:"next_question_id"`
}

func (d optionLinkDTO) ToModel(id int) any {
	return &models.QuestionOption{ID: id}
}

type optionDTO struct {
	QuestionID     int               `db:"question_id"`
	Title          string            `db:"title"`
	Description    string            `db:"description"`
	Hint           string            `db:"hint"`
	Icon           string            `db:"icon"`
	Data           models.OptionData `db:"data"`
	NextQuestionID *int              `db:"next_question_id"`
}

func (d optionDTO) ToModel(id int) any {
	return &models.QuestionOption{
		ID:             id,
		QuestionID:     d.QuestionID,
		Title:          d.Title,
		Description:    d.Description,
		Hint:           d.Hint,
		Icon:           d.Icon,
		Data:           d.Data,
		NextQuestionID: d.NextQuestionID,
	}
}
