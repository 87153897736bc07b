package models

import "time"

type AuthType string

const (
	AuthNone     AuthType = "NONE"
	AuthOptional AuthType = "OPTIONAL"
	AuthRequired AuthType = "REQUIRED"
)

type PageType string

const (
	PageStatic  PageType = "STATIC"
	PageDynamic PageType = "DYNAMIC"
)

type QuestionType string

const (
	QuestionSelect      QuestionType = "SELECT"
	QuestionMultiselect QuestionType = "MULTISELECT"
	QuestionRadio       QuestionType = "RADIO"
	QuestionCheckbox    QuestionType = "CHECKBOX"
	QuestionEmail       QuestionType = "EMAIL"
	QuestionInput       QuestionType = "INPUT"
	QuestionText        QuestionType = "TEXT"
	QuestionDate        QuestionType = "DATE"
	QuestionDatetime    QuestionType = "DATETIME"
	QuestionFiles       QuestionType = "FILES"
	QuestionLocation    QuestionType = "LOCATION"
	QuestionAuth        QuestionType = "AUTH"
)

// AuthRelation marks a question whose value comes from verified identity
// data instead of being asked.
type AuthRelation string

const (
	AuthRelationEmail AuthRelation = "EMAIL"
	AuthRelationPhone AuthRelation = "PHONE"
)

type Survey struct {
	ID          int        `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Icon        string     `db:"icon" json:"icon,omitempty"`
	AuthType    AuthType   `db:"auth_type" json:"authType"`
	FirstPageID int        `db:"first_page_id" json:"firstPage"`
	Priority    int        `db:"priority" json:"priority"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"-"`
	DeletedAt   *time.Time `db:"deleted_at" json:"-"`
}

type Page struct {
	ID          int        `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Type        PageType   `db:"type" json:"type"`
	CreatedAt   time.Time  `db:"created_at" json:"-"`
	UpdatedAt   time.Time  `db:"updated_at" json:"-"`
	DeletedAt   *time.Time `db:"deleted_at" json:"-"`
}

type Question struct {
	ID             int           `db:"id" json:"id"`
	PageID         int           `db:"page_id" json:"page"`
	SurveyID       int           `db:"survey_id" json:"survey"`
	Type           QuestionType  `db:"type" json:"type"`
	Required       bool          `db:"required" json:"required"`
	RiskEvaluation bool          `db:"risk_evaluation" json:"riskEvaluation"`
	Title          string        `db:"title" json:"title"`
	Description    string        `db:"description" json:"description,omitempty"`
	Hint           string        `db:"hint" json:"hint,omitempty"`
	Priority       int           `db:"priority" json:"priority"`
	NextQuestionID *int          `db:"next_question_id" json:"nextQuestion,omitempty"`
	Condition      Condition     `db:"condition" json:"condition,omitempty"`
	Data           QuestionData  `db:"data" json:"data,omitempty"`
	AuthRelation   *AuthRelation `db:"auth_relation" json:"authRelation,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"-"`
	UpdatedAt      time.Time     `db:"updated_at" json:"-"`
	DeletedAt      *time.Time    `db:"deleted_at" json:"-"`

	// Options is populated from the question_options table, not a column.
	Options []QuestionOption `db:"-" json:"options,omitempty"`
}

type QuestionOption struct {
	ID             int        `db:"id" json:"id"`
	QuestionID     int        `db:"question_id" json:"question"`
	Title          string     `db:"title" json:"title"`
	Description    string     `db:"description" json:"description,omitempty"`
	Hint           string     `db:"hint" json:"hint,omitempty"`
	Icon           string     `db:"icon" json:"icon,omitempty"`
	Data           OptionData `db:"data" json:"data,omitempty"`
	NextQuestionID *int       `db:"next_question_id" json:"nextQuestion,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"-"`
	UpdatedAt      time.Time  `db:"updated_at" json:"-"`
	DeletedAt      *time.Time `db:"deleted_at" json:"-"`
}
