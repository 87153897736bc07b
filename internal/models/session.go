package models

import "time"

// Session is one respondent's run through a survey, identified by an opaque
// cookie-carried token. FinishedAt and CanceledAt are mutually exclusive
// terminal timestamps.
type Session struct {
	ID             int        `db:"id" json:"id"`
	Token          string     `db:"token" json:"-"`
	SurveyID       int        `db:"survey_id" json:"survey"`
	LastResponseID *int       `db:"last_response_id" json:"lastResponse,omitempty"`
	Auth           *bool      `db:"auth" json:"auth,omitempty"`
	Email          *string    `db:"email" json:"email,omitempty"`
	Phone          *string    `db:"phone" json:"phone,omitempty"`
	FinishedAt     *time.Time `db:"finished_at" json:"finishedAt,omitempty"`
	CanceledAt     *time.Time `db:"canceled_at" json:"canceledAt,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"-"`
	DeletedAt      *time.Time `db:"deleted_at" json:"-"`
}

// Active reports whether the session has not reached a terminal state.
func (s *Session) Active() bool {
	return s.FinishedAt == nil && s.CanceledAt == nil
}

// Response records one session's visit to one page: the authoritative
// question set shown there and the submitted or derived values. One row
// exists per (session, page) pair; revisits mutate it in place.
type Response struct {
	ID                 int        `db:"id" json:"id"`
	SessionID          int        `db:"session_id" json:"session"`
	PageID             int        `db:"page_id" json:"page"`
	PreviousResponseID *int       `db:"previous_response_id" json:"previousResponse,omitempty"`
	Questions          IDList     `db:"questions" json:"questions"`
	Values             ValueMap   `db:"answers" json:"values"`
	CreatedAt          time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time  `db:"updated_at" json:"-"`
	DeletedAt          *time.Time `db:"deleted_at" json:"-"`
}
