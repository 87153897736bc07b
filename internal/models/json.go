package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ValueMap holds submitted or derived answer values keyed by question id.
// Stored as a json column.
type ValueMap map[int]any

func (m ValueMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *ValueMap) Scan(src any) error {
	return scanJSON(src, m)
}

// Clone returns a shallow copy so callers can merge values without mutating
// the loaded row.
func (m ValueMap) Clone() ValueMap {
	out := make(ValueMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// IDList is an ordered set of entity ids stored as a json column.
type IDList []int

func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *IDList) Scan(src any) error {
	return scanJSON(src, l)
}

// Condition gates a question's required-ness on another question's answer.
// The zero value means no condition. Answer holds the value the referenced
// question must equal; Expression optionally replaces the equality check
// with an expression evaluated against the submitted values.
type Condition struct {
	Question   int    `json:"question,omitempty"`
	Answer     any    `json:"value,omitempty"`
	Expression string `json:"expression,omitempty"`
}

func (c Condition) IsSet() bool {
	return c.Question != 0 || c.Expression != ""
}

func (c Condition) Value() (driver.Value, error) {
	if !c.IsSet() {
		return nil, nil
	}
	return json.Marshal(c)
}

func (c *Condition) Scan(src any) error {
	return scanJSON(src, c)
}

// QuestionData carries type-specific question payload; AUTH questions use
// RelatedQuestion to point at the question that receives the verified email.
type QuestionData struct {
	RelatedQuestion int `json:"relatedQuestion,omitempty"`
}

func (d QuestionData) Value() (driver.Value, error) {
	if d == (QuestionData{}) {
		return nil, nil
	}
	return json.Marshal(d)
}

func (d *QuestionData) Scan(src any) error {
	return scanJSON(src, d)
}

// OptionData carries option payload; on AUTH questions Auth marks the option
// that additionally requires verified identity data.
type OptionData struct {
	Auth bool `json:"auth,omitempty"`
}

func (d OptionData) Value() (driver.Value, error) {
	if d == (OptionData{}) {
		return nil, nil
	}
	return json.Marshal(d)
}

func (d *OptionData) Scan(src any) error {
	return scanJSON(src, d)
}

func scanJSON(src, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("cannot scan %T into json column", src)
	}
}
