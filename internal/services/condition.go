package services

import (
	"errors"
	"log"
	"reflect"
	"strconv"

	"github.com/expr-lang/expr"

	"github.com/paulexconde/surveyflow/internal/models"
)

// conditionMet reports whether a conditionally required question is in
// force given the submitted values. An unset condition always holds. An
// authored expression takes precedence over the equality pair; expressions
// see the submitted values keyed by question id, e.g. `values["12"] == true`.
func conditionMet(condition models.Condition, values models.ValueMap) bool {
	if !condition.IsSet() {
		return true
	}

	if condition.Expression != "" {
		met, err := evaluateExpression(condition.Expression, expressionEnv(values))
		if err != nil {
			// A broken authored expression must not re-flag the answer as
			// required; treat the condition as unmet and leave a trail.
			log.Printf("[FLOW] condition expression failed, question skipped: %v", err)
			return false
		}
		return met
	}

	return looseEqual(values[condition.Question], condition.Answer)
}

func expressionEnv(values models.ValueMap) map[string]any {
	byKey := make(map[string]any, len(values))
	for id, value := range values {
		byKey[strconv.Itoa(id)] = value
	}
	return map[string]any{"values": byKey}
}

func evaluateExpression(expression string, input map[string]any) (bool, error) {
	program, err := expr.Compile(expression, expr.Env(input))
	if err != nil {
		return false, err
	}

	output, err := expr.Run(program, input)
	if err != nil {
		return false, err
	}

	result, ok := output.(bool)

	if !ok {
		return false, errors.New("expression did not return a boolean")
	}

	return result, nil
}

// looseEqual compares a submitted value against an authored one. Numbers
// compare numerically since submitted values arrive as json floats while
// authored ones are ints.
func looseEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
