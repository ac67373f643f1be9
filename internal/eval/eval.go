package eval

import (
	"context"
	"fmt"

	"github.com/aescanero/dago-node-switch/internal/eval/cel"
	"github.com/aescanero/dago-node-switch/internal/eval/expr"
)

// Dialect names an expression language
type Dialect string

const (
	// DialectCEL evaluates expressions with the Common Expression Language
	DialectCEL Dialect = "cel"

	// DialectExpr evaluates expressions with expr-lang
	DialectExpr Dialect = "expr"
)

// Evaluator evaluates an expression against a set of variables
type Evaluator interface {
	Evaluate(ctx context.Context, expression string, vars map[string]interface{}) (interface{}, error)
	ValidateExpression(expression string) error
	ClearCache()
}

// New returns the evaluator for dialect
func New(dialect Dialect) (Evaluator, error) {
	switch dialect {
	case DialectCEL, "":
		return cel.NewEvaluator(), nil
	case DialectExpr:
		return expr.NewEvaluator(), nil
	default:
		return nil, fmt.Errorf("unknown expression dialect: %s", dialect)
	}
}

// Variables builds the variables visible to a parameter expression
func Variables(json map[string]interface{}, itemIndex, itemCount int) map[string]interface{} {
	if json == nil {
		json = map[string]interface{}{}
	}
	return map[string]interface{}{
		"json":      json,
		"itemIndex": itemIndex,
		"itemCount": itemCount,
	}
}
