package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"supplier-portal/internal/features/item"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/parser"
)

// Limits for dealer-supplied expressions.
const (
	exprTimeout   = 100 * time.Millisecond
	exprMaxAllocs = 1000
)

var ErrNotExpression = errors.New("custom predicate must be a single expression")

// ShouldFire evaluates a subscription against a quantity change.
//
// in_stock and out_of_stock are edge-triggered on the zero boundary. low_stock
// is level-triggered: it fires on every evaluation while 0 < new < threshold.
func ShouldFire(ctx context.Context, sub item.Subscription, oldQty, newQty float64) (bool, error) {
	switch sub.Kind {
	case item.KindInStock:
		return oldQty == 0 && newQty > 0, nil
	case item.KindOutOfStock:
		return oldQty > 0 && newQty == 0, nil
	case item.KindLowStock:
		return newQty > 0 && newQty < sub.Threshold, nil
	case item.KindCustom:
		return EvalExpression(ctx, sub.Expression, oldQty, newQty, sub.Threshold)
	default:
		return false, fmt.Errorf("unknown subscription kind %q", sub.Kind)
	}
}

// parseExpression accepts exactly one expression statement, so the source can
// be wrapped in an assignment without smuggling in loops or other statements.
func parseExpression(expr string) error {
	src := []byte(expr)
	fileSet := parser.NewFileSet()
	file := fileSet.AddFile("predicate", -1, len(src))
	parsed, err := parser.NewParser(file, src, nil).ParseFile()
	if err != nil {
		return fmt.Errorf("failed to parse expression: %w", err)
	}
	if len(parsed.Stmts) != 1 {
		return ErrNotExpression
	}
	if _, ok := parsed.Stmts[0].(*parser.ExprStmt); !ok {
		return ErrNotExpression
	}
	return nil
}

// EvalExpression runs a tengo boolean expression with old_qty, new_qty and
// threshold bound, e.g. `old_qty >= 100 && new_qty < 100`. The run is bounded
// by exprTimeout and exprMaxAllocs.
func EvalExpression(ctx context.Context, expr string, oldQty, newQty, threshold float64) (bool, error) {
	if err := parseExpression(expr); err != nil {
		return false, err
	}

	script := tengo.NewScript([]byte("result := (" + expr + ")"))
	script.SetMaxAllocs(exprMaxAllocs)

	for name, v := range map[string]float64{"old_qty": oldQty, "new_qty": newQty, "threshold": threshold} {
		if err := script.Add(name, v); err != nil {
			return false, fmt.Errorf("failed to bind %s: %w", name, err)
		}
	}

	compiled, err := script.Compile()
	if err != nil {
		return false, fmt.Errorf("failed to compile expression: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, exprTimeout)
	defer cancel()
	if err := compiled.RunContext(ctx); err != nil {
		return false, fmt.Errorf("failed to run expression: %w", err)
	}

	v := compiled.Get("result")
	if v.ValueType() != "bool" {
		return false, fmt.Errorf("expression must evaluate to bool, got %s", v.ValueType())
	}
	return v.Bool(), nil
}

// ExpressionChecker validates custom expressions by evaluating them once.
type ExpressionChecker struct{}

func NewExpressionChecker() item.ExpressionChecker {
	return ExpressionChecker{}
}

func (ExpressionChecker) Check(expr string) error {
	_, err := EvalExpression(context.Background(), expr, 0, 0, 0)
	return err
}
