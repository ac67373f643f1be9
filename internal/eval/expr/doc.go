// Package expr evaluates node parameter expressions written in expr-lang,
// the dialect used by rule-chain engines such as rulego.
//
//	evaluator := expr.NewEvaluator()
//	v, err := evaluator.Evaluate(ctx, `json.tier == "gold" ? 0 : 3`, vars)
package expr
