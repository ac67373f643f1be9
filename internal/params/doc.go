// Package params resolves node parameters per item for the router.
//
//	evaluator, _ := eval.New(eval.DialectCEL)
//	resolver := params.NewNodeResolver(parameters, schema.SwitchNode.Properties, items, evaluator, template.NewEngine())
//	lanes, err := r.Route(ctx, items, resolver, schema.SwitchOutputs)
package params
