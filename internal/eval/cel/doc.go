// Package cel evaluates node parameter expressions written in CEL (Common
// Expression Language).
//
// Example usage:
//
//	evaluator := cel.NewEvaluator()
//
//	vars := map[string]interface{}{
//	    "json":      map[string]interface{}{"score": 12.5, "tier": "gold"},
//	    "itemIndex": 0,
//	    "itemCount": 1,
//	}
//
//	lane, err := evaluator.Evaluate(ctx, "json.tier == 'gold' ? 0 : 3", vars)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// lane == int64(0)
//
// Compiled programs are cached per expression string.
package cel
