// Package router implements the Switch node: it distributes workflow items
// over a fixed number of output lanes.
//
// Parameters are resolved per item through a ParameterResolver, so every
// item may see different values. Two modes are supported:
//   - Expression: the output parameter names the lane directly
//   - Rules: value1 is compared against each rule's value2 in declaration
//     order; the first matching rule's output wins, otherwise the item goes
//     to fallbackOutput, or is dropped when fallbackOutput is -1
//
// Example rules routing:
//
//	r := router.NewRouter(logger)
//	lanes, err := r.Route(ctx, items, resolver, 4)
//	if errors.Is(err, router.ErrOutOfRangeLane) {
//	    // a configured lane does not exist
//	}
//
// Operations: equal, notEqual, contains, notContains, larger, largerEqual,
// smaller, smallerEqual and regex. A regex value may be written as
// "/pattern/flags" with flags from g, i, m and y; it is evaluated with
// ECMAScript semantics.
package router
