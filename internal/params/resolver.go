package params

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aescanero/dago-node-switch/internal/eval"
	"github.com/aescanero/dago-node-switch/internal/eval/template"
	"github.com/aescanero/dago-node-switch/internal/router"
	"github.com/aescanero/dago-node-switch/internal/schema"
)

// ErrParameterNotFound is returned for a parameter that is neither set nor
// described with a default, when the caller gave no fallback
var ErrParameterNotFound = errors.New("parameter not found")

// NodeResolver resolves node parameters for one invocation. Values are
// taken from the node's parameters, then from the schema defaults, then
// from the caller's fallback.
//
// String values starting with "=" are evaluated per item:
//   - "={{ expr }}" and "=expr" are evaluated by the expression dialect and
//     keep the result's type
//   - any other "=" value containing {{ }} is rendered as a Handlebars
//     template and yields a string
type NodeResolver struct {
	parameters map[string]interface{}
	properties []schema.Property
	items      []router.Item
	evaluator  eval.Evaluator
	templates  *template.Engine
}

// NewNodeResolver creates a resolver over parameters for the given items
func NewNodeResolver(
	parameters map[string]interface{},
	properties []schema.Property,
	items []router.Item,
	evaluator eval.Evaluator,
	templates *template.Engine,
) *NodeResolver {
	if parameters == nil {
		parameters = map[string]interface{}{}
	}
	return &NodeResolver{
		parameters: parameters,
		properties: properties,
		items:      items,
		evaluator:  evaluator,
		templates:  templates,
	}
}

// GetNodeParameter implements router.ParameterResolver. Dotted names walk
// nested objects.
func (r *NodeResolver) GetNodeParameter(ctx context.Context, name string, itemIndex int, fallback interface{}) (interface{}, error) {
	raw, ok := r.lookup(name)
	if !ok {
		if fallback == nil {
			return nil, fmt.Errorf("%w: %s", ErrParameterNotFound, name)
		}
		return fallback, nil
	}

	value, err := r.resolve(ctx, name, raw, itemIndex)
	if err != nil {
		return nil, err
	}

	if list, ok := value.([]interface{}); ok {
		if parts := strings.SplitN(name, ".", 2); len(parts) == 2 {
			value = schema.FillGroupDefaults(r.properties, parts[0], parts[1], r.parameters, list)
		}
	}

	return value, nil
}

// lookup finds the raw value of a possibly dotted name
func (r *NodeResolver) lookup(name string) (interface{}, bool) {
	parts := strings.Split(name, ".")

	current, ok := r.parameters[parts[0]]
	if !ok {
		current, ok = schema.Default(r.properties, parts[0], r.parameters)
		if !ok {
			return nil, false
		}
	}

	for _, part := range parts[1:] {
		m, isMap := current.(map[string]interface{})
		if !isMap {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// resolve evaluates expressions inside raw for one item
func (r *NodeResolver) resolve(ctx context.Context, name string, raw interface{}, itemIndex int) (interface{}, error) {
	switch v := raw.(type) {
	case string:
		if !schema.IsExpression(v) {
			return v, nil
		}
		return r.evaluate(ctx, name, v[1:], itemIndex)

	case []interface{}:
		out := make([]interface{}, len(v))
		for i, elem := range v {
			resolved, err := r.resolve(ctx, name, elem, itemIndex)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil

	case []map[string]interface{}:
		out := make([]interface{}, len(v))
		for i, elem := range v {
			resolved, err := r.resolve(ctx, name, elem, itemIndex)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil

	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, elem := range v {
			resolved, err := r.resolve(ctx, name, elem, itemIndex)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	}

	return raw, nil
}

// evaluate runs one "=" expression for the item at itemIndex
func (r *NodeResolver) evaluate(ctx context.Context, name, source string, itemIndex int) (interface{}, error) {
	vars := eval.Variables(r.itemJSON(itemIndex), itemIndex, len(r.items))
	trimmed := strings.TrimSpace(source)

	if inner, ok := singleBlock(trimmed); ok {
		trimmed = inner
	} else if template.IsTemplate(trimmed) {
		out, err := r.templates.Render(source, vars)
		if err != nil {
			return nil, fmt.Errorf("parameter %s, item %d: %w", name, itemIndex, err)
		}
		return out, nil
	}

	out, err := r.evaluator.Evaluate(ctx, trimmed, vars)
	if err != nil {
		return nil, fmt.Errorf("parameter %s, item %d: %w", name, itemIndex, err)
	}
	return out, nil
}

func (r *NodeResolver) itemJSON(itemIndex int) map[string]interface{} {
	if itemIndex < 0 || itemIndex >= len(r.items) {
		return nil
	}
	return r.items[itemIndex].JSON
}

// singleBlock unwraps "{{ expr }}" when the whole value is one block
func singleBlock(s string) (string, bool) {
	if !strings.HasPrefix(s, "{{") || !strings.HasSuffix(s, "}}") {
		return "", false
	}
	inner := s[2 : len(s)-2]
	if strings.Contains(inner, "{{") || strings.Contains(inner, "}}") {
		return "", false
	}
	return strings.TrimSpace(inner), true
}
