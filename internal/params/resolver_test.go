package params

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/aescanero/dago-node-switch/internal/eval"
	"github.com/aescanero/dago-node-switch/internal/eval/template"
	"github.com/aescanero/dago-node-switch/internal/router"
	"github.com/aescanero/dago-node-switch/internal/schema"
)

func newResolver(t *testing.T, parameters map[string]interface{}, items []router.Item) *NodeResolver {
	t.Helper()
	evaluator, err := eval.New(eval.DialectCEL)
	if err != nil {
		t.Fatalf("failed to create evaluator: %v", err)
	}
	return NewNodeResolver(parameters, schema.SwitchNode.Properties, items, evaluator, template.NewEngine())
}

func numbered(values ...int) []router.Item {
	out := make([]router.Item, len(values))
	for i, v := range values {
		out[i] = router.Item{JSON: map[string]interface{}{"n": v, "tier": "gold"}}
	}
	return out
}

func TestGetNodeParameter_Literal(t *testing.T) {
	r := newResolver(t, map[string]interface{}{"mode": "expression", "output": 2}, nil)

	got, err := r.GetNodeParameter(context.Background(), "output", 0, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != 2 {
		t.Errorf("expected 2, got %v", got)
	}
}

func TestGetNodeParameter_SchemaDefault(t *testing.T) {
	r := newResolver(t, map[string]interface{}{}, nil)

	got, err := r.GetNodeParameter(context.Background(), "mode", 0, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != "rules" {
		t.Errorf("expected rules, got %v", got)
	}

	got, err = r.GetNodeParameter(context.Background(), "fallbackOutput", 0, 3)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != -1 {
		t.Errorf("schema default should win over fallback, got %v", got)
	}
}

func TestGetNodeParameter_Fallback(t *testing.T) {
	r := newResolver(t, map[string]interface{}{"mode": "rules"}, nil)

	got, err := r.GetNodeParameter(context.Background(), "rules.rules", 0, []interface{}{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	list, ok := got.([]interface{})
	if !ok || len(list) != 0 {
		t.Errorf("expected empty list, got %#v", got)
	}
}

func TestGetNodeParameter_NotFound(t *testing.T) {
	r := newResolver(t, map[string]interface{}{}, nil)

	_, err := r.GetNodeParameter(context.Background(), "nope", 0, nil)
	if !errors.Is(err, ErrParameterNotFound) {
		t.Fatalf("expected ErrParameterNotFound, got %v", err)
	}
}

func TestGetNodeParameter_ExpressionPerItem(t *testing.T) {
	r := newResolver(t, map[string]interface{}{
		"mode":   "expression",
		"output": "={{ json.n > 9 ? 1 : 0 }}",
		"value1": "=json.n * 2",
	}, numbered(5, 10))

	tests := []struct {
		name      string
		param     string
		itemIndex int
		want      interface{}
	}{
		{"braced first item", "output", 0, int64(0)},
		{"braced second item", "output", 1, int64(1)},
		{"bare expression", "value1", 1, int64(20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.GetNodeParameter(context.Background(), tt.param, tt.itemIndex, nil)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v (%T), got %v (%T)", tt.want, tt.want, got, got)
			}
		})
	}
}

func TestGetNodeParameter_Template(t *testing.T) {
	r := newResolver(t, map[string]interface{}{
		"value1": "=tier-{{uppercase json.tier}}-{{itemIndex}}",
	}, numbered(1, 2))

	got, err := r.GetNodeParameter(context.Background(), "value1", 1, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != "tier-GOLD-1" {
		t.Errorf("expected tier-GOLD-1, got %v", got)
	}
}

func TestGetNodeParameter_LiteralBracesAreNotTemplates(t *testing.T) {
	r := newResolver(t, map[string]interface{}{"value1": "{{ not evaluated }}"}, numbered(1))

	got, err := r.GetNodeParameter(context.Background(), "value1", 0, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != "{{ not evaluated }}" {
		t.Errorf("expected literal value, got %v", got)
	}
}

func TestGetNodeParameter_ExpressionError(t *testing.T) {
	r := newResolver(t, map[string]interface{}{"output": "={{ json.n + }}"}, numbered(1))

	_, err := r.GetNodeParameter(context.Background(), "output", 0, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parameter output, item 0") {
		t.Errorf("error should name parameter and item, got %v", err)
	}
}

func TestGetNodeParameter_RulesDefaults(t *testing.T) {
	r := newResolver(t, map[string]interface{}{
		"mode":     "rules",
		"dataType": "string",
		"rules": map[string]interface{}{
			"rules": []interface{}{
				map[string]interface{}{"value2": "={{ json.tier }}"},
				map[string]interface{}{"operation": "regex", "output": 3},
			},
		},
	}, numbered(1))

	got, err := r.GetNodeParameter(context.Background(), "rules.rules", 0, []interface{}{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	list := got.([]interface{})
	if len(list) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(list))
	}

	first := list[0].(map[string]interface{})
	if first["operation"] != "equal" || first["value2"] != "gold" || first["output"] != 0 {
		t.Errorf("unexpected first rule: %#v", first)
	}
	second := list[1].(map[string]interface{})
	if second["operation"] != "regex" || second["value2"] != "" || second["output"] != 3 {
		t.Errorf("unexpected second rule: %#v", second)
	}
}

func TestGetNodeParameter_TOMLTables(t *testing.T) {
	r := newResolver(t, map[string]interface{}{
		"rules": map[string]interface{}{
			"rules": []map[string]interface{}{
				{"operation": "larger", "value2": 9, "output": 1},
			},
		},
	}, numbered(1))

	got, err := r.GetNodeParameter(context.Background(), "rules.rules", 0, []interface{}{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	list, ok := got.([]interface{})
	if !ok || len(list) != 1 {
		t.Fatalf("expected one rule as []interface{}, got %#v", got)
	}
}

func TestRouteWithNodeResolver(t *testing.T) {
	items := numbered(5, 10, 15)
	res := newResolver(t, map[string]interface{}{
		"mode":     "rules",
		"dataType": "number",
		"value1":   "={{ json.n }}",
		"rules": map[string]interface{}{
			"rules": []interface{}{
				map[string]interface{}{"operation": "larger", "value2": 9, "output": 1},
			},
		},
		"fallbackOutput": 0,
	}, items)

	lanes, err := router.NewRouter(zap.NewNop()).Route(context.Background(), items, res, schema.SwitchOutputs)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(lanes[0]) != 1 || lanes[0][0].JSON["n"] != 5 {
		t.Errorf("lane 0: expected [5], got %v", lanes[0])
	}
	if len(lanes[1]) != 2 || lanes[1][0].JSON["n"] != 10 || lanes[1][1].JSON["n"] != 15 {
		t.Errorf("lane 1: expected [10 15], got %v", lanes[1])
	}
	if len(lanes[2]) != 0 || len(lanes[3]) != 0 {
		t.Errorf("lanes 2 and 3 should be empty")
	}
}
