package eval

import (
	"context"
	"testing"
)

func TestNew(t *testing.T) {
	for _, d := range []Dialect{DialectCEL, DialectExpr, ""} {
		if _, err := New(d); err != nil {
			t.Fatalf("dialect %q: unexpected err: %v", d, err)
		}
	}
	if _, err := New("lua"); err == nil {
		t.Fatalf("expected error for unknown dialect")
	}
}

func TestDialectsAgree(t *testing.T) {
	vars := Variables(map[string]interface{}{"score": 12.5, "tier": "gold"}, 2, 3)

	tests := []struct {
		name string
		cel  string
		expr string
		want interface{}
	}{
		{"field access", "json.tier", "json.tier", "gold"},
		{"comparison", "json.score > 10.0", "json.score > 10", true},
		{"string concat", "json.tier + '-' + string(itemIndex)", `json.tier + "-" + string(itemIndex)`, "gold-2"},
	}

	ctx := context.Background()
	celEval, _ := New(DialectCEL)
	exprEval, _ := New(DialectExpr)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := celEval.Evaluate(ctx, tt.cel, vars)
			if err != nil {
				t.Fatalf("cel: unexpected err: %v", err)
			}
			if got != tt.want {
				t.Fatalf("cel: got %v (%T), want %v", got, got, tt.want)
			}

			got, err = exprEval.Evaluate(ctx, tt.expr, vars)
			if err != nil {
				t.Fatalf("expr: unexpected err: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expr: got %v (%T), want %v", got, got, tt.want)
			}
		})
	}
}

func TestVariables_NilJSON(t *testing.T) {
	vars := Variables(nil, 0, 1)
	if _, ok := vars["json"].(map[string]interface{}); !ok {
		t.Fatalf("expected empty json object")
	}
}
