package cel

import (
	"context"
	"testing"
)

func vars() map[string]interface{} {
	return map[string]interface{}{
		"json": map[string]interface{}{
			"score": 12.5,
			"tags":  []interface{}{"a", "b"},
		},
		"itemIndex": 1,
		"itemCount": 3,
	}
}

func TestEvaluate_Scalars(t *testing.T) {
	e := NewEvaluator()

	got, err := e.Evaluate(context.Background(), "itemIndex + 2", vars())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != int64(3) {
		t.Fatalf("expected int64(3), got %v (%T)", got, got)
	}

	got, err = e.Evaluate(context.Background(), "json.score >= 12.5", vars())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != true {
		t.Fatalf("expected true, got %v", got)
	}
}

func TestEvaluate_ListAndMapAreNative(t *testing.T) {
	e := NewEvaluator()

	got, err := e.Evaluate(context.Background(), "json.tags", vars())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	list, ok := got.([]interface{})
	if !ok || len(list) != 2 || list[0] != "a" {
		t.Fatalf("expected []interface{}{a b}, got %#v", got)
	}

	got, err = e.Evaluate(context.Background(), "{'lane': itemIndex}", vars())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	m, ok := got.(map[string]interface{})
	if !ok || m["lane"] != int64(1) {
		t.Fatalf("expected map with lane 1, got %#v", got)
	}
}

func TestEvaluate_Errors(t *testing.T) {
	e := NewEvaluator()
	if _, err := e.Evaluate(context.Background(), "json.score >", vars()); err == nil {
		t.Fatalf("expected compile error")
	}
	if _, err := e.Evaluate(context.Background(), "json.missing.deeper", vars()); err == nil {
		t.Fatalf("expected evaluation error for missing key")
	}
}

func TestCache(t *testing.T) {
	e := NewEvaluator()
	if _, err := e.Evaluate(context.Background(), "itemCount", vars()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(e.cache) != 1 {
		t.Fatalf("expected one cached program, got %d", len(e.cache))
	}
	e.ClearCache()
	if len(e.cache) != 0 {
		t.Fatalf("expected empty cache")
	}
	if err := e.ValidateExpression("itemIndex < itemCount"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}
