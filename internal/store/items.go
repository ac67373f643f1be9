package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aescanero/dago-libs/pkg/domain"
	"github.com/aescanero/dago-libs/pkg/domain/state"
	"github.com/aescanero/dago-libs/pkg/ports"

	"github.com/aescanero/dago-node-switch/internal/router"
)

// ErrNoItems is returned when a state holds no items for the requested source
var ErrNoItems = errors.New("no items in state")

// LoadItems reads the input items of a Switch invocation from the stored
// state of an execution. See ItemsFromState.
func LoadItems(ctx context.Context, storage ports.StateStorage, executionID, sourceNode string) ([]router.Item, error) {
	st, err := storage.Load(ctx, executionID)
	if err != nil {
		return nil, err
	}
	return ItemsFromState(executionID, st, sourceNode)
}

// ItemsFromState extracts items from a graph state. With a source node the
// items are that node's output, otherwise the state's top-level "items".
func ItemsFromState(executionID string, st state.State, sourceNode string) ([]router.Item, error) {
	if sourceNode == "" {
		raw, ok := st["items"]
		if !ok {
			return nil, fmt.Errorf("%w: execution %s has no items", ErrNoItems, executionID)
		}
		return DecodeItems(raw)
	}

	graphState, err := toGraphState(executionID, st)
	if err != nil {
		return nil, err
	}

	nodeState, ok := graphState.NodeStates[sourceNode]
	if !ok || nodeState == nil {
		return nil, fmt.Errorf("%w: node %s has no state in execution %s", ErrNoItems, sourceNode, executionID)
	}
	return DecodeItems(nodeState.Output)
}

// DecodeItems converts a JSON-shaped value into items. It accepts a list of
// {"json": {...}} envelopes or of plain objects, or a single object.
func DecodeItems(raw interface{}) ([]router.Item, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal items: %w", err)
	}

	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal items: %w", err)
	}

	var list []interface{}
	switch v := decoded.(type) {
	case nil:
		return []router.Item{}, nil
	case []interface{}:
		list = v
	case map[string]interface{}:
		list = []interface{}{v}
	default:
		return nil, fmt.Errorf("items must be a list of objects, got %T", decoded)
	}

	items := make([]router.Item, 0, len(list))
	for i, elem := range list {
		obj, ok := elem.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("item %d must be an object, got %T", i, elem)
		}
		items = append(items, envelope(obj))
	}
	return items, nil
}

func envelope(obj map[string]interface{}) router.Item {
	inner, ok := obj["json"].(map[string]interface{})
	if !ok {
		return router.Item{JSON: obj}
	}

	item := router.Item{JSON: inner}
	if binary, ok := obj["binary"].(map[string]interface{}); ok {
		item.Binary = binary
	}
	return item
}

// toGraphState converts state.State to domain.GraphState
func toGraphState(executionID string, st state.State) (*domain.GraphState, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}

	var graphState domain.GraphState
	if err := json.Unmarshal(data, &graphState); err != nil {
		return nil, fmt.Errorf("failed to unmarshal to GraphState: %w", err)
	}

	if graphState.GraphID == "" {
		graphState.GraphID = executionID
	}
	return &graphState, nil
}
