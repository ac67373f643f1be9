package node

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aescanero/dago-node-switch/internal/eval"
	"github.com/aescanero/dago-node-switch/internal/eval/template"
	"github.com/aescanero/dago-node-switch/internal/params"
	"github.com/aescanero/dago-node-switch/internal/router"
	"github.com/aescanero/dago-node-switch/internal/schema"
)

// Result is the outcome of one Switch invocation
type Result struct {
	Lanes  [][]router.Item `json:"lanes"`
	Counts []int           `json:"counts"`
}

// laneAndOperatorParams are checked by the router on the items that reach
// them, so their errors carry the router's sentinels
var laneAndOperatorParams = []string{"output", "fallbackOutput", "operation"}

// Executor runs Switch invocations: it validates the node parameters
// against the Switch description and routes the items
type Executor struct {
	router    *router.Router
	evaluator eval.Evaluator
	templates *template.Engine
	node      schema.NodeDescription
	checked   []schema.Property
	laneCount int
	logger    *zap.Logger
}

// NewExecutor creates an executor for a Switch node with laneCount outputs
// whose expressions use dialect
func NewExecutor(laneCount int, dialect eval.Dialect, logger *zap.Logger) (*Executor, error) {
	if laneCount <= 0 {
		return nil, fmt.Errorf("%w: got %d", router.ErrInvalidLaneCount, laneCount)
	}

	evaluator, err := eval.New(dialect)
	if err != nil {
		return nil, err
	}

	node := schema.NewSwitchNode(laneCount)

	return &Executor{
		router:    router.NewRouter(logger),
		evaluator: evaluator,
		templates: template.NewEngine(),
		node:      node,
		checked:   schema.Omit(node.Properties, laneAndOperatorParams...),
		laneCount: laneCount,
		logger:    logger,
	}, nil
}

// Node returns the description of the Switch node this executor runs
func (e *Executor) Node() schema.NodeDescription {
	return e.node
}

// LaneCount returns the number of output lanes
func (e *Executor) LaneCount() int {
	return e.laneCount
}

// Execute validates parameters and routes items. Validation failures wrap
// schema.ErrValidation; lanes and operators are left to the router, so an
// out-of-range lane or an unknown operation is reported as
// router.ErrOutOfRangeLane or router.ErrUnknownOperator.
func (e *Executor) Execute(ctx context.Context, parameters map[string]interface{}, items []router.Item) (*Result, error) {
	if err := schema.Validate(e.checked, parameters); err != nil {
		return nil, err
	}

	resolver := params.NewNodeResolver(parameters, e.node.Properties, items, e.evaluator, e.templates)

	lanes, err := e.router.Route(ctx, items, resolver, e.laneCount)
	if err != nil {
		return nil, err
	}

	counts := make([]int, len(lanes))
	for i, lane := range lanes {
		counts[i] = len(lane)
	}

	return &Result{Lanes: lanes, Counts: counts}, nil
}
