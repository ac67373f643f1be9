package router

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Mode selects how an item is routed
type Mode string

const (
	// ModeExpression routes every item to the lane named by the output parameter
	ModeExpression Mode = "expression"

	// ModeRules routes an item to the lane of the first matching rule
	ModeRules Mode = "rules"
)

// DataType is the comparison domain of rules mode
type DataType string

const (
	DataTypeBoolean DataType = "boolean"
	DataTypeNumber  DataType = "number"
	DataTypeString  DataType = "string"
)

// FallbackNone is the fallbackOutput value that drops unmatched items
const FallbackNone = -1

// Parameter names read from the resolver
const (
	ParamMode           = "mode"
	ParamOutput         = "output"
	ParamDataType       = "dataType"
	ParamValue1         = "value1"
	ParamRules          = "rules.rules"
	ParamFallbackOutput = "fallbackOutput"
)

// Item is a workflow item. Routing never looks inside it.
type Item struct {
	JSON   map[string]interface{} `json:"json"`
	Binary map[string]interface{} `json:"binary,omitempty"`
}

// ParameterResolver supplies node parameter values for an item index.
// fallback is returned by implementations when the parameter is not set.
type ParameterResolver interface {
	GetNodeParameter(ctx context.Context, name string, itemIndex int, fallback interface{}) (interface{}, error)
}

// Router assigns items to output lanes
type Router struct {
	logger   *zap.Logger
	patterns *lru.Cache[string, *compiledPattern]
}

// PatternCacheSize bounds the number of compiled regex patterns a router keeps
const PatternCacheSize = 256

// NewRouter creates a new router
func NewRouter(logger *zap.Logger) *Router {
	// only fails for a non-positive size
	patterns, _ := lru.New[string, *compiledPattern](PatternCacheSize)

	return &Router{
		logger:   logger,
		patterns: patterns,
	}
}

// Route distributes items over laneCount lanes. Each item lands in at most
// one lane and lanes keep input order. Any error aborts the whole invocation
// and no lanes are returned. Errors from the resolver are returned as is.
func (r *Router) Route(ctx context.Context, items []Item, resolver ParameterResolver, laneCount int) ([][]Item, error) {
	if laneCount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLaneCount, laneCount)
	}

	lanes := make([][]Item, laneCount)
	for i := range lanes {
		lanes[i] = []Item{}
	}

	dropped := 0
	for itemIndex, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		lane, err := r.routeItem(ctx, itemIndex, resolver, laneCount)
		if err != nil {
			r.logger.Debug("routing aborted",
				zap.Int("item_index", itemIndex),
				zap.Error(err),
			)
			return nil, err
		}

		if lane == FallbackNone {
			dropped++
			continue
		}
		lanes[lane] = append(lanes[lane], item)
	}

	counts := make([]int, laneCount)
	for i, lane := range lanes {
		counts[i] = len(lane)
	}
	r.logger.Info("items routed",
		zap.Int("items", len(items)),
		zap.Ints("lane_counts", counts),
		zap.Int("dropped", dropped),
	)

	return lanes, nil
}

// routeItem returns the lane for one item, or FallbackNone when it is dropped
func (r *Router) routeItem(ctx context.Context, itemIndex int, resolver ParameterResolver, laneCount int) (int, error) {
	rawMode, err := resolver.GetNodeParameter(ctx, ParamMode, itemIndex, nil)
	if err != nil {
		return 0, err
	}
	mode, ok := rawMode.(string)
	if !ok {
		return 0, fmt.Errorf("%w: mode must be a string, got %T", ErrInvalidParameter, rawMode)
	}

	switch Mode(mode) {
	case ModeExpression:
		return r.routeExpression(ctx, itemIndex, resolver, laneCount)
	case ModeRules:
		return r.routeRules(ctx, itemIndex, resolver, laneCount)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// routeExpression sends the item to the lane given by the output parameter
func (r *Router) routeExpression(ctx context.Context, itemIndex int, resolver ParameterResolver, laneCount int) (int, error) {
	raw, err := resolver.GetNodeParameter(ctx, ParamOutput, itemIndex, nil)
	if err != nil {
		return 0, err
	}

	lane, err := laneIndex(ParamOutput, raw)
	if err != nil {
		return 0, err
	}
	if err := checkLane(lane, laneCount); err != nil {
		return 0, err
	}

	r.logger.Debug("expression routed item",
		zap.Int("item_index", itemIndex),
		zap.Int("lane", lane),
	)
	return lane, nil
}

// routeRules evaluates the rules in order, falling back when none matches.
// value1 is used with whatever runtime type it resolved to.
func (r *Router) routeRules(ctx context.Context, itemIndex int, resolver ParameterResolver, laneCount int) (int, error) {
	value1, err := resolver.GetNodeParameter(ctx, ParamValue1, itemIndex, nil)
	if err != nil {
		return 0, err
	}

	raw, err := resolver.GetNodeParameter(ctx, ParamRules, itemIndex, []interface{}{})
	if err != nil {
		return 0, err
	}
	rules, err := decodeRules(raw)
	if err != nil {
		return 0, err
	}

	for i, rule := range rules {
		matched, err := r.compare(rule.Operation, value1, rule.Value2)
		if err != nil {
			return 0, fmt.Errorf("rule %d: %w", i, err)
		}

		if ce := r.logger.Check(zap.DebugLevel, "evaluated rule"); ce != nil {
			fields := []zap.Field{
				zap.Int("item_index", itemIndex),
				zap.Int("rule_index", i),
				zap.String("operation", string(rule.Operation)),
				zap.Bool("matched", matched),
			}
			if rule.Operation == OpRegex {
				fields = append(fields, zap.String("flags", describeFlags(stringify(rule.Value2))))
			}
			ce.Write(fields...)
		}

		if !matched {
			continue
		}

		lane, err := laneIndex(fmt.Sprintf("rule %d output", i), rule.Output)
		if err != nil {
			return 0, err
		}
		if err := checkLane(lane, laneCount); err != nil {
			return 0, fmt.Errorf("rule %d: %w", i, err)
		}
		return lane, nil
	}

	raw, err = resolver.GetNodeParameter(ctx, ParamFallbackOutput, itemIndex, FallbackNone)
	if err != nil {
		return 0, err
	}
	lane, err := laneIndex(ParamFallbackOutput, raw)
	if err != nil {
		return 0, err
	}
	if lane == FallbackNone {
		r.logger.Debug("no rule matched, item dropped", zap.Int("item_index", itemIndex))
		return FallbackNone, nil
	}
	if err := checkLane(lane, laneCount); err != nil {
		return 0, err
	}

	r.logger.Debug("no rule matched, using fallback",
		zap.Int("item_index", itemIndex),
		zap.Int("lane", lane),
	)
	return lane, nil
}
