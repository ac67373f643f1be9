package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aescanero/dago-libs/pkg/ports"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/aescanero/dago-node-switch/internal/config"
	"github.com/aescanero/dago-node-switch/internal/node"
	"github.com/aescanero/dago-node-switch/internal/router"
	"github.com/aescanero/dago-node-switch/internal/store"
)

// publishTimeout bounds result, error and ack writes. They run on a context
// detached from the worker so a stopping worker still reports its last
// invocation.
const publishTimeout = 2 * time.Second

// StreamClient is the part of the Redis client the worker uses
type StreamClient interface {
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
}

// Worker represents the switch worker
type Worker struct {
	id            string
	config        *config.Config
	redisClient   StreamClient
	executor      *node.Executor
	stateStore    ports.StateStorage
	logger        *zap.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	done          sync.WaitGroup
	streamKey     string
	consumerGroup string
	resultStream  string

	processed *atomic.Int64
	failed    *atomic.Int64
}

// Stats counts the invocations handled by a worker
type Stats struct {
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
}

// NewWorker creates a new worker
func NewWorker(
	cfg *config.Config,
	redisClient StreamClient,
	executor *node.Executor,
	stateStore ports.StateStorage,
	logger *zap.Logger,
) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		id:            cfg.WorkerID,
		config:        cfg,
		redisClient:   redisClient,
		executor:      executor,
		stateStore:    stateStore,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		streamKey:     cfg.StreamKey,
		consumerGroup: cfg.ConsumerGroup,
		resultStream:  cfg.ResultStream,
		processed:     atomic.NewInt64(0),
		failed:        atomic.NewInt64(0),
	}
}

// Start starts the worker
func (w *Worker) Start() error {
	w.logger.Info("starting switch worker",
		zap.String("worker_id", w.id),
		zap.String("stream_key", w.streamKey),
		zap.String("consumer_group", w.consumerGroup),
		zap.Int("lane_count", w.executor.LaneCount()),
	)

	if err := w.ensureConsumerGroup(); err != nil {
		return fmt.Errorf("failed to ensure consumer group: %w", err)
	}

	w.done.Add(1)
	go w.processWork()

	w.logger.Info("switch worker started", zap.String("worker_id", w.id))
	return nil
}

// Stop stops the worker and waits for the in-flight message
func (w *Worker) Stop() error {
	w.logger.Info("stopping switch worker", zap.String("worker_id", w.id))

	w.cancel()
	w.done.Wait()

	w.logger.Info("switch worker stopped",
		zap.String("worker_id", w.id),
		zap.Int64("processed", w.processed.Load()),
		zap.Int64("failed", w.failed.Load()),
	)
	return nil
}

// Stats returns the worker counters
func (w *Worker) Stats() Stats {
	return Stats{
		Processed: w.processed.Load(),
		Failed:    w.failed.Load(),
	}
}

// ensureConsumerGroup creates the consumer group if it doesn't exist
func (w *Worker) ensureConsumerGroup() error {
	err := w.redisClient.XGroupCreateMkStream(w.ctx, w.streamKey, w.consumerGroup, "0").Err()
	if err != nil {
		if err.Error() == "BUSYGROUP Consumer Group name already exists" {
			w.logger.Debug("consumer group already exists",
				zap.String("group", w.consumerGroup),
			)
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	w.logger.Info("created consumer group",
		zap.String("group", w.consumerGroup),
		zap.String("stream", w.streamKey),
	)
	return nil
}

// processWork processes work from the Redis stream
func (w *Worker) processWork() {
	defer w.done.Done()
	w.logger.Info("starting work processing loop")

	w.claimPending()

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info("work processing loop stopped")
			return
		default:
			streams, err := w.redisClient.XReadGroup(w.ctx, &redis.XReadGroupArgs{
				Group:    w.consumerGroup,
				Consumer: w.id,
				Streams:  []string{w.streamKey, ">"},
				Count:    1,
				Block:    w.config.BlockTime,
			}).Result()

			if err != nil {
				if errors.Is(err, redis.Nil) || w.ctx.Err() != nil {
					continue
				}
				w.logger.Error("failed to read from stream",
					zap.Error(err),
				)
				time.Sleep(time.Second)
				continue
			}

			for _, stream := range streams {
				for _, message := range stream.Messages {
					w.handleMessage(message)
				}
			}
		}
	}
}

// claimPending handles messages delivered to this consumer before a restart
// that were never acknowledged
func (w *Worker) claimPending() {
	start := "0"
	for w.ctx.Err() == nil {
		streams, err := w.redisClient.XReadGroup(w.ctx, &redis.XReadGroupArgs{
			Group:    w.consumerGroup,
			Consumer: w.id,
			Streams:  []string{w.streamKey, start},
			Count:    10,
		}).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && w.ctx.Err() == nil {
				w.logger.Error("failed to read pending messages", zap.Error(err))
			}
			return
		}

		pending := 0
		for _, stream := range streams {
			for _, message := range stream.Messages {
				pending++
				start = message.ID
				w.handleMessage(message)
			}
		}
		if pending == 0 {
			return
		}
		w.logger.Info("handled pending messages", zap.Int("count", pending))
	}
}

// handleMessage handles a single switch invocation message
func (w *Worker) handleMessage(message redis.XMessage) {
	messageID := message.ID
	w.logger.Info("processing switch request",
		zap.String("message_id", messageID),
	)

	request, err := parseWorkRequest(message.Values)
	if err != nil {
		w.failed.Inc()
		w.logger.Error("failed to parse work request",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		w.acknowledgeMessage(messageID)
		return
	}

	result, err := w.process(w.ctx, request)
	if err != nil {
		if w.ctx.Err() != nil {
			// not acknowledged: claimPending picks it up after a restart
			w.logger.Warn("switch request interrupted by shutdown, left pending",
				zap.String("message_id", messageID),
				zap.String("execution_id", request.ExecutionID),
			)
			return
		}

		w.failed.Inc()
		w.logger.Error("failed to process switch request",
			zap.String("message_id", messageID),
			zap.String("execution_id", request.ExecutionID),
			zap.Error(err),
		)
		w.publishError(request, err)
		w.acknowledgeMessage(messageID)
		return
	}

	if err := w.publishResult(result); err != nil {
		w.logger.Error("failed to publish result, left pending",
			zap.String("message_id", messageID),
			zap.String("execution_id", request.ExecutionID),
			zap.Error(err),
		)
		return
	}

	w.processed.Inc()
	w.acknowledgeMessage(messageID)
}

// WorkRequest is one Switch invocation. Items may be omitted, in which case
// they are read from the execution state.
type WorkRequest struct {
	ExecutionID string                 `json:"execution_id"`
	NodeID      string                 `json:"node_id"`
	SourceNode  string                 `json:"source_node,omitempty"`
	Parameters  map[string]interface{} `json:"parameters"`
	Items       []router.Item          `json:"items,omitempty"`
}

// RouteResult is published on the result stream for every routed invocation
type RouteResult struct {
	InvocationID string          `json:"invocation_id"`
	ExecutionID  string          `json:"execution_id"`
	NodeID       string          `json:"node_id"`
	Lanes        [][]router.Item `json:"lanes"`
	Counts       []int           `json:"counts"`
	Timestamp    time.Time       `json:"timestamp"`
}

// parseWorkRequest parses a work request from Redis message
func parseWorkRequest(values map[string]interface{}) (*WorkRequest, error) {
	dataStr, ok := values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'data' field")
	}

	var request WorkRequest
	if err := json.Unmarshal([]byte(dataStr), &request); err != nil {
		return nil, fmt.Errorf("failed to unmarshal work request: %w", err)
	}

	if request.ExecutionID == "" {
		return nil, fmt.Errorf("execution_id is required")
	}
	if request.Parameters == nil {
		request.Parameters = map[string]interface{}{}
	}

	return &request, nil
}

// process loads the items if needed and routes them
func (w *Worker) process(ctx context.Context, request *WorkRequest) (*RouteResult, error) {
	items := request.Items
	if items == nil {
		loaded, err := store.LoadItems(ctx, w.stateStore, request.ExecutionID, request.SourceNode)
		if err != nil {
			return nil, fmt.Errorf("failed to load items: %w", err)
		}
		items = loaded
	}

	result, err := w.executor.Execute(ctx, request.Parameters, items)
	if err != nil {
		return nil, fmt.Errorf("routing failed: %w", err)
	}

	return &RouteResult{
		InvocationID: uuid.NewString(),
		ExecutionID:  request.ExecutionID,
		NodeID:       request.NodeID,
		Lanes:        result.Lanes,
		Counts:       result.Counts,
		Timestamp:    time.Now().UTC(),
	}, nil
}

// publishResult publishes the routed lanes
func (w *Worker) publishResult(result *RouteResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	_, err = w.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: w.resultStream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		return fmt.Errorf("failed to publish to stream: %w", err)
	}

	w.logger.Info("published switch result",
		zap.String("invocation_id", result.InvocationID),
		zap.String("execution_id", result.ExecutionID),
		zap.Ints("lane_counts", result.Counts),
	)

	return nil
}

// publishError publishes an error event
func (w *Worker) publishError(request *WorkRequest, err error) {
	errorEvent := map[string]interface{}{
		"execution_id": request.ExecutionID,
		"node_id":      request.NodeID,
		"error":        err.Error(),
		"timestamp":    time.Now().UTC(),
	}

	data, marshalErr := json.Marshal(errorEvent)
	if marshalErr != nil {
		w.logger.Error("failed to marshal error event", zap.Error(marshalErr))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	_, publishErr := w.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: w.resultStream + ".errors",
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if publishErr != nil {
		w.logger.Error("failed to publish error event", zap.Error(publishErr))
	}
}

// acknowledgeMessage acknowledges a message from the stream
func (w *Worker) acknowledgeMessage(messageID string) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err := w.redisClient.XAck(ctx, w.streamKey, w.consumerGroup, messageID).Err()
	if err != nil {
		w.logger.Error("failed to acknowledge message",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
}
