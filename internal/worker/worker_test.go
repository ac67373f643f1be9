package worker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aescanero/dago-libs/pkg/domain/state"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aescanero/dago-node-switch/internal/config"
	"github.com/aescanero/dago-node-switch/internal/eval"
	"github.com/aescanero/dago-node-switch/internal/node"
	"github.com/aescanero/dago-node-switch/internal/router"
)

// memoryStore keeps states in a map
type memoryStore struct {
	states map[string]state.State
}

func (m *memoryStore) Save(ctx context.Context, executionID string, st state.State) error {
	m.states[executionID] = st
	return nil
}

func (m *memoryStore) Load(ctx context.Context, executionID string) (state.State, error) {
	st, ok := m.states[executionID]
	if !ok {
		return nil, errors.New("state not found")
	}
	return st, nil
}

func (m *memoryStore) Delete(ctx context.Context, executionID string) error {
	delete(m.states, executionID)
	return nil
}

func (m *memoryStore) Exists(ctx context.Context, executionID string) (bool, error) {
	_, ok := m.states[executionID]
	return ok, nil
}

func (m *memoryStore) SetTTL(ctx context.Context, executionID string, ttl time.Duration) error {
	return nil
}

func (m *memoryStore) List(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.states))
	for id := range m.states {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memoryStore) SaveState(ctx context.Context, st interface{}) error {
	return nil
}

func (m *memoryStore) GetState(ctx context.Context, graphID string) (interface{}, error) {
	return m.Load(ctx, graphID)
}

// fakeStream records writes and acknowledgements
type fakeStream struct {
	addErr  error
	added   []string
	addCtxs []error
	acked   []string
	pending []redis.XMessage
}

func (f *fakeStream) XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd {
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeStream) XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd {
	if a.Streams[1] == ">" || len(f.pending) == 0 {
		return redis.NewXStreamSliceCmdResult(nil, redis.Nil)
	}
	var messages []redis.XMessage
	for _, m := range f.pending {
		if m.ID > a.Streams[1] {
			messages = append(messages, m)
		}
	}
	return redis.NewXStreamSliceCmdResult([]redis.XStream{{Stream: a.Streams[0], Messages: messages}}, nil)
}

func (f *fakeStream) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.added = append(f.added, a.Stream)
	f.addCtxs = append(f.addCtxs, ctx.Err())
	return redis.NewStringResult("1-0", f.addErr)
}

func (f *fakeStream) XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd {
	f.acked = append(f.acked, ids...)
	return redis.NewIntResult(int64(len(ids)), nil)
}

func message(id, data string) redis.XMessage {
	return redis.XMessage{ID: id, Values: map[string]interface{}{"data": data}}
}

const routable = `{"execution_id":"exec-1","node_id":"switch","parameters":{"mode":"expression","output":1},"items":[{"json":{"a":1}}]}`

func newStreamWorker(t *testing.T, stream *fakeStream) *Worker {
	t.Helper()
	w := newTestWorker(t, &memoryStore{states: map[string]state.State{}})
	w.redisClient = stream
	return w
}

func newTestWorker(t *testing.T, st *memoryStore) *Worker {
	t.Helper()
	executor, err := node.NewExecutor(4, eval.DialectCEL, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	cfg := &config.Config{
		WorkerID:      "switch-test",
		StreamKey:     "switch.work",
		ConsumerGroup: "switch-workers",
		ResultStream:  "switch.routed",
		BlockTime:     time.Second,
	}
	return NewWorker(cfg, nil, executor, st, zap.NewNop())
}

func TestParseWorkRequest(t *testing.T) {
	request, err := parseWorkRequest(map[string]interface{}{
		"data": `{"execution_id":"exec-1","node_id":"switch","parameters":{"mode":"expression","output":1},"items":[{"json":{"a":1}}]}`,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if request.ExecutionID != "exec-1" || request.NodeID != "switch" {
		t.Errorf("unexpected request: %+v", request)
	}
	if len(request.Items) != 1 || request.Items[0].JSON["a"] != 1.0 {
		t.Errorf("unexpected items: %+v", request.Items)
	}
}

func TestParseWorkRequest_Errors(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]interface{}
		want   string
	}{
		{"missing data", map[string]interface{}{}, "data"},
		{"bad json", map[string]interface{}{"data": "{"}, "unmarshal"},
		{"missing execution", map[string]interface{}{"data": `{"node_id":"switch"}`}, "execution_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseWorkRequest(tt.values)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}

func TestParseWorkRequest_ItemsOmitted(t *testing.T) {
	request, err := parseWorkRequest(map[string]interface{}{
		"data": `{"execution_id":"exec-1","node_id":"switch"}`,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if request.Items != nil {
		t.Errorf("omitted items must stay nil, got %v", request.Items)
	}
	if request.Parameters == nil {
		t.Error("parameters must default to an empty map")
	}
}

func TestProcess_InlineItems(t *testing.T) {
	w := newTestWorker(t, &memoryStore{states: map[string]state.State{}})

	result, err := w.process(context.Background(), &WorkRequest{
		ExecutionID: "exec-1",
		NodeID:      "switch",
		Parameters:  map[string]interface{}{"mode": "expression", "output": 2},
		Items:       []router.Item{{JSON: map[string]interface{}{"a": 1}}},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if result.InvocationID == "" {
		t.Error("expected an invocation id")
	}
	if result.Counts[2] != 1 {
		t.Errorf("expected the item on lane 2, got %v", result.Counts)
	}
}

func TestProcess_ItemsFromState(t *testing.T) {
	st := &memoryStore{states: map[string]state.State{
		"exec-1": {
			"items": []interface{}{
				map[string]interface{}{"json": map[string]interface{}{"status": "open"}},
				map[string]interface{}{"json": map[string]interface{}{"status": "closed"}},
			},
		},
	}}
	w := newTestWorker(t, st)

	result, err := w.process(context.Background(), &WorkRequest{
		ExecutionID: "exec-1",
		NodeID:      "switch",
		Parameters: map[string]interface{}{
			"mode":     "rules",
			"dataType": "string",
			"value1":   "={{ json.status }}",
			"rules": map[string]interface{}{
				"rules": []interface{}{
					map[string]interface{}{"operation": "equal", "value2": "open", "output": 1},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if result.Counts[1] != 1 || result.Counts[0] != 0 {
		t.Errorf("expected open item on lane 1 and closed dropped, got %v", result.Counts)
	}
}

func TestProcess_Errors(t *testing.T) {
	w := newTestWorker(t, &memoryStore{states: map[string]state.State{}})

	_, err := w.process(context.Background(), &WorkRequest{ExecutionID: "missing"})
	if err == nil || !strings.Contains(err.Error(), "failed to load items") {
		t.Errorf("expected load error, got %v", err)
	}

	_, err = w.process(context.Background(), &WorkRequest{
		ExecutionID: "exec-1",
		Parameters:  map[string]interface{}{"mode": "expression", "output": "={{ 5 }}"},
		Items:       []router.Item{{JSON: map[string]interface{}{}}},
	})
	if !errors.Is(err, router.ErrOutOfRangeLane) {
		t.Errorf("expected ErrOutOfRangeLane, got %v", err)
	}
}

func TestStats(t *testing.T) {
	w := newTestWorker(t, &memoryStore{states: map[string]state.State{}})
	w.processed.Inc()
	w.failed.Add(2)

	stats := w.Stats()
	if stats.Processed != 1 || stats.Failed != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestHandleMessage_PublishesAndAcks(t *testing.T) {
	stream := &fakeStream{}
	w := newStreamWorker(t, stream)

	w.handleMessage(message("1-0", routable))

	if len(stream.added) != 1 || stream.added[0] != "switch.routed" {
		t.Fatalf("expected one result on switch.routed, got %v", stream.added)
	}
	if len(stream.acked) != 1 || stream.acked[0] != "1-0" {
		t.Fatalf("expected 1-0 acknowledged, got %v", stream.acked)
	}
	if w.Stats().Processed != 1 {
		t.Errorf("expected processed=1, got %+v", w.Stats())
	}
}

func TestHandleMessage_ErrorEvent(t *testing.T) {
	stream := &fakeStream{}
	w := newStreamWorker(t, stream)

	w.handleMessage(message("1-0", `{"execution_id":"exec-1","parameters":{"mode":"expression","output":"={{ 9 }}"},"items":[{"json":{}}]}`))

	if len(stream.added) != 1 || stream.added[0] != "switch.routed.errors" {
		t.Fatalf("expected one error event, got %v", stream.added)
	}
	if len(stream.acked) != 1 {
		t.Fatalf("expected the failed request to be acknowledged, got %v", stream.acked)
	}
	if w.Stats().Failed != 1 {
		t.Errorf("expected failed=1, got %+v", w.Stats())
	}
}

func TestHandleMessage_StoppedWorkerLeavesRequestPending(t *testing.T) {
	stream := &fakeStream{}
	w := newStreamWorker(t, stream)
	w.cancel()

	w.handleMessage(message("1-0", routable))

	if len(stream.added) != 0 {
		t.Fatalf("expected no result or error event, got %v", stream.added)
	}
	if len(stream.acked) != 0 {
		t.Fatalf("interrupted request must stay pending, got acks %v", stream.acked)
	}
	if stats := w.Stats(); stats.Processed != 0 || stats.Failed != 0 {
		t.Errorf("interrupted request must not be counted, got %+v", stats)
	}
}

func TestPublish_UsesDetachedContext(t *testing.T) {
	stream := &fakeStream{}
	w := newStreamWorker(t, stream)
	w.cancel()

	w.publishError(&WorkRequest{ExecutionID: "exec-1"}, errors.New("boom"))
	if err := w.publishResult(&RouteResult{ExecutionID: "exec-1"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	for i, err := range stream.addCtxs {
		if err != nil {
			t.Errorf("write %d ran on a cancelled context: %v", i, err)
		}
	}
}

func TestHandleMessage_UnpublishedResultStaysPending(t *testing.T) {
	stream := &fakeStream{addErr: errors.New("connection reset")}
	w := newStreamWorker(t, stream)

	w.handleMessage(message("1-0", routable))

	if len(stream.acked) != 0 {
		t.Fatalf("expected no ack when the result was not published, got %v", stream.acked)
	}
}

func TestClaimPending(t *testing.T) {
	stream := &fakeStream{pending: []redis.XMessage{
		message("1-0", routable),
		message("2-0", routable),
	}}
	w := newStreamWorker(t, stream)

	w.claimPending()

	if len(stream.acked) != 2 || stream.acked[0] != "1-0" || stream.acked[1] != "2-0" {
		t.Fatalf("expected both pending messages handled, got %v", stream.acked)
	}
}
