// Package worker_test tests the NATS worker for the lipsync service.
package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/book-expert/events"
	"github.com/book-expert/lipsync-service/internal/lipsync"
	"github.com/book-expert/lipsync-service/internal/metrics"
	"github.com/book-expert/lipsync-service/internal/timeline"
	"github.com/book-expert/lipsync-service/internal/worker"
	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSubject    = "test_subject"
	createdSubject = "test_created"
	replyTimeout   = 5 * time.Second
)

var (
	errMockDownload = errors.New("mock download error")
	errMockUpload   = errors.New("mock upload error")
)

// mockObjectStore is a mock implementation of the ObjectStore interface.
type mockObjectStore struct {
	mu                 sync.Mutex
	content            []byte
	downloadShouldFail bool
	uploadShouldFail   bool
	downloadedKey      string
	uploadedKey        string
	uploadedData       []byte
}

func (m *mockObjectStore) Download(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.downloadShouldFail {
		return nil, errMockDownload
	}

	m.downloadedKey = key

	return m.content, nil
}

func (m *mockObjectStore) Upload(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.uploadShouldFail {
		return errMockUpload
	}

	m.uploadedKey = key
	m.uploadedData = data

	return nil
}

func (m *mockObjectStore) snapshot() (string, string, []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.downloadedKey, m.uploadedKey, m.uploadedData
}

type testHarness struct {
	worker        *worker.NatsWorker
	textStore     *mockObjectStore
	timelineStore *mockObjectStore
	metrics       *metrics.Metrics
	conn          *nats.Conn
}

func createTestNatsClient(t *testing.T) *nats.Conn {
	t.Helper()

	opts := test.DefaultTestOptions
	opts.Port = -1
	server := test.RunServer(&opts)

	natsConnection, err := nats.Connect(server.ClientURL())
	if err != nil {
		t.Fatalf("Failed to connect to test NATS server: %v", err)
	}

	t.Cleanup(func() {
		natsConnection.Close()
		server.Shutdown()
	})

	return natsConnection
}

// startWorker runs a worker until the test ends.
func startWorker(t *testing.T, settings worker.Settings, text string) *testHarness {
	t.Helper()

	harness := &testHarness{
		textStore:     &mockObjectStore{content: []byte(text)},
		timelineStore: &mockObjectStore{},
		metrics:       metrics.New(),
		conn:          createTestNatsClient(t),
	}

	testLogger, err := logger.New(t.TempDir(), "test-log.log")
	require.NoError(t, err)

	engine, err := lipsync.NewEngine(lipsync.DefaultConfig())
	require.NoError(t, err)

	harness.worker, err = worker.NewNatsWorker(
		harness.conn, settings, harness.textStore, harness.timelineStore, engine, harness.metrics, testLogger,
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)

	go func() {
		errChan <- harness.worker.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-errChan, "worker.Run should not error on graceful shutdown")
	})

	select {
	case <-harness.worker.Ready():
	case err := <-errChan:
		t.Fatalf("worker stopped before subscribing: %v", err)
	case <-time.After(replyTimeout):
		t.Fatal("worker did not subscribe in time")
	}

	return harness
}

func newTextEvent(textKey string) []byte {
	event := &events.TextProcessedEvent{
		Header: events.EventHeader{
			Timestamp:  time.Now(),
			WorkflowID: uuid.NewString(),
			EventID:    uuid.NewString(),
			UserID:     "",
			TenantID:   "",
		},
		TextKey:    textKey,
		PageNumber: 3,
		TotalPages: 10,
	}

	data, err := json.Marshal(event)
	if err != nil {
		panic(err)
	}

	return data
}

func TestNewNatsWorker_Validation(t *testing.T) {
	t.Parallel()

	engine := lipsync.MustNewEngine(lipsync.DefaultConfig())
	store := &mockObjectStore{}

	_, err := worker.NewNatsWorker(nil, worker.Settings{}, store, store, engine, nil, nil)
	require.ErrorIs(t, err, worker.ErrSubjectEmpty)

	_, err = worker.NewNatsWorker(nil, worker.Settings{Subject: testSubject}, nil, store, engine, nil, nil)
	require.ErrorIs(t, err, worker.ErrStoreNil)

	_, err = worker.NewNatsWorker(nil, worker.Settings{Subject: testSubject}, store, store, nil, nil, nil)
	require.ErrorIs(t, err, worker.ErrConverterNil)
}

func TestMessageHandler_Success(t *testing.T) {
	t.Parallel()

	harness := startWorker(t, worker.Settings{Subject: testSubject}, "ciao")

	requestData := newTextEvent("test-text-key")

	replyMsg, err := harness.conn.Request(testSubject, requestData, replyTimeout)
	require.NoError(t, err, "Request should succeed and receive a reply")

	var replyEvent worker.VisemeTimelineCreatedEvent

	require.NoError(t, json.Unmarshal(replyMsg.Data, &replyEvent))

	var requestEvent events.TextProcessedEvent

	require.NoError(t, json.Unmarshal(requestData, &requestEvent))

	downloadedKey, uploadedKey, uploadedData := harness.timelineStore.snapshot()
	assert.Empty(t, downloadedKey)

	textKey, _, _ := harness.textStore.snapshot()
	assert.Equal(t, "test-text-key", textKey)

	assert.True(t, strings.HasSuffix(uploadedKey, ".json"), "timeline key %q", uploadedKey)
	assert.Equal(t, uploadedKey, replyEvent.TimelineKey)
	assert.Equal(t, "json", replyEvent.Format)
	assert.Equal(t, requestEvent.Header.WorkflowID, replyEvent.Header.WorkflowID)
	assert.Equal(t, 3, replyEvent.PageNumber)
	assert.Equal(t, 10, replyEvent.TotalPages)
	assert.Equal(t, 3, replyEvent.EventCount)
	assert.InDelta(t, 306, replyEvent.DurationMs, 1e-9)

	stored, err := timeline.Decode(uploadedData, timeline.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "CIAO", stored.Text)
	require.Len(t, stored.Events, 3)
	assert.Equal(t, timeline.OculusCH, stored.Events[0].VisemeID)

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(harness.metrics.Conversions.WithLabelValues(metrics.OutcomeSuccess)) == 1
	}, replyTimeout, 10*time.Millisecond)
	assert.InDelta(t, 3, testutil.ToFloat64(harness.metrics.VisemesEmitted), 0)
}

func TestMessageHandler_MsgpackAndCreatedSubject(t *testing.T) {
	t.Parallel()

	settings := worker.Settings{
		Subject:        testSubject,
		CreatedSubject: createdSubject,
		Format:         timeline.FormatMsgpack,
		Options:        timeline.Options{MsPerUnit: 10, PadSilence: true, SilenceUnits: 1},
	}
	harness := startWorker(t, settings, "50%")

	created, err := harness.conn.SubscribeSync(createdSubject)
	require.NoError(t, err)
	require.NoError(t, harness.conn.Flush())

	// Fire and forget: no reply subject, only the created subject hears back.
	require.NoError(t, harness.conn.Publish(testSubject, newTextEvent("page-3.txt")))

	msg, err := created.NextMsg(replyTimeout)
	require.NoError(t, err)

	var createdEvent worker.VisemeTimelineCreatedEvent

	require.NoError(t, json.Unmarshal(msg.Data, &createdEvent))
	assert.True(t, strings.HasSuffix(createdEvent.TimelineKey, ".msgpack"))
	assert.Equal(t, "msgpack", createdEvent.Format)

	_, _, uploadedData := harness.timelineStore.snapshot()

	stored, err := timeline.Decode(uploadedData, timeline.FormatMsgpack)
	require.NoError(t, err)
	assert.Equal(t, "CINQUANTA PER CENTO", stored.Text)
	assert.Equal(t, timeline.OculusSil, stored.Events[0].VisemeID)
	assert.Equal(t, timeline.OculusSil, stored.Events[len(stored.Events)-1].VisemeID)
	assert.Len(t, stored.Events, createdEvent.EventCount)

	// The two silence pads are not counted as emitted visemes.
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(harness.metrics.VisemesEmitted) == float64(createdEvent.EventCount-2)
	}, replyTimeout, 10*time.Millisecond)
}

func TestMessageHandler_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(harness *testHarness)
		payload []byte
		outcome string
	}{
		{
			name:    "invalid json",
			setup:   func(*testHarness) {},
			payload: []byte("{not json"),
			outcome: metrics.OutcomeInvalidEvent,
		},
		{
			name:    "missing text key",
			setup:   func(*testHarness) {},
			payload: newTextEvent(""),
			outcome: metrics.OutcomeInvalidEvent,
		},
		{
			name: "download fails",
			setup: func(harness *testHarness) {
				harness.textStore.mu.Lock()
				harness.textStore.downloadShouldFail = true
				harness.textStore.mu.Unlock()
			},
			payload: newTextEvent("text-key"),
			outcome: metrics.OutcomeDownloadFailed,
		},
		{
			name: "upload fails",
			setup: func(harness *testHarness) {
				harness.timelineStore.mu.Lock()
				harness.timelineStore.uploadShouldFail = true
				harness.timelineStore.mu.Unlock()
			},
			payload: newTextEvent("text-key"),
			outcome: metrics.OutcomeUploadFailed,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			harness := startWorker(t, worker.Settings{Subject: testSubject}, "ciao")
			testCase.setup(harness)

			// Failed jobs get no reply, so the request times out.
			_, err := harness.conn.Request(testSubject, testCase.payload, 200*time.Millisecond)
			require.Error(t, err)

			assert.Eventually(t, func() bool {
				return testutil.ToFloat64(harness.metrics.Conversions.WithLabelValues(testCase.outcome)) == 1
			}, replyTimeout, 10*time.Millisecond)
			assert.Zero(t, testutil.ToFloat64(harness.metrics.Conversions.WithLabelValues(metrics.OutcomeSuccess)))
		})
	}
}
