// Package worker provides a NATS worker that turns processed texts into viseme timelines.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/book-expert/events"
	"github.com/book-expert/lipsync-service/internal/core"
	"github.com/book-expert/lipsync-service/internal/metrics"
	"github.com/book-expert/lipsync-service/internal/timeline"
	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const handleMessageTimeout = 30 * time.Second

var (
	// ErrSubjectEmpty indicates that no subject was given to listen on.
	ErrSubjectEmpty = errors.New("subject cannot be empty")
	// ErrStoreNil indicates that an object store is missing.
	ErrStoreNil = errors.New("object store cannot be nil")
	// ErrConverterNil indicates that no viseme converter was given.
	ErrConverterNil = errors.New("viseme converter cannot be nil")
	// ErrTextKeyEmpty indicates an event without a text key.
	ErrTextKeyEmpty = errors.New("text key cannot be empty")
)

// Settings controls what the worker listens on and what it produces.
type Settings struct {
	Subject string
	// CreatedSubject, when set, also receives every created event.
	CreatedSubject string
	Format         timeline.Format
	Options        timeline.Options
}

// NatsWorker listens for processed texts on a NATS subject and stores their timelines.
type NatsWorker struct {
	natsConnection *nats.Conn
	settings       Settings
	textStore      core.ObjectStore
	timelineStore  core.ObjectStore
	converter      core.VisemeConverter
	metrics        *metrics.Metrics
	log            *logger.Logger
	ready          chan struct{}
}

// NewNatsWorker creates a new instance of a NATS worker. A nil metrics value
// gets a private registry.
func NewNatsWorker(
	natsConnection *nats.Conn,
	settings Settings,
	textStore core.ObjectStore,
	timelineStore core.ObjectStore,
	converter core.VisemeConverter,
	workerMetrics *metrics.Metrics,
	log *logger.Logger,
) (*NatsWorker, error) {
	if settings.Subject == "" {
		return nil, ErrSubjectEmpty
	}

	if textStore == nil || timelineStore == nil {
		return nil, ErrStoreNil
	}

	if converter == nil {
		return nil, ErrConverterNil
	}

	if settings.Format == "" {
		settings.Format = timeline.FormatJSON
	}

	if settings.Options.MsPerUnit == 0 {
		settings.Options = timeline.DefaultOptions()
	}

	if workerMetrics == nil {
		workerMetrics = metrics.New()
	}

	return &NatsWorker{
		natsConnection: natsConnection,
		settings:       settings,
		textStore:      textStore,
		timelineStore:  timelineStore,
		converter:      converter,
		metrics:        workerMetrics,
		log:            log,
		ready:          make(chan struct{}),
	}, nil
}

// Ready is closed once the subscription is registered with the server.
func (w *NatsWorker) Ready() <-chan struct{} {
	return w.ready
}

// Run starts the worker and blocks until ctx is done.
func (w *NatsWorker) Run(ctx context.Context) error {
	sub, err := w.natsConnection.Subscribe(w.settings.Subject, w.handleMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", w.settings.Subject, err)
	}

	err = w.natsConnection.Flush()
	if err != nil {
		return fmt.Errorf("failed to flush subscription to subject %s: %w", w.settings.Subject, err)
	}

	close(w.ready)
	w.log.Info("Listening for texts on subject: %s", w.settings.Subject)

	<-ctx.Done()

	drainErr := sub.Drain()
	if drainErr != nil {
		return fmt.Errorf("failed to drain subscription: %w", drainErr)
	}

	return nil
}

func (w *NatsWorker) handleMessage(msg *nats.Msg) {
	started := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), handleMessageTimeout)
	defer cancel()

	event, err := w.parseAndValidateEvent(msg)
	if err != nil {
		w.log.Error("Failed to parse and validate event: %v", err)
		w.metrics.ObserveConversion(metrics.OutcomeInvalidEvent, started)

		return
	}

	replyEvent, outcome, err := w.processTextJob(ctx, event)
	if err != nil {
		w.log.Error("Failed to build timeline for workflow %s: %v", event.Header.WorkflowID, err)
		w.metrics.ObserveConversion(outcome, started)

		return
	}

	err = w.publishReplyEvent(msg, replyEvent)
	if err != nil {
		w.log.Error("Failed to publish reply event for workflow %s: %v", event.Header.WorkflowID, err)
		w.metrics.ObserveConversion(metrics.OutcomeReplyFailed, started)

		return
	}

	w.metrics.ObserveConversion(metrics.OutcomeSuccess, started)
	w.log.Info("Stored timeline %s for workflow %s (%d events, %.0f ms)",
		replyEvent.TimelineKey, event.Header.WorkflowID, replyEvent.EventCount, replyEvent.DurationMs)
}

// processTextJob downloads the text, converts it and uploads the encoded timeline.
// On failure the returned outcome names the step that failed.
func (w *NatsWorker) processTextJob(
	ctx context.Context,
	event *events.TextProcessedEvent,
) (*VisemeTimelineCreatedEvent, string, error) {
	textData, err := w.textStore.Download(ctx, event.TextKey)
	if err != nil {
		return nil, metrics.OutcomeDownloadFailed,
			fmt.Errorf("failed to download text data for key '%s': %w", event.TextKey, err)
	}

	result := w.converter.Convert(string(textData))

	built, err := timeline.Build(result, w.settings.Options)
	if err != nil {
		return nil, metrics.OutcomeEncodeFailed, fmt.Errorf("failed to build timeline: %w", err)
	}

	encoded, err := timeline.Encode(built, w.settings.Format)
	if err != nil {
		return nil, metrics.OutcomeEncodeFailed, fmt.Errorf("failed to encode timeline: %w", err)
	}

	timelineKey := uuid.NewString() + "." + w.settings.Format.FileExtension()

	err = w.timelineStore.Upload(ctx, timelineKey, encoded)
	if err != nil {
		return nil, metrics.OutcomeUploadFailed,
			fmt.Errorf("failed to upload timeline for key '%s': %w", timelineKey, err)
	}

	w.metrics.ObserveTimeline(result.Len(), built.Duration)

	return &VisemeTimelineCreatedEvent{
		Header:      event.Header,
		TimelineKey: timelineKey,
		Format:      string(w.settings.Format),
		PageNumber:  event.PageNumber,
		TotalPages:  event.TotalPages,
		DurationMs:  built.Duration,
		EventCount:  len(built.Events),
	}, metrics.OutcomeSuccess, nil
}

// publishReplyEvent answers the request, if any, and announces the timeline on
// the created subject, if configured.
func (w *NatsWorker) publishReplyEvent(msg *nats.Msg, replyEvent *VisemeTimelineCreatedEvent) error {
	replyData, err := json.Marshal(replyEvent)
	if err != nil {
		return fmt.Errorf("failed to marshal reply event: %w", err)
	}

	if msg.Reply != "" {
		err = msg.Respond(replyData)
		if err != nil {
			return fmt.Errorf("failed to respond with reply event: %w", err)
		}
	}

	if w.settings.CreatedSubject != "" {
		err = w.natsConnection.Publish(w.settings.CreatedSubject, replyData)
		if err != nil {
			return fmt.Errorf("failed to publish to subject %s: %w", w.settings.CreatedSubject, err)
		}
	}

	return nil
}

func (w *NatsWorker) parseAndValidateEvent(msg *nats.Msg) (*events.TextProcessedEvent, error) {
	var event events.TextProcessedEvent

	err := json.Unmarshal(msg.Data, &event)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if event.TextKey == "" {
		return nil, fmt.Errorf("%w: workflow %s", ErrTextKeyEmpty, event.Header.WorkflowID)
	}

	return &event, nil
}
