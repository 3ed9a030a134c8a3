package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/core"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/usecase"
)

const (
	DefaultConcurrencyLevel = 8
	DefaultQueueSize        = 256
)

// ErrDispatcherClosed is returned by Submit after Shutdown has started
var ErrDispatcherClosed = errors.New("dispatcher is shut down")

// NotificationEvent is one notification as delivered by the device listener
type NotificationEvent struct {
	Sender     string
	Title      string
	Body       string
	ObservedAt time.Time
}

// Text joins title and body the way the parser expects them
func (e NotificationEvent) Text() string {
	return strings.TrimSpace(e.Title + " " + e.Body)
}

// Dispatcher fans notification events out to the ingestion pipeline.
// Each accepted event is processed in its own goroutine; the semaphore bounds how many run at once.
type Dispatcher struct {
	pipeline     usecase.IngestionUseCase
	allowlist    *SenderAllowlist
	timeProvider core.TimeProvider
	logger       core.Logger

	queue    chan NotificationEvent
	sem      *semaphore.Weighted
	inFlight sync.WaitGroup
	loopDone chan struct{}

	// closing releases submitters blocked on a full queue so Shutdown can take mu
	closing   chan struct{}
	closeOnce sync.Once

	mu      sync.RWMutex
	started bool
	closed  bool
}

// NewDispatcher creates a dispatcher. Non-positive sizes fall back to the defaults.
func NewDispatcher(
	pipeline usecase.IngestionUseCase,
	allowlist *SenderAllowlist,
	timeProvider core.TimeProvider,
	logger core.Logger,
	concurrency int,
	queueSize int,
) *Dispatcher {
	if pipeline == nil {
		panic("ingestion pipeline cannot be nil")
	}
	if allowlist == nil {
		allowlist = NewSenderAllowlist(nil)
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrencyLevel
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	return &Dispatcher{
		pipeline:     pipeline,
		allowlist:    allowlist,
		timeProvider: timeProvider,
		logger:       logger,
		queue:        make(chan NotificationEvent, queueSize),
		sem:          semaphore.NewWeighted(int64(concurrency)),
		loopDone:     make(chan struct{}),
		closing:      make(chan struct{}),
	}
}

// Start launches the dispatch loop. Work started by the loop runs under ctx.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true

	d.logger.Info("Notification dispatcher started", map[string]any{
		"queue_size": cap(d.queue),
	})
	go d.loop(ctx)
}

// Submit queues an event for ingestion.
// It returns false with a nil error when the sender is not allowlisted.
// It blocks while the queue is full until ctx is done or Shutdown starts.
func (d *Dispatcher) Submit(ctx context.Context, event NotificationEvent) (bool, error) {
	if !d.allowlist.Allows(event.Sender) {
		d.logger.Debug("Ignoring notification from sender outside allowlist", map[string]any{
			"sender": event.Sender,
		})
		return false, nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false, ErrDispatcherClosed
	}

	select {
	case d.queue <- event:
		return true, nil
	case <-d.closing:
		return false, ErrDispatcherClosed
	case <-ctx.Done():
		d.logger.Warn("Context canceled while enqueueing notification", map[string]any{
			"sender": event.Sender,
			"error":  ctx.Err().Error(),
		})
		return false, ctx.Err()
	}
}

// Consume forwards events from a stream until it closes or ctx is done
func (d *Dispatcher) Consume(ctx context.Context, events <-chan NotificationEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if _, err := d.Submit(ctx, event); err != nil {
				return err
			}
		}
	}
}

func (d *Dispatcher) loop(ctx context.Context) {
	defer close(d.loopDone)

	for event := range d.queue {
		if err := d.sem.Acquire(ctx, 1); err != nil {
			d.logger.Warn("Dropping notification, dispatcher context ended", map[string]any{
				"sender": event.Sender,
				"error":  err.Error(),
			})
			continue
		}
		d.inFlight.Add(1)
		go d.handle(ctx, event)
	}
}

func (d *Dispatcher) handle(ctx context.Context, event NotificationEvent) {
	defer d.sem.Release(1)
	defer d.inFlight.Done()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Recovered panic in notification worker", map[string]any{
				"sender": event.Sender,
				"panic":  fmt.Sprint(r),
			})
		}
	}()

	observedAt := event.ObservedAt
	if observedAt.IsZero() {
		observedAt = d.timeProvider.Now()
	}

	result, err := d.pipeline.ProcessIncomingMessage(ctx, event.Text(), observedAt)
	if err != nil {
		fields := map[string]any{
			"sender": event.Sender,
			"error":  err.Error(),
		}
		if result != nil {
			fields["message_id"] = result.MessageID
			fields["stage"] = string(result.Stage)
		}
		d.logger.Error("Notification ingestion failed", fields)
	}
}

// Shutdown stops accepting events, drains the queue and waits for in-flight work.
// It returns ctx.Err() if work is still running when ctx ends.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.logger.Info("Shutting down notification dispatcher", nil)

	d.closeOnce.Do(func() { close(d.closing) })

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		if started {
			<-d.loopDone
		}
		d.inFlight.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("Notification dispatcher shut down successfully", nil)
		return nil
	case <-ctx.Done():
		d.logger.Warn("Dispatcher shutdown timed out with work in flight", map[string]any{
			"error": ctx.Err().Error(),
		})
		return ctx.Err()
	}
}
