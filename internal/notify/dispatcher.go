// Package notify fans user notifications out: every job persists a
// notification row, invalidates the unread-count cache and pushes a
// realtime event to the owner's websocket connections. Multi-recipient
// events (an update on a followed event, a ranking change) enqueue one job
// per recipient.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"esporthub/internal/microservices/http-api/models"
	"esporthub/internal/microservices/http-api/repository"
	"esporthub/internal/shared"
)

// Publisher pushes a realtime event to every live connection of a user.
// Implemented by the websocket hub.
type Publisher interface {
	Publish(userID string, event *shared.Event)
}

// Delivery metadata attached to created events: system notifications require
// explicit dismissal, everything else auto-dismisses after five seconds.
const autoDismissMillis = 5000

type createdPayload struct {
	Notification       *models.Notification `json:"notification"`
	RequireInteraction bool                 `json:"require_interaction"`
	AutoDismissMs      int                  `json:"auto_dismiss_ms,omitempty"`
}

// Dispatcher drains a buffered job queue with a fixed set of workers.
type Dispatcher struct {
	repo      repository.NotificationRepository
	cache     *repository.UnreadCacheRedis
	publisher Publisher

	jobs     chan *models.Notification
	wg       sync.WaitGroup
	closeMux sync.Mutex
	closed   bool
}

// NewDispatcher creates a dispatcher with the given worker count and queue size.
func NewDispatcher(
	repo repository.NotificationRepository,
	cache *repository.UnreadCacheRedis,
	publisher Publisher,
	workers, queueSize int,
) *Dispatcher {
	d := &Dispatcher{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		jobs:      make(chan *models.Notification, queueSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	slog.Info("notification dispatcher started", "workers", workers, "queue", queueSize)
	return d
}

// Dispatch enqueues a single notification. Unknown types are rejected up
// front; a full queue drops the job with a log line rather than blocking
// the request path. There is no retry policy on this pipeline.
func (d *Dispatcher) Dispatch(n *models.Notification) {
	if !models.ValidNotificationType(n.Type) {
		slog.Error("dropping notification with unknown type", "type", n.Type, "user_id", n.UserID)
		return
	}

	// the mutex orders enqueues against Shutdown closing the queue
	d.closeMux.Lock()
	defer d.closeMux.Unlock()
	if d.closed {
		slog.Warn("dispatcher shutting down, notification not enqueued", "user_id", n.UserID)
		return
	}
	select {
	case d.jobs <- n:
	default:
		slog.Error("notification queue full, dropping", "user_id", n.UserID, "type", n.Type)
	}
}

// DispatchToMany fans one notification template out to many recipients.
func (d *Dispatcher) DispatchToMany(userIDs []string, template *models.Notification) {
	for _, userID := range userIDs {
		n := *template
		n.ID = ""
		n.UserID = userID
		d.Dispatch(&n)
	}
}

// Shutdown stops accepting jobs and waits for in-flight deliveries.
func (d *Dispatcher) Shutdown() {
	d.closeMux.Lock()
	if !d.closed {
		close(d.jobs)
		d.closed = true
	}
	d.closeMux.Unlock()
	d.wg.Wait()
	slog.Info("notification dispatcher stopped")
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for n := range d.jobs {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n *models.Notification) {
	ctx := context.Background()

	if err := d.repo.Create(ctx, n); err != nil {
		// failures are logged and the job dropped; the pipeline has no retry
		slog.Error("failed to store notification", "user_id", n.UserID, "type", n.Type, "error", err)
		return
	}

	if err := d.cache.Invalidate(ctx, n.UserID); err != nil {
		slog.Warn("failed to invalidate unread cache", "user_id", n.UserID, "error", err)
	}

	payload := createdPayload{
		Notification:       n,
		RequireInteraction: n.Type == models.NotificationSystem,
	}
	if !payload.RequireInteraction {
		payload.AutoDismissMs = autoDismissMillis
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal notification payload", "error", err)
		return
	}

	d.publisher.Publish(n.UserID, shared.NewEvent(shared.EventNotificationCreated, n.UserID, raw))
}
