package channels

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Confirmation verdicts. The timeout verdict is distinct from a plain
// denial so callers can tell the two outcomes apart.
const (
	VerdictApproved      = "APPROVED"
	VerdictDenied        = "DENIED"
	VerdictDeniedTimeout = "DENIED (timeout)"
)

const defaultConfirmationTimeout = 5 * time.Minute

var ErrUnknownConfirmation = errors.New("unknown confirmation id")

// PendingConfirmation is one outstanding HIL request awaiting a verdict.
type PendingConfirmation struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type pendingEntry struct {
	confirmation PendingConfirmation
	response     chan string
}

// Hub is an in-process channel provider. Confirmation requests block until
// a human resolves them or the timeout elapses (treated as denial, never
// retried automatically). Notifications accumulate in an inbox the HTTP
// surface drains.
//
// All confirmation state lives here, passed by reference — no ambient
// package-level registries.
type Hub struct {
	timeout time.Duration

	mu            sync.Mutex
	pending       map[string]*pendingEntry
	notifications []string
}

func NewHub(timeout time.Duration) *Hub {
	if timeout <= 0 {
		timeout = defaultConfirmationTimeout
	}
	return &Hub{
		timeout: timeout,
		pending: make(map[string]*pendingEntry),
	}
}

func (hub *Hub) Name() string { return "hub" }

func (hub *Hub) Capabilities() []string {
	return []string{CapabilityNotify, CapabilityConfirm}
}

// Notify appends the message to the inbox.
func (hub *Hub) Notify(ctx context.Context, message string) error {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.notifications = append(hub.notifications, message)
	return nil
}

// DrainNotifications returns and clears the inbox.
func (hub *Hub) DrainNotifications() []string {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	drained := hub.notifications
	hub.notifications = nil
	return drained
}

// AskConfirmation registers a pending request and blocks for a verdict.
func (hub *Hub) AskConfirmation(ctx context.Context, message string) (string, error) {
	entry := &pendingEntry{
		confirmation: PendingConfirmation{
			ID:        uuid.NewString(),
			Message:   message,
			CreatedAt: time.Now().UTC(),
		},
		response: make(chan string, 1),
	}

	hub.mu.Lock()
	hub.pending[entry.confirmation.ID] = entry
	hub.mu.Unlock()

	timer := time.NewTimer(hub.timeout)
	defer timer.Stop()

	select {
	case verdict := <-entry.response:
		return verdict, nil
	case <-timer.C:
		hub.remove(entry.confirmation.ID)
		return VerdictDeniedTimeout, nil
	case <-ctx.Done():
		hub.remove(entry.confirmation.ID)
		return "", ctx.Err()
	}
}

// Resolve delivers a verdict for a pending confirmation.
func (hub *Hub) Resolve(id string, verdict string) error {
	hub.mu.Lock()
	entry, ok := hub.pending[id]
	if ok {
		delete(hub.pending, id)
	}
	hub.mu.Unlock()

	if !ok {
		return ErrUnknownConfirmation
	}
	entry.response <- verdict
	return nil
}

// Pending lists outstanding confirmations, oldest first.
func (hub *Hub) Pending() []PendingConfirmation {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	confirmations := make([]PendingConfirmation, 0, len(hub.pending))
	for _, entry := range hub.pending {
		confirmations = append(confirmations, entry.confirmation)
	}
	sort.Slice(confirmations, func(i, j int) bool {
		return confirmations[i].CreatedAt.Before(confirmations[j].CreatedAt)
	})
	return confirmations
}

func (hub *Hub) remove(id string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	delete(hub.pending, id)
}
