package alerts

import (
	"sync"

	"github.com/google/uuid"

	"github.com/monplancbd/storefront/pkg/enums"
)

// Alert is a transient storefront notice surfaced to the user (product added,
// line trimmed, product gone).
type Alert struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Level       enums.AlertLevel `json:"level"`
}

const maxPendingPerSession = 50

// Sink buffers alerts per session until the client drains them.
type Sink struct {
	mu      sync.Mutex
	pending map[string][]Alert
}

// NewSink builds an empty alert sink.
func NewSink() *Sink {
	return &Sink{pending: make(map[string][]Alert)}
}

// Push queues an alert for the session, dropping the oldest entry once the
// per-session buffer is full.
func (s *Sink) Push(sessionID, title, description string, level enums.AlertLevel) Alert {
	alert := Alert{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Level:       level,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	queue := append(s.pending[sessionID], alert)
	if len(queue) > maxPendingPerSession {
		queue = queue[len(queue)-maxPendingPerSession:]
	}
	s.pending[sessionID] = queue
	return alert
}

// Drain returns and clears the session's pending alerts.
func (s *Sink) Drain(sessionID string) []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.pending[sessionID]
	delete(s.pending, sessionID)
	if queue == nil {
		return []Alert{}
	}
	return queue
}

// Pending reports how many alerts the session has queued.
func (s *Sink) Pending(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending[sessionID])
}
