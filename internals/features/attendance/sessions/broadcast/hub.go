// internals/features/attendance/sessions/broadcast/hub.go
package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"workforce_backend/internals/features/attendance/sessions/metrics"
	"workforce_backend/internals/features/attendance/sessions/model"
)

type EventKind string

const (
	EventCheckedIn         EventKind = "session.checked_in"
	EventCheckedOut        EventKind = "session.checked_out"
	EventBreakStarted      EventKind = "session.break_started"
	EventBreakEnded        EventKind = "session.break_ended"
	EventViolationCreated  EventKind = "violation.created"
	EventViolationResolved EventKind = "violation.resolved"
)

// Event is a hint for live observers; consumers re-fetch authoritative state.
type Event struct {
	Kind       EventKind                       `json:"kind"`
	EmployeeID uuid.UUID                       `json:"employee_id"`
	Session    *model.AttendanceSessionModel   `json:"session,omitempty"`
	Violation  *model.AttendanceViolationModel `json:"violation,omitempty"`
	At         time.Time                       `json:"at"`
}

// Hub decouples publishers from delivery. Publish never blocks: events go into
// a bounded queue and are dropped when it is full. Run owns the fan-out.
type Hub struct {
	queue chan Event

	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 256
	}
	return &Hub{
		queue: make(chan Event, buffer),
		subs:  make(map[uint64]*Subscription),
	}
}

// Publish enqueues a session change. The snapshot is copied.
func (h *Hub) Publish(employeeID uuid.UUID, kind EventKind, snapshot model.AttendanceSessionModel) {
	h.enqueue(Event{Kind: kind, EmployeeID: employeeID, Session: &snapshot, At: time.Now()})
}

func (h *Hub) PublishViolation(kind EventKind, v model.AttendanceViolationModel) {
	h.enqueue(Event{Kind: kind, EmployeeID: v.AttendanceViolationEmployeeID, Violation: &v, At: time.Now()})
}

func (h *Hub) enqueue(ev Event) {
	select {
	case h.queue <- ev:
	default:
		metrics.BroadcastDroppedTotal.Inc()
	}
}

// Run dispatches until ctx is cancelled, then closes every subscription.
func (h *Hub) Run(ctx context.Context) {
	defer h.closeAll()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-h.queue:
			h.fanOut(ev)
		}
	}
}

func (h *Hub) fanOut(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.subs {
		if s.filter != nil && !s.filter(ev) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
			metrics.BroadcastDroppedTotal.Inc()
		}
	}
}

// Subscription is one observer. A nil filter receives everything.
type Subscription struct {
	id     uint64
	hub    *Hub
	ch     chan Event
	filter func(Event) bool
	once   sync.Once
}

func (h *Hub) Subscribe(buffer int, filter func(Event) bool) *Subscription {
	if buffer <= 0 {
		buffer = 32
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	s := &Subscription{id: h.nextID, hub: h, ch: make(chan Event, buffer), filter: filter}
	h.subs[s.id] = s
	metrics.BroadcastSubscribers.Inc()
	return s
}

// C is closed when the subscription ends.
func (s *Subscription) C() <-chan Event { return s.ch }

func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	s.closeLocked()
}

func (s *Subscription) closeLocked() {
	s.once.Do(func() {
		delete(s.hub.subs, s.id)
		close(s.ch)
		metrics.BroadcastSubscribers.Dec()
	})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.subs {
		s.closeLocked()
	}
}
