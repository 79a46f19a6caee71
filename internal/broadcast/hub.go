package broadcast

import (
	"sync"

	"pipeline_rescue/internal/logger"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// subscriber channel buffer; a consumer this far behind is considered dead
const sendBuffer = 16

var (
	publishedEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_events_total",
			Help: "Events published to the hub, by type",
		},
		[]string{"type"},
	)
	droppedSubscribers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_dropped_subscribers_total",
			Help: "Subscribers dropped because their buffer was full",
		},
	)
	liveSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "broadcast_subscribers",
			Help: "Currently registered subscribers",
		},
	)
)

func init() {
	prometheus.MustRegister(publishedEvents)
	prometheus.MustRegister(droppedSubscribers)
	prometheus.MustRegister(liveSubscribers)
}

// Subscription is one live connection's inbound side. C is closed when the
// subscription is removed, by Unsubscribe, by a full buffer or by Close.
type Subscription struct {
	ID uuid.UUID
	C  <-chan Event

	ch chan Event
}

// Hub fans timer events out to every registered subscription. Publishing
// never blocks: a subscriber whose buffer is full is dropped on the spot and
// treated as unsubscribed.
type Hub struct {
	mu     sync.Mutex
	subs   map[uuid.UUID]chan Event
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uuid.UUID]chan Event)}
}

// Subscribe registers a new outbound channel.
func (h *Hub) Subscribe() *Subscription {
	ch := make(chan Event, sendBuffer)
	sub := &Subscription{ID: uuid.New(), C: ch, ch: ch}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return sub
	}
	h.subs[sub.ID] = ch
	liveSubscribers.Set(float64(len(h.subs)))
	return sub
}

// Unsubscribe removes a subscription. Safe to call repeatedly or for a
// subscription already dropped by Publish.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[sub.ID]; ok {
		delete(h.subs, sub.ID)
		close(ch)
		liveSubscribers.Set(float64(len(h.subs)))
	}
}

// Publish delivers ev to every current subscriber. Delivery is best-effort:
// the publisher is never blocked by a slow consumer.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	publishedEvents.WithLabelValues(string(ev.Type)).Inc()

	for id, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			delete(h.subs, id)
			close(ch)
			droppedSubscribers.Inc()
			logger.Warn("dropped slow subscriber", "id", id.String())
		}
	}
	liveSubscribers.Set(float64(len(h.subs)))
}

// Count returns the number of registered subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close drops every subscriber and rejects new ones; used on shutdown so
// live connections drain within the grace period.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
	liveSubscribers.Set(0)
}
