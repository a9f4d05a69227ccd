// Package stream distributes alert engine events to live subscribers.
package stream

import (
	"context"
	"sync"
	"time"

	"market-alerts/internal/models"
)

// AllSymbols subscribes to events of every symbol.
const AllSymbols = "*"

// EventType identifies the kind of event.
type EventType string

const (
	EventAlertTriggered EventType = "alert_triggered"
	EventPrices         EventType = "prices"
	EventMonitoring     EventType = "monitoring"
)

// Event is a single message distributed by the hub. Events without a
// symbol are delivered to every subscriber.
type Event struct {
	Type      EventType              `json:"type"`
	Symbol    string                 `json:"symbol,omitempty"`
	Alert     *models.TriggeredAlert `json:"alert,omitempty"`
	Prices    *models.PriceSnapshot  `json:"prices,omitempty"`
	Paused    *bool                  `json:"paused,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// AlertEvent wraps a triggered alert.
func AlertEvent(t models.TriggeredAlert) Event {
	return Event{Type: EventAlertTriggered, Symbol: t.Symbol, Alert: &t, Timestamp: t.Timestamp}
}

// PricesEvent wraps a price snapshot.
func PricesEvent(s models.PriceSnapshot) Event {
	return Event{Type: EventPrices, Prices: &s, Timestamp: s.FetchedAt}
}

// MonitoringEvent reports a pause state change.
func MonitoringEvent(paused bool) Event {
	return Event{Type: EventMonitoring, Paused: &paused, Timestamp: time.Now()}
}

// HubConfig holds configuration for the Hub.
type HubConfig struct {
	// BufferSize is the size of the internal event channel buffer.
	BufferSize int
	// SubscriberBufferSize is the size of each subscriber's channel buffer.
	SubscriberBufferSize int
}

// DefaultHubConfig returns the default hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		BufferSize:           256,
		SubscriberBufferSize: 32,
	}
}

// Hub fans events from the engine out to subscribers via channels.
// Slow subscribers lose events rather than block the engine.
type Hub struct {
	config      HubConfig
	mu          sync.RWMutex
	subscribers map[string][]*Subscriber
	events      chan Event
	done        chan struct{}
	started     bool

	// Metrics
	eventsReceived  uint64
	eventsBroadcast uint64
	eventsDropped   uint64
	metricsMu       sync.RWMutex
}

// Subscriber represents a channel subscriber with metadata.
type Subscriber struct {
	ID           string
	Channel      chan Event
	DroppedCount int
	CreatedAt    time.Time
}

// NewHub creates a new hub with default configuration.
func NewHub() *Hub {
	return NewHubWithConfig(DefaultHubConfig())
}

// NewHubWithConfig creates a new hub with custom configuration.
func NewHubWithConfig(config HubConfig) *Hub {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultHubConfig().BufferSize
	}
	if config.SubscriberBufferSize <= 0 {
		config.SubscriberBufferSize = DefaultHubConfig().SubscriberBufferSize
	}
	return &Hub{
		config:      config,
		subscribers: make(map[string][]*Subscriber),
		events:      make(chan Event, config.BufferSize),
	}
}

// Start begins the hub's distribution loop.
func (h *Hub) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.started {
		return
	}
	h.started = true
	h.done = make(chan struct{})

	go h.broadcastLoop(ctx, h.done)
}

func (h *Hub) broadcastLoop(ctx context.Context, done <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case ev := <-h.events:
			h.metricsMu.Lock()
			h.eventsReceived++
			h.metricsMu.Unlock()

			h.broadcast(ev)
		}
	}
}

// Stop stops the hub and closes all subscriber channels.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.started {
		return
	}

	close(h.done)
	h.started = false

	for symbol, subs := range h.subscribers {
		for _, sub := range subs {
			close(sub.Channel)
		}
		delete(h.subscribers, symbol)
	}
}

// Subscribe adds a subscriber for a symbol, or AllSymbols.
func (h *Hub) Subscribe(symbol string) <-chan Event {
	return h.SubscribeWithID(symbol, "")
}

// SubscribeWithID adds a subscriber with a specific ID for a symbol.
func (h *Hub) SubscribeWithID(symbol, id string) <-chan Event {
	ch := make(chan Event, h.config.SubscriberBufferSize)
	sub := &Subscriber{
		ID:        id,
		Channel:   ch,
		CreatedAt: time.Now(),
	}

	h.mu.Lock()
	h.subscribers[symbol] = append(h.subscribers[symbol], sub)
	h.mu.Unlock()

	return ch
}

// Unsubscribe removes a subscriber channel for a symbol.
func (h *Hub) Unsubscribe(symbol string, ch <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.subscribers[symbol]
	for i, sub := range subs {
		if sub.Channel == ch {
			close(sub.Channel)
			h.subscribers[symbol] = append(subs[:i], subs[i+1:]...)
			break
		}
	}

	if len(h.subscribers[symbol]) == 0 {
		delete(h.subscribers, symbol)
	}
}

// Publish hands an event to the hub for distribution.
// This is non-blocking: if the internal buffer is full, the event is dropped.
func (h *Hub) Publish(ev Event) {
	select {
	case h.events <- ev:
	default:
		h.metricsMu.Lock()
		h.eventsDropped++
		h.metricsMu.Unlock()
	}
}

// PublishAlert publishes a triggered alert.
func (h *Hub) PublishAlert(t models.TriggeredAlert) {
	h.Publish(AlertEvent(t))
}

// broadcast sends an event to the matching subscribers without blocking.
func (h *Hub) broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var targets []*Subscriber
	if ev.Symbol == "" {
		for _, subs := range h.subscribers {
			targets = append(targets, subs...)
		}
	} else {
		targets = append(targets, h.subscribers[ev.Symbol]...)
		targets = append(targets, h.subscribers[AllSymbols]...)
	}

	for _, sub := range targets {
		select {
		case sub.Channel <- ev:
			h.metricsMu.Lock()
			h.eventsBroadcast++
			h.metricsMu.Unlock()
		default:
			// Slow consumer
			sub.DroppedCount++
			h.metricsMu.Lock()
			h.eventsDropped++
			h.metricsMu.Unlock()
		}
	}
}

// GetSubscriberCount returns the number of subscribers for a symbol.
func (h *Hub) GetSubscriberCount(symbol string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[symbol])
}

// GetTotalSubscriberCount returns the number of subscribers across all symbols.
func (h *Hub) GetTotalSubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, subs := range h.subscribers {
		count += len(subs)
	}
	return count
}

// GetMetrics returns hub metrics.
func (h *Hub) GetMetrics() HubMetrics {
	subscribers := h.GetTotalSubscriberCount()

	h.metricsMu.RLock()
	defer h.metricsMu.RUnlock()

	return HubMetrics{
		EventsReceived:  h.eventsReceived,
		EventsBroadcast: h.eventsBroadcast,
		EventsDropped:   h.eventsDropped,
		Subscribers:     subscribers,
	}
}

// HubMetrics contains hub performance metrics.
type HubMetrics struct {
	EventsReceived  uint64 `json:"events_received"`
	EventsBroadcast uint64 `json:"events_broadcast"`
	EventsDropped   uint64 `json:"events_dropped"`
	Subscribers     int    `json:"subscribers"`
}

// IsStarted returns whether the hub is running.
func (h *Hub) IsStarted() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.started
}
