// Package live provides the in-process pub/sub hub behind the real-time
// surfaces: the hostel order board, the order detail view and the group
// chat. Handlers publish after every successful write; WebSocket streams
// subscribe and re-read the store on each event, so a delivered event is a
// change notification, never the data itself.
package live

import (
	"sync"
)

// Event kinds published on the hub.
const (
	KindOrderCreated     = "order.created"
	KindParticipantAdded = "participant.added"
	KindItemAdded        = "item.added"
	KindMessageSent      = "message.sent"
)

// Event is a change notification on a topic.
type Event struct {
	Topic string
	Kind  string
	// ID of the document the event refers to.
	ID string
}

// Topic constructors. Items get a topic per participant so the order
// aggregator can track each participant's items independently.
func OrdersTopic(hostelID string) string     { return "orders:" + hostelID }
func ParticipantsTopic(orderID string) string { return "participants:" + orderID }
func ItemsTopic(participantID string) string  { return "items:" + participantID }
func MessagesTopic(orderID string) string     { return "messages:" + orderID }

// Hub fans events out to topic subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers a new subscription on a topic. The caller must
// Cancel it when done; a subscription left open keeps receiving events.
func (h *Hub) Subscribe(topic string) *Subscription {
	sub := &Subscription{
		topic: topic,
		hub:   h,
		ch:    make(chan Event, 16),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[*Subscription]struct{})
	}
	h.subs[topic][sub] = struct{}{}
	return sub
}

// Publish delivers an event to every subscriber of the topic. Slow
// subscribers drop events rather than block the writer; consumers re-read
// state on every event, so a dropped notification is coalesced into the
// next one.
func (h *Hub) Publish(topic, kind, id string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[topic] {
		select {
		case sub.ch <- Event{Topic: topic, Kind: kind, ID: id}:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions on a topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}

func (h *Hub) cancel(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[sub.topic]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.topic)
		}
	}
	// Closed under the write lock so Publish (under the read lock) can
	// never send on a closed channel.
	close(sub.ch)
}

// Subscription is an owned handle on a topic. Events arrive on Events();
// Cancel releases the handle and closes the channel.
type Subscription struct {
	topic string
	hub   *Hub
	ch    chan Event
	once  sync.Once
}

// Events returns the event channel. It is closed by Cancel.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Topic returns the topic this subscription is attached to.
func (s *Subscription) Topic() string {
	return s.topic
}

// Cancel releases the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.hub.cancel(s)
	})
}
