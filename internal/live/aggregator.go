package live

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"hostel-order-backend/internal/billing"
	"hostel-order-backend/internal/model"
	"hostel-order-backend/internal/store"
)

// ParticipantView is a participant with their items and derived totals.
type ParticipantView struct {
	model.Participant
	Items []model.Item `json:"items"`
	billing.Totals
}

// Summary is the full derived view of one order, recomputed from current
// snapshots whenever any underlying collection changes.
type Summary struct {
	OrderID      string            `json:"orderId"`
	Participants []ParticipantView `json:"participants"`
	Order        billing.Totals    `json:"order"`
}

// Aggregator maintains the live view of one open order. It holds one
// subscription on the order's participants topic and one items
// subscription per currently-known participant, opened when a participant
// first appears and cancelled when it disappears. The set of live item
// subscriptions always equals the current participant ID set; Run's return
// releases every handle it opened.
type Aggregator struct {
	orderID string
	store   store.Store
	hub     *Hub

	mu    sync.Mutex
	items map[string]*Subscription

	updates chan Summary
}

// NewAggregator creates an aggregator for one order. Call Run to start it.
func NewAggregator(s store.Store, hub *Hub, orderID string) *Aggregator {
	return &Aggregator{
		orderID: orderID,
		store:   s,
		hub:     hub,
		items:   make(map[string]*Subscription),
		updates: make(chan Summary, 16),
	}
}

// Updates returns the summary stream. A new Summary is emitted after every
// relevant change; slow consumers miss intermediate summaries, never the
// latest state. The channel is closed when Run returns.
func (a *Aggregator) Updates() <-chan Summary {
	return a.updates
}

// Tracked returns the participant IDs with a live items subscription,
// sorted.
func (a *Aggregator) Tracked() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	ids := make([]string, 0, len(a.items))
	for id := range a.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Run drives the aggregator until the context is cancelled. It emits an
// initial summary immediately, then recomputes on every participant or
// item event.
func (a *Aggregator) Run(ctx context.Context) {
	psub := a.hub.Subscribe(ParticipantsTopic(a.orderID))
	defer psub.Cancel()
	defer a.dropAllItemSubs()
	defer close(a.updates)

	// Item events from all per-participant subscriptions are merged onto
	// one channel by a forwarding goroutine per handle; a forwarder exits
	// when its subscription is cancelled.
	itemEvents := make(chan Event, 32)

	a.syncParticipants(ctx, itemEvents)
	a.emit(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-psub.Events():
			if !ok {
				return
			}
			a.syncParticipants(ctx, itemEvents)
			a.emit(ctx)
		case <-itemEvents:
			a.emit(ctx)
		}
	}
}

// syncParticipants diffs the stored participant set against the tracked
// one: a new items subscription for every newly seen participant ID, a
// cancel for every ID no longer present. Removed handles are closed before
// new ones are opened.
func (a *Aggregator) syncParticipants(ctx context.Context, itemEvents chan<- Event) {
	participants, err := a.store.ListParticipants(ctx, a.orderID)
	if err != nil {
		slog.Error("failed to list participants", "order_id", a.orderID, "error", err)
		return
	}

	current := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		current[p.ID] = struct{}{}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for id, sub := range a.items {
		if _, ok := current[id]; !ok {
			sub.Cancel()
			delete(a.items, id)
		}
	}

	for id := range current {
		if _, ok := a.items[id]; ok {
			continue
		}
		sub := a.hub.Subscribe(ItemsTopic(id))
		a.items[id] = sub
		go forward(sub, itemEvents)
	}
}

// emit recomputes the summary from current snapshots and pushes it out.
// The result depends only on stored state, not on which event triggered
// the recompute or in what order events arrived.
func (a *Aggregator) emit(ctx context.Context) {
	summary, err := BuildSummary(ctx, a.store, a.orderID)
	if err != nil {
		slog.Error("failed to build order summary", "order_id", a.orderID, "error", err)
		return
	}

	select {
	case a.updates <- *summary:
	default:
		// Drop the oldest pending summary so the consumer always ends up
		// with the freshest one.
		select {
		case <-a.updates:
		default:
		}
		select {
		case a.updates <- *summary:
		default:
		}
	}
}

func (a *Aggregator) dropAllItemSubs() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, sub := range a.items {
		sub.Cancel()
		delete(a.items, id)
	}
}

func forward(sub *Subscription, out chan<- Event) {
	for ev := range sub.Events() {
		select {
		case out <- ev:
		default:
		}
	}
}

// BuildSummary computes an order's derived view from current snapshots.
// The order-level fee is computed from the order subtotal independently of
// the per-participant fees.
func BuildSummary(ctx context.Context, s store.Store, orderID string) (*Summary, error) {
	participants, err := s.ListParticipants(ctx, orderID)
	if err != nil {
		return nil, err
	}

	views := make([]ParticipantView, 0, len(participants))
	subtotals := make([]float64, 0, len(participants))
	for _, p := range participants {
		items, err := s.ListItems(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		totals := billing.ForParticipant(items)
		views = append(views, ParticipantView{
			Participant: p,
			Items:       items,
			Totals:      totals,
		})
		subtotals = append(subtotals, totals.Subtotal)
	}

	return &Summary{
		OrderID:      orderID,
		Participants: views,
		Order:        billing.ForOrder(subtotals),
	}, nil
}
