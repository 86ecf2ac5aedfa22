package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeRaffleCreated  EventType = "raffle_created"
	EventTypeEntrySubmitted EventType = "entry_submitted"
	EventTypeWinnerDrawn    EventType = "winner_drawn"
	EventTypePrizeClaimed   EventType = "prize_claimed"
	EventTypeFundsWithdrawn EventType = "funds_withdrawn"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// RaffleCreatedEvent represents a raffle record created with its prize escrowed
type RaffleCreatedEvent struct {
	RaffleID int64
}

func (e RaffleCreatedEvent) Type() EventType {
	return EventTypeRaffleCreated
}

// EntrySubmittedEvent represents an accepted join call, one per call
// regardless of track
type EntrySubmittedEvent struct {
	RaffleID    int64
	Participant string
	TicketCount int64
	FreeTrack   bool
}

func (e EntrySubmittedEvent) Type() EventType {
	return EventTypeEntrySubmitted
}

// WinnerDrawnEvent represents a winner selection
type WinnerDrawnEvent struct {
	RaffleID         int64
	Winner           string
	TotalEntriesSold int64
}

func (e WinnerDrawnEvent) Type() EventType {
	return EventTypeWinnerDrawn
}

// PrizeClaimedEvent represents the escrowed prize leaving custody
type PrizeClaimedEvent struct {
	RaffleID int64
	Winner   string
}

func (e PrizeClaimedEvent) Type() EventType {
	return EventTypePrizeClaimed
}

// FundsWithdrawnEvent represents a treasury withdrawal
type FundsWithdrawnEvent struct {
	Asset  string
	Amount int64
	To     string
}

func (e FundsWithdrawnEvent) Type() EventType {
	return EventTypeFundsWithdrawn
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// A transactional event bus for holding pending events coupled to the Unit of Work.
// Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// called after successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events to main event bus")

	// Events are processed independently of the transaction lifecycle, so
	// the possibly-expired transaction context is not reused here.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// called after db rollback or to clear state.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
