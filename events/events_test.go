package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collector records delivered events and signals when the expected count arrived
type collector struct {
	mu     sync.Mutex
	events []Event
	done   chan struct{}
	want   int
}

func newCollector(want int) *collector {
	return &collector{done: make(chan struct{}), want: want}
}

func (c *collector) handle(_ context.Context, e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	if len(c.events) == c.want {
		close(c.done)
	}
}

func (c *collector) wait(t *testing.T) []Event {
	select {
	case <-c.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for events")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events
}

func TestBus_EmitDispatchesByType(t *testing.T) {
	bus := NewBus()
	c := newCollector(1)
	bus.Subscribe(EventTypeWinnerDrawn, c.handle)

	bus.Emit(context.Background(), EntrySubmittedEvent{RaffleID: 1})
	bus.Emit(context.Background(), WinnerDrawnEvent{RaffleID: 1, Winner: "alice"})

	got := c.wait(t)
	require.Len(t, got, 1)
	assert.Equal(t, WinnerDrawnEvent{RaffleID: 1, Winner: "alice"}, got[0])
}

func TestBus_HandlerPanicDoesNotStopOthers(t *testing.T) {
	bus := NewBus()
	c := newCollector(1)
	bus.Subscribe(EventTypePrizeClaimed, func(context.Context, Event) {
		panic("handler blew up")
	})
	bus.Subscribe(EventTypePrizeClaimed, c.handle)

	bus.Emit(context.Background(), PrizeClaimedEvent{RaffleID: 2, Winner: "bob"})

	got := c.wait(t)
	assert.Len(t, got, 1)
}

func TestTransactionalBus_FlushAfterCommit(t *testing.T) {
	bus := NewBus()
	c := newCollector(2)
	bus.Subscribe(EventTypeEntrySubmitted, c.handle)

	tb := NewTransactionalBus(bus)
	tb.Publish(EntrySubmittedEvent{RaffleID: 1, Participant: "alice", TicketCount: 2})
	tb.Publish(EntrySubmittedEvent{RaffleID: 1, Participant: "bob", TicketCount: 1})

	require.NoError(t, tb.Flush(context.Background()))

	got := c.wait(t)
	assert.Len(t, got, 2)
}

func TestTransactionalBus_DiscardDropsPending(t *testing.T) {
	bus := NewBus()
	delivered := make(chan Event, 1)
	bus.Subscribe(EventTypeFundsWithdrawn, func(_ context.Context, e Event) {
		delivered <- e
	})

	tb := NewTransactionalBus(bus)
	tb.Publish(FundsWithdrawnEvent{Asset: "gold", Amount: 100, To: "custody"})
	tb.Discard()

	require.NoError(t, tb.Flush(context.Background()))

	select {
	case e := <-delivered:
		t.Fatalf("discarded event was delivered: %v", e)
	case <-time.After(100 * time.Millisecond):
	}
}
