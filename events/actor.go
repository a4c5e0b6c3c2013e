package events

import (
	"context"
	"fmt"
	"time"

	"github.com/inconshreveable/log15"
)

var log = log15.New("pkg", "events")

// Handler processes one event delivered to an actor's mailbox.
type Handler func(ctx context.Context, ev interface{})

// Actor is a long-lived, single-threaded event consumer with a bounded
// mailbox (spec.md §5: "Each component runs as a long-lived actor with an
// inbound event mailbox... event handling is single-threaded and
// cooperative"). Handlers must not block; CPU-bound work belongs on a
// WorkerPool instead.
type Actor struct {
	name    string
	mailbox chan interface{}
	handle  Handler
}

// NewActor creates an actor named name with a mailbox of the given capacity,
// dispatching every delivered event to handle in FIFO order.
func NewActor(name string, capacity int, handle Handler) *Actor {
	return &Actor{
		name:    name,
		mailbox: make(chan interface{}, capacity),
		handle:  handle,
	}
}

// Run drains the mailbox until ctx is cancelled.
func (a *Actor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-a.mailbox:
			a.handle(ctx, ev)
		}
	}
}

// Send delivers ev to the actor's mailbox, blocking up to deadline before
// dropping the message and logging the drop (spec.md §5 "Backpressure").
func (a *Actor) Send(ctx context.Context, ev interface{}, deadline time.Duration) {
	timer := time.NewTimer(deadline)
	defer timer.Stop()
	select {
	case a.mailbox <- ev:
	case <-timer.C:
		log.Warn("dropping event: mailbox full past deadline", "actor", a.name, "event", fmt.Sprintf("%T", ev))
	case <-ctx.Done():
	}
}

// Pending reports how many events are currently queued, unconsumed.
func (a *Actor) Pending() int { return len(a.mailbox) }

// Drain blocks until the mailbox empties or deadline elapses (spec.md §5
// "Shutdown is cooperative... each actor drains its mailbox up to a
// deadline, then exits").
func (a *Actor) Drain(deadline time.Duration) {
	cutoff := time.Now().Add(deadline)
	for a.Pending() > 0 && time.Now().Before(cutoff) {
		time.Sleep(time.Millisecond)
	}
}
