package events_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dagchain/corenode/events"
)

func TestActorHandlesEventsFIFO(t *testing.T) {
	var mu sync.Mutex
	var seen []int

	a := events.NewActor("test", 8, func(_ context.Context, ev interface{}) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, ev.(int))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	for i := 0; i < 5; i++ {
		a.Send(ctx, i, time.Second)
	}
	a.Drain(time.Second)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, seen)
}

func TestActorDropsPastDeadlineWhenMailboxFull(t *testing.T) {
	block := make(chan struct{})
	a := events.NewActor("blocked", 1, func(_ context.Context, _ interface{}) {
		<-block // first event never completes, so the next event stays in the single mailbox slot
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	a.Send(ctx, "first", time.Second)
	time.Sleep(10 * time.Millisecond) // let the actor pick up "first" and start blocking

	a.Send(ctx, "second", time.Second)
	done := make(chan struct{})
	go func() {
		a.Send(ctx, "third", 20*time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send did not return after its deadline elapsed")
	}
	close(block)
}

func TestWorkerPoolRunsAllJobs(t *testing.T) {
	p := events.NewWorkerPool(4, 16)
	var mu sync.Mutex
	count := 0

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		p.Submit(func() {
			defer wg.Done()
			mu.Lock()
			count++
			mu.Unlock()
		})
	}
	wg.Wait()
	p.Close()

	assert.Equal(t, 20, count)
}
