package co

import "sync"

// Goes manages a group of goroutines as a unit, the way the teacher's
// cmd/thor/solo package launches its packer loop: `goes.Go(func(){...})`
// followed by `goes.Wait()` on shutdown.
type Goes struct {
	wg sync.WaitGroup
}

// Go starts f in a new goroutine tracked by this Goes.
func (g *Goes) Go(f func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		f()
	}()
}

// Wait blocks until every goroutine started via Go has returned.
func (g *Goes) Wait() {
	g.wg.Wait()
}
