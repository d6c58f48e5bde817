package chunk

import "github.com/joeycumines/go-dprtlib/access"

// Consumer processes one Access Record, in order, on behalf of a Worker.
// In the profiler engine this is an Analyzer's Analyze method.
type Consumer func(access.Record)

// Worker owns one chunk queue and drains it on its own goroutine,
// guaranteeing every chunk queued before shutdown is fully processed
// before the goroutine exits: no access is ever lost.
type Worker struct {
	queue   chan *Chunk
	done    chan struct{}
	consume Consumer
}

// NewWorker starts a Worker with the given bounded queue capacity
// (backpressure: Publish blocks once the queue is full, which should be
// a rare event under normal producer/consumer balance) and Consumer.
func NewWorker(queueCapacity int, consume Consumer) *Worker {
	w := &Worker{
		queue:   make(chan *Chunk, queueCapacity),
		done:    make(chan struct{}),
		consume: consume,
	}
	go w.run()
	return w
}

func (w *Worker) run() {
	defer close(w.done)
	for c := range w.queue {
		for _, rec := range c.Records {
			w.consume(rec)
		}
		putBuffer(c.Records)
	}
}

// Publish enqueues a full chunk for draining. It blocks if the worker's
// queue is at capacity.
func (w *Worker) Publish(c *Chunk) {
	w.queue <- c
}

// Finish signals no further chunks will be published, then blocks until
// the worker has drained everything already queued.
func (w *Worker) Finish() {
	close(w.queue)
	<-w.done
}
