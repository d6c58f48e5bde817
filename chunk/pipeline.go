package chunk

import (
	"golang.org/x/sync/errgroup"

	"github.com/joeycumines/go-dprtlib/access"
)

// Pipeline is the chunked, address-hash-sharded producer/consumer
// pipeline: one Staging and one Worker per shard. Submit routes a record
// to its shard deterministically, so all accesses to a given address are
// totally ordered through a single worker.
type Pipeline struct {
	stagings   []*Staging
	workers    []*Worker
	numWorkers int
}

// ConsumerFactory builds the Consumer for shard workerID (typically an
// Analyzer bound to that shard's own Shadow Memory instance).
type ConsumerFactory func(workerID int) Consumer

// Engine is the contract both Pipeline and InlinePipeline satisfy, so the
// lifecycle controller can hold one without caring which mode NumWorkers
// selected.
type Engine interface {
	Submit(access.Record)
	Finish() error
}

var (
	_ Engine = (*Pipeline)(nil)
	_ Engine = (*InlinePipeline)(nil)
)

// NewPipeline constructs a Pipeline with numWorkers shards, chunks of
// chunkSize records, and a bounded per-worker queue of queueCapacity
// chunks. numWorkers must be positive; for the NumWorkers==0 inline mode
// use NewInlinePipeline instead.
func NewPipeline(numWorkers, chunkSize, queueCapacity int, newConsumer ConsumerFactory) *Pipeline {
	if numWorkers <= 0 {
		panic(`chunk: NewPipeline requires numWorkers > 0`)
	}
	p := &Pipeline{numWorkers: numWorkers}
	for i := 0; i < numWorkers; i++ {
		w := NewWorker(queueCapacity, newConsumer(i))
		p.workers = append(p.workers, w)
		p.stagings = append(p.stagings, NewStaging(chunkSize, w))
	}
	return p
}

// Submit routes rec to its address-hashed shard's staging buffer.
func (p *Pipeline) Submit(rec access.Record) {
	wid := access.WorkerID(rec.Addr, p.numWorkers)
	rec.WorkerHint = wid
	p.stagings[wid].Append(rec)
}

// Finish flushes every staging buffer, signals every worker to drain and
// stop, and waits for all of them. Workers are joined with
// golang.org/x/sync/errgroup rather than a hand-rolled sync.WaitGroup.
func (p *Pipeline) Finish() error {
	for _, s := range p.stagings {
		s.Flush()
	}
	var g errgroup.Group
	for _, w := range p.workers {
		w := w
		g.Go(func() error {
			w.Finish()
			return nil
		})
	}
	return g.Wait()
}

// NumWorkers returns the shard count the Pipeline was constructed with.
func (p *Pipeline) NumWorkers() int { return p.numWorkers }

// InlinePipeline is the NumWorkers==0 mode: no queues are allocated, and
// each Submit call analyzes its record synchronously on the producer's
// own goroutine.
type InlinePipeline struct {
	consume Consumer
}

// NewInlinePipeline constructs an InlinePipeline calling consume directly
// for every submitted record.
func NewInlinePipeline(consume Consumer) *InlinePipeline {
	return &InlinePipeline{consume: consume}
}

// Submit analyzes rec inline.
func (p *InlinePipeline) Submit(rec access.Record) {
	p.consume(rec)
}

// Finish is a no-op: there is nothing to drain or join in inline mode.
func (p *InlinePipeline) Finish() error { return nil }
