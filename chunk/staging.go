package chunk

import "github.com/joeycumines/go-dprtlib/access"

// Staging is a producer-local buffer for one worker's shard: the
// instrumentation callback appends to it directly, and it publishes
// itself to the owning Worker once it reaches chunkSize. Staging is not
// safe for concurrent use — ownership is exactly one producer (or, in
// pthread-compatibility mode, whichever single producer currently holds
// the process-wide instrumentation mutex).
type Staging struct {
	buf       []access.Record
	chunkSize int
	worker    *Worker
}

// NewStaging constructs a Staging publishing full chunks of chunkSize
// records to worker.
func NewStaging(chunkSize int, worker *Worker) *Staging {
	return &Staging{
		buf:       getBuffer(chunkSize),
		chunkSize: chunkSize,
		worker:    worker,
	}
}

// Append adds rec to the staging buffer, publishing and replacing the
// buffer with a fresh one if it has reached chunkSize.
func (s *Staging) Append(rec access.Record) {
	s.buf = append(s.buf, rec)
	if len(s.buf) >= s.chunkSize {
		s.publish()
	}
}

func (s *Staging) publish() {
	s.worker.Publish(&Chunk{Records: s.buf})
	s.buf = getBuffer(s.chunkSize)
}

// Flush publishes any partially-filled buffer. Called at finalize so no
// record is left stranded in a staging buffer that never reached
// chunkSize.
func (s *Staging) Flush() {
	if len(s.buf) > 0 {
		s.publish()
	}
}
