package chunk

import (
	"sync"

	"github.com/joeycumines/go-dprtlib/access"
)

// Chunk is a fixed-capacity ordered sequence of Access Records, the unit
// of producer-consumer transfer. Created by a producer's staging buffer,
// owned by the consuming worker after it is published.
type Chunk struct {
	Records []access.Record
}

// recordPool recycles the backing arrays of consumed chunks, the same
// pooling idiom the catrate package uses for its categoryData values
// (sync.Pool keyed by a fixed allocation shape, Put back once the
// consumer is done with it).
var recordPool = sync.Pool{
	New: func() any {
		return new([]access.Record)
	},
}

// getBuffer returns a zero-length slice with at least capacity cap,
// reusing a pooled backing array when one of sufficient capacity is
// available.
func getBuffer(capacity int) []access.Record {
	p := recordPool.Get().(*[]access.Record)
	buf := *p
	if cap(buf) < capacity {
		buf = make([]access.Record, 0, capacity)
	}
	return buf[:0]
}

// putBuffer returns a consumed chunk's backing array to the pool.
func putBuffer(buf []access.Record) {
	recordPool.Put(&buf)
}
