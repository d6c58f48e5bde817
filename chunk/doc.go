// Package chunk implements the chunked producer/consumer pipeline that
// shards instrumented memory accesses across analysis workers: a
// producer-local staging buffer per worker, published as a fixed-size
// Chunk once full, and drained in FIFO order by that worker's own
// goroutine.
//
// The actor-style run loop (a goroutine ranging over a channel until
// it's closed, guaranteeing every already-queued item is processed
// before the goroutine exits) is adapted from the ping/pong channel
// actor in github.com/joeycumines/go-microbatch's Batcher.run: a Go
// channel already behaves like the mutex + condition variable the
// original runtime uses explicitly, so there is no separate lock/cond
// to model here.
package chunk
