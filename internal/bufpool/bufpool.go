// Package bufpool pools scratch buffers used to encode outbound RESP
// commands, so a busy client does not allocate a fresh buffer per call.
package bufpool

import (
	"bytes"
	"sync"
)

var pool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// Get returns an empty buffer from the pool.
func Get() *bytes.Buffer {
	return pool.Get().(*bytes.Buffer)
}

// Put resets b and returns it to the pool. Callers must not retain b or
// anything derived from its backing array after calling Put.
func Put(b *bytes.Buffer) {
	b.Reset()
	pool.Put(b)
}
