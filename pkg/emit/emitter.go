// Package emit is the hand-off boundary to the downstream ingestion
// framework: an ordered sequence of stream-tagged records.
package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"assocfeed/pkg/models"
)

// Emitter receives normalized records. Ownership of a record transfers on
// Emit; emitters must not be shared across concurrent syncs.
type Emitter interface {
	Emit(stream string, record models.Record) error
	Close() error
}

// envelope is the NDJSON wire shape written per record.
type envelope struct {
	Stream string        `json:"stream"`
	Record models.Record `json:"record"`
}

// WriterEmitter writes records as newline-delimited JSON envelopes.
type WriterEmitter struct {
	mu     sync.Mutex
	enc    *json.Encoder
	closer io.Closer
	counts map[string]int
}

// NewWriterEmitter writes NDJSON to w. If w is also an io.Closer it is closed
// by Close.
func NewWriterEmitter(w io.Writer) *WriterEmitter {
	e := &WriterEmitter{
		enc:    json.NewEncoder(w),
		counts: make(map[string]int),
	}
	if c, ok := w.(io.Closer); ok {
		e.closer = c
	}
	return e
}

// Emit writes one record envelope.
func (e *WriterEmitter) Emit(stream string, record models.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.enc.Encode(envelope{Stream: stream, Record: record}); err != nil {
		return fmt.Errorf("failed to emit record for %s: %w", stream, err)
	}
	e.counts[stream]++
	return nil
}

// Counts returns the number of records emitted per stream.
func (e *WriterEmitter) Counts() map[string]int {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[string]int, len(e.counts))
	for k, v := range e.counts {
		out[k] = v
	}
	return out
}

// Close releases the underlying writer if it is closeable.
func (e *WriterEmitter) Close() error {
	if e.closer != nil {
		return e.closer.Close()
	}
	return nil
}
