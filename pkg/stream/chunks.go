package stream

import (
	"io"
	"iter"
)

// DefaultChunkSize is the read size used against the network body.
const DefaultChunkSize = 32 * 1024

// Chunks reads r into a lazy sequence of byte chunks of at most size bytes.
// The sequence is finite and single-pass; r is not closed.
func Chunks(r io.Reader, size int) iter.Seq2[[]byte, error] {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return func(yield func([]byte, error) bool) {
		buf := make([]byte, size)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				if !yield(chunk, nil) {
					return
				}
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
		}
	}
}

// chunkReader adapts a pulled chunk sequence into an io.Reader so the inflate
// state can consume input incrementally. A source error is remembered so the
// decompressor can tell transport failures from corrupt compressed data.
type chunkReader struct {
	next   func() ([]byte, error, bool)
	buf    []byte
	srcErr error
}

func newChunkReader(chunks iter.Seq2[[]byte, error]) (*chunkReader, func()) {
	next, stop := iter.Pull2(chunks)
	return &chunkReader{next: next}, stop
}

func (r *chunkReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		chunk, err, ok := r.next()
		if !ok {
			return 0, io.EOF
		}
		if err != nil {
			r.srcErr = err
			return 0, err
		}
		r.buf = chunk
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}
