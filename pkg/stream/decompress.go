package stream

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/klauspost/compress/gzip"

	errs "assocfeed/pkg/errors"
)

// Decompress inflates a sequence of raw gzip-compressed chunks into a
// sequence of decompressed chunks. Input is consumed incrementally as the
// downstream pulls; buffered output is drained after input exhaustion.
// Malformed or truncated compressed data is a decode error, fatal for the
// file being processed.
func Decompress(chunks iter.Seq2[[]byte, error]) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		src, stop := newChunkReader(chunks)
		defer stop()

		zr, err := gzip.NewReader(src)
		if err != nil {
			yield(nil, classifyInflateError(src, err))
			return
		}
		defer zr.Close()

		buf := make([]byte, DefaultChunkSize)
		for {
			n, err := zr.Read(buf)
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
				yield(nil, classifyInflateError(src, err))
				return
			}
		}
	}
}

// classifyInflateError keeps transport errors intact and wraps everything
// else as a decode failure of the compressed payload.
func classifyInflateError(src *chunkReader, err error) error {
	if src.srcErr != nil && errors.Is(err, src.srcErr) {
		return err
	}
	return &errs.Error{
		Type:    errs.ErrorTypeDecode,
		Message: fmt.Sprintf("malformed gzip stream: %v", err),
	}
}
