package stream

import (
	"iter"
	"strings"
)

// Lines reassembles a sequence of byte chunks, which does not respect line
// boundaries, into a sequence of complete lines. A partial trailing fragment
// is carried across chunk boundaries and emitted at stream end if non-empty.
func Lines(chunks iter.Seq2[[]byte, error]) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		var pending []byte
		for chunk, err := range chunks {
			if err != nil {
				yield("", err)
				return
			}
			if len(chunk) == 0 {
				continue
			}

			buf := make([]byte, 0, len(pending)+len(chunk))
			buf = append(append(buf, pending...), chunk...)
			pending = nil

			parts := splitLines(buf)
			if len(parts) > 0 {
				// The last split element is an unterminated fragment exactly
				// when its final byte is still the chunk's final byte.
				last := parts[len(parts)-1]
				if last != "" && last[len(last)-1] == chunk[len(chunk)-1] {
					pending = []byte(last)
					parts = parts[:len(parts)-1]
				}
			}

			for _, line := range parts {
				if !yield(line, nil) {
					return
				}
			}
		}

		if len(pending) > 0 {
			yield(string(pending), nil)
		}
	}
}

// splitLines splits on newline boundaries, dropping the empty trailing
// element a terminating newline would otherwise produce.
func splitLines(buf []byte) []string {
	parts := strings.Split(string(buf), "\n")
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}
