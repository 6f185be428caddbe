// Package stream implements the pull-based pipeline that turns a compressed
// report download into normalized rows without buffering the whole payload.
//
// Every stage is an iter.Seq2 producing values lazily in a single pass:
//
//	chunks := stream.Chunks(body, 32*1024)
//	rows := stream.ParseRows(stream.Lines(stream.Decompress(chunks)), stream.FormatKey)
//
// Sequences are not restartable; each report file gets a fresh pipeline with
// its own inflate state, pending-line buffer and captured header.
package stream
