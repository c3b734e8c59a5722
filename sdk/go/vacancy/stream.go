package vacancy

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// ListStream is a lazy, finite, forward-only sequence of vacancies produced
// by a streamed listing call. Records are decoded one at a time as the
// server delivers them; the stream accumulates the byte size of every chunk
// it forwards.
//
// Exactly one CallEvent is reported per stream, on whichever terminal path
// occurs first: normal exhaustion, a mid-stream failure (the partial byte
// count is still reported), or an early Close.
type ListStream struct {
	name     string
	start    time.Time
	body     io.ReadCloser
	scanner  *bufio.Scanner
	reporter Reporter

	bytes   int64
	err     error
	done    bool
	emitted bool
}

func newListStream(name string, start time.Time, body io.ReadCloser, reporter Reporter) *ListStream {
	return &ListStream{
		name:     name,
		start:    start,
		body:     body,
		scanner:  bufio.NewScanner(body),
		reporter: reporter,
	}
}

// Next returns the next vacancy in the stream. It returns false when the
// stream is exhausted or has failed; check Err afterwards.
func (s *ListStream) Next() (Vacancy, bool) {
	if s.done {
		return Vacancy{}, false
	}

	if !s.scanner.Scan() {
		s.finish(s.scanner.Err())
		return Vacancy{}, false
	}

	line := s.scanner.Bytes()
	// The chunk counts even if it fails to decode: it was delivered.
	s.bytes += int64(len(line)) + 1 // newline delimiter

	var v Vacancy
	if err := json.Unmarshal(line, &v); err != nil {
		s.finish(fmt.Errorf("vacancy: decode stream record: %w", err))
		return Vacancy{}, false
	}
	return v, true
}

// Err returns the failure that terminated the stream, if any. Normal
// exhaustion and early Close leave it nil.
func (s *ListStream) Err() error {
	return s.err
}

// Close releases the stream. Closing before exhaustion still emits the
// single summary event, with the bytes accumulated so far. Safe to call
// multiple times and after exhaustion.
func (s *ListStream) Close() error {
	s.finish(nil)
	return nil
}

// finish records the terminal state and emits the summary event exactly once.
func (s *ListStream) finish(err error) {
	if s.done {
		return
	}
	s.done = true
	s.err = err
	_ = s.body.Close()

	if s.emitted {
		return
	}
	s.emitted = true
	s.reporter.Report(CallEvent{
		Name:     s.name,
		Duration: time.Since(s.start),
		Bytes:    s.bytes,
		Err:      err,
	})
}

// Collect drains the stream into a slice. The summary event is emitted as
// part of draining.
func (s *ListStream) Collect() ([]Vacancy, error) {
	var out []Vacancy
	for {
		v, ok := s.Next()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out, s.Err()
}
