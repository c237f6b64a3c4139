package sandbox

import (
	"errors"
	"io"
	"sync"
	"unicode/utf8"
)

const truncatedMarker = "\n[output truncated]\n"

var errSinkReleased = errors.New("output sink released")

// sink scopes a caller-owned writer to a single run and enforces the
// capture limit. Writes after release fail.
type sink struct {
	mu        sync.Mutex
	w         io.Writer
	limit     int
	written   int
	truncated bool
}

func newSink(w io.Writer, limit int) *sink {
	return &sink{w: w, limit: limit}
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.w == nil {
		return 0, errSinkReleased
	}
	if s.truncated {
		return len(p), nil
	}

	if s.limit > 0 && s.written+len(p) > s.limit {
		room := s.limit - s.written
		for room > 0 && !utf8.RuneStart(p[room]) {
			room--
		}
		if room > 0 {
			n, err := s.w.Write(p[:room])
			s.written += n
			if err != nil {
				return n, err
			}
		}
		s.truncated = true
		return len(p), nil
	}

	n, err := s.w.Write(p)
	s.written += n
	return n, err
}

// release detaches the writer and reports whether output was cut
func (s *sink) release() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.w = nil
	return s.truncated
}
