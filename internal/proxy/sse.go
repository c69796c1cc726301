package proxy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// SSEWriter writes Server-Sent Events and flushes after every event.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

// NewSSEWriter fails when w cannot flush, since events would be buffered.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("response writer does not support flushing")
	}
	return &SSEWriter{w: w, flusher: flusher}, nil
}

// start sends the event-stream headers once.
func (s *SSEWriter) start() {
	if s.started {
		return
	}
	s.started = true

	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	// Disable response buffering in nginx-style reverse proxies
	h.Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
}

// WriteData writes v as one JSON data event.
func (s *SSEWriter) WriteData(v any) error {
	return s.WriteEvent("", v)
}

// WriteEvent writes v as one JSON data event with the given event name. An empty
// name omits the event field.
func (s *SSEWriter) WriteEvent(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	var buf bytes.Buffer
	if name != "" {
		buf.WriteString("event: ")
		buf.WriteString(name)
		buf.WriteByte('\n')
	}
	// Marshaled JSON never contains raw newlines, so one data line suffices
	buf.WriteString("data: ")
	buf.Write(data)
	buf.WriteString("\n\n")

	s.start()
	if _, err := s.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	s.flusher.Flush()
	return nil
}
