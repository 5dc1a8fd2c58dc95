// Package logbuf keeps the most recent log records in memory so the API
// can expose them for in-app diagnostics.
package logbuf

import (
	"context"
	"log/slog"
	"sync"
)

// Capacity is how many records the ring retains.
const Capacity = 100

// Record is one buffered log entry in API shape.
type Record struct {
	Level   string `json:"level"`
	Time    string `json:"time"`
	Logger  string `json:"logger"`
	Message string `json:"message"`
}

type ring struct {
	mu      sync.Mutex
	records [Capacity]Record
	start   int
	count   int
}

func (rg *ring) add(rec Record) {
	rg.mu.Lock()
	pos := (rg.start + rg.count) % Capacity
	rg.records[pos] = rec
	if rg.count < Capacity {
		rg.count++
	} else {
		rg.start = (rg.start + 1) % Capacity
	}
	rg.mu.Unlock()
}

func (rg *ring) snapshot() []Record {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	out := make([]Record, 0, rg.count)
	for i := 0; i < rg.count; i++ {
		out = append(out, rg.records[(rg.start+i)%Capacity])
	}
	return out
}

// Handler tees records into a bounded in-memory ring while forwarding
// them to the wrapped handler. Derived handlers from WithAttrs and
// WithGroup share the same ring.
type Handler struct {
	next   slog.Handler
	ring   *ring
	logger string
}

// NewHandler wraps next with a Capacity-record ring buffer.
func NewHandler(next slog.Handler) *Handler {
	return &Handler{next: next, ring: &ring{}}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	logger := h.logger
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "logger" {
			logger = a.Value.String()
			return false
		}
		return true
	})
	h.ring.add(Record{
		Level:   r.Level.String(),
		Time:    r.Time.Format("2006-01-02T15:04:05.999999999"),
		Logger:  logger,
		Message: r.Message,
	})
	return h.next.Handle(ctx, r)
}

// WithAttrs remembers a "logger" attr so records logged through a derived
// handler still carry their component tag; pre-bound attrs never reach
// Handle via the record itself.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	d := &Handler{next: h.next.WithAttrs(attrs), ring: h.ring, logger: h.logger}
	for _, a := range attrs {
		if a.Key == "logger" {
			d.logger = a.Value.String()
		}
	}
	return d
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{next: h.next.WithGroup(name), ring: h.ring, logger: h.logger}
}

// Recent returns the buffered records oldest first.
func (h *Handler) Recent() []Record {
	return h.ring.snapshot()
}
