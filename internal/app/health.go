package app

import (
	"log/slog"
	"sync/atomic"

	"github.com/florianilch/genaibridge/internal/proxy"
)

// Health is the readiness state served by /health/readiness. The zero value and
// NewHealth both start not ready. Safe for concurrent use.
type Health struct {
	ready atomic.Bool
}

var _ proxy.ReadinessChecker = (*Health)(nil)

// NewHealth creates a Health that is not ready.
func NewHealth() *Health {
	return &Health{}
}

// SetReady updates readiness and logs transitions.
func (h *Health) SetReady(ready bool) {
	if h.ready.Swap(ready) != ready {
		slog.Debug("readiness changed", "ready", ready)
	}
}

// IsReady implements proxy.ReadinessChecker.
func (h *Health) IsReady() bool {
	return h.ready.Load()
}
