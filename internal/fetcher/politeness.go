package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
)

// hostGate enforces the minimum inter-request interval per host. The
// interval is measured from the wall-clock completion of the previous
// request, regardless of its outcome, so retries and failures still count
// toward politeness.
type hostGate struct {
	interval time.Duration

	mu    sync.Mutex
	gates map[string]*gate
}

type gate struct {
	mu            sync.Mutex
	lastCompleted time.Time
}

func newHostGate(interval time.Duration) *hostGate {
	return &hostGate{
		interval: interval,
		gates:    make(map[string]*gate),
	}
}

// Wait blocks until the host's interval since the last completed request
// has elapsed, respecting the context. Holding the per-host gate lock for
// the duration of the wait serializes requests to the same host.
func (h *hostGate) Wait(ctx context.Context, rawURL string) (release func(), err error) {
	g := h.gateFor(rawURL)
	g.mu.Lock()

	delay := time.Until(g.lastCompleted.Add(h.interval))
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			g.mu.Unlock()
			return nil, fmt.Errorf("politeness wait canceled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return func() {
		g.lastCompleted = time.Now()
		g.mu.Unlock()
	}, nil
}

func (h *hostGate) gateFor(rawURL string) *gate {
	host := "unknown"
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		host = strings.ToLower(u.Hostname())
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	g, ok := h.gates[host]
	if !ok {
		g = &gate{}
		h.gates[host] = g
	}
	return g
}
