// Package health serves Kubernetes-style liveness and readiness probes.
//
// Every check runs on its own ticker. A check flips to unhealthy after
// FailureThreshold consecutive failures and back after SuccessThreshold
// consecutive passes, so a single slow ping does not pull the API out of the
// load balancer.
package health

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
)

// Default thresholds applied by AddLivenessCheck and AddReadinessCheck.
const (
	FailureThreshold = 3
	SuccessThreshold = 1
)

// notReady is the failure key reported while the service is marked not
// ready.
const notReady = "_readiness"

// CheckFunc returns nil when the checked component is healthy.
type CheckFunc func(ctx context.Context) error

// check is one registered probe check. Its counters are owned by the
// goroutine calling run; the outcome is published under mu for handlers.
type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc
	failAt  int
	passAt  int

	fails  int
	passes int

	mu      sync.RWMutex
	healthy bool
	lastErr error
}

func newCheck(name string, timeout time.Duration, fn CheckFunc) *check {
	// Healthy until proven otherwise.
	return &check{
		name:    name,
		timeout: timeout,
		fn:      fn,
		failAt:  FailureThreshold,
		passAt:  SuccessThreshold,
		healthy: true,
	}
}

// run executes the check once. It must not be called concurrently for the
// same check.
func (c *check) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.fn(ctx)
	if err != nil {
		c.passes, c.fails = 0, c.fails+1
	} else {
		c.fails, c.passes = 0, c.passes+1
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
	switch {
	case err != nil && c.fails >= c.failAt:
		c.healthy = false
	case err == nil && c.passes >= c.passAt:
		c.healthy = true
	}
}

// failure returns the reason the check is unhealthy, or "" when it is
// healthy.
func (c *check) failure() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.healthy {
		return ""
	}
	if c.lastErr != nil {
		return c.lastErr.Error()
	}
	return "check is unhealthy"
}

// probe is an ordered group of checks answering one endpoint.
type probe struct {
	mu     sync.RWMutex
	checks []*check
}

func (p *probe) add(c *check) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checks = append(p.checks, c)
}

func (p *probe) snapshot() []*check {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.checks)
}

// failures maps the name of every unhealthy check to its reason.
func (p *probe) failures() map[string]string {
	out := make(map[string]string)
	for _, c := range p.snapshot() {
		if reason := c.failure(); reason != "" {
			out[c.name] = reason
		}
	}
	return out
}

// Health owns the liveness and readiness probes of a service.
type Health struct {
	ready atomic.Bool
	live  probe
	rdy   probe

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New returns a Health that reports not ready until SetReady(true).
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a check for /livez: whether the process should
// be restarted.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.live.add(newCheck(name, timeout, fn))
}

// AddReadinessCheck registers a check for /readyz: whether the process can
// serve traffic, typically store connectivity.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.rdy.add(newCheck(name, timeout, fn))
}

// Start runs every registered check immediately and then every interval
// until Stop is called or ctx is done. Register checks before Start.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	h.mu.Unlock()

	for _, c := range append(h.live.snapshot(), h.rdy.snapshot()...) {
		go loop(ctx, c, interval)
	}
}

func loop(ctx context.Context, c *check, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.run(ctx)
		}
	}
}

// Stop cancels the check goroutines. It is safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady marks the service ready after startup, or not ready when
// graceful shutdown begins.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the service is marked ready and every readiness
// check passes.
func (h *Health) IsReady() bool {
	return h.ready.Load() && len(h.rdy.failures()) == 0
}

// LiveEndpoint serves /livez: 200 {"status":"ok"} or 503 with the failing
// checks.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeResponse(w, h.live.failures())
}

// ReadyEndpoint serves /readyz. It also fails while the service is marked
// not ready.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	failures := h.rdy.failures()
	if !h.ready.Load() {
		failures[notReady] = "service is not ready"
	}
	writeResponse(w, failures)
}

func writeResponse(w http.ResponseWriter, failures map[string]string) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	status := http.StatusOK
	e.Obj(func(e *jx.Encoder) {
		if len(failures) == 0 {
			e.Field("status", func(e *jx.Encoder) { e.Str("ok") })
			return
		}
		status = http.StatusServiceUnavailable
		e.Field("status", func(e *jx.Encoder) { e.Str("unhealthy") })
		e.Field("checks", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				names := make([]string, 0, len(failures))
				for name := range failures {
					names = append(names, name)
				}
				slices.Sort(names)
				for _, name := range names {
					e.Field(name, func(e *jx.Encoder) { e.Str(failures[name]) })
				}
			})
		})
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status is already sent; a write error means the client left.
	_, _ = w.Write(e.Bytes())
}
