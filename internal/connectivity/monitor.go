// Package connectivity tracks whether the server can reach its backends and
// provides the gate and fallback helpers every remote-facing service uses.
package connectivity

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// Status is a point-in-time connectivity reading.
type Status struct {
	Connected bool      `json:"connected"`
	Reachable bool      `json:"reachable"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Online reports whether both the link and the internet are available.
func (s Status) Online() bool {
	return s.Connected && s.Reachable
}

// Refresher re-fetches data that may have gone stale while offline.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefresherFunc adapts a function to Refresher.
type RefresherFunc func(ctx context.Context) error

func (f RefresherFunc) Refresh(ctx context.Context) error { return f(ctx) }

// Config controls how the monitor probes.
type Config struct {
	ProbeURL     string
	Interval     time.Duration
	ProbeTimeout time.Duration
}

// Monitor combines link connectivity and internet reachability into a single
// online signal. It starts out online so the first failed check registers as
// a transition.
type Monitor struct {
	cfg    Config
	logger *slog.Logger

	linkUp func() bool
	probe  func(ctx context.Context) bool

	mu         sync.RWMutex
	status     Status
	subs       map[int]func(Status)
	nextSubID  int
	refreshers []Refresher
}

// Option customizes a Monitor.
type Option func(*Monitor)

// WithLinkCheck replaces the interface-based link check.
func WithLinkCheck(fn func() bool) Option {
	return func(m *Monitor) { m.linkUp = fn }
}

// WithProbe replaces the HTTP reachability probe.
func WithProbe(fn func(ctx context.Context) bool) Option {
	return func(m *Monitor) { m.probe = fn }
}

// NewMonitor creates a monitor. Call Run to start polling.
func NewMonitor(cfg Config, logger *slog.Logger, opts ...Option) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Monitor{
		cfg:    cfg,
		logger: logger,
		status: Status{Connected: true, Reachable: true},
		subs:   make(map[int]func(Status)),
	}
	m.linkUp = interfacesUp
	client := &http.Client{Timeout: cfg.ProbeTimeout}
	m.probe = func(ctx context.Context) bool { return httpProbe(ctx, client, cfg.ProbeURL) }

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Online returns the last observed state.
func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Online()
}

// Status returns the last observed reading.
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Subscribe registers fn to be called on every online/offline transition.
// The returned function removes the subscription.
func (m *Monitor) Subscribe(fn func(Status)) func() {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// AddRefresher registers r to run whenever the monitor comes back online.
func (m *Monitor) AddRefresher(r Refresher) {
	m.mu.Lock()
	m.refreshers = append(m.refreshers, r)
	m.mu.Unlock()
}

// Check takes a fresh reading, records it, and notifies subscribers if the
// online state changed.
func (m *Monitor) Check(ctx context.Context) Status {
	s := Status{Connected: m.linkUp(), CheckedAt: time.Now()}
	if s.Connected {
		s.Reachable = m.probe(ctx)
	}

	m.mu.Lock()
	wasOnline := m.status.Online()
	m.status = s
	var subs []func(Status)
	var refreshers []Refresher
	if wasOnline != s.Online() {
		for _, fn := range m.subs {
			subs = append(subs, fn)
		}
		if s.Online() {
			refreshers = append(refreshers, m.refreshers...)
		}
	}
	m.mu.Unlock()

	if wasOnline == s.Online() {
		return s
	}

	m.logger.Info("connectivity changed",
		"online", s.Online(),
		"connected", s.Connected,
		"reachable", s.Reachable,
	)
	for _, fn := range subs {
		fn(s)
	}
	for _, r := range refreshers {
		if err := r.Refresh(ctx); err != nil {
			m.logger.Warn("refresh after reconnect failed", "error", err)
		}
	}
	return s
}

// Run checks immediately and then on every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	m.Check(ctx)

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// interfacesUp reports whether any non-loopback interface is up and has an
// address.
func interfacesUp() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err == nil && len(addrs) > 0 {
			return true
		}
	}
	return false
}

func httpProbe(ctx context.Context, client *http.Client, url string) bool {
	if url == "" {
		return true
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}
