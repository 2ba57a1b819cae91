package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Probe is the health surface of the active gateway.
type Probe interface {
	Ping(ctx context.Context) error
}

// Described gateways report their backend name and whether they run degraded.
type Described interface {
	Backend() string
	Degraded() bool
}

// Monitor pings the gateway on a cron schedule and caches the last result.
type Monitor struct {
	probe    Probe
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
	cron     *cron.Cron

	mu     sync.RWMutex
	status Status
}

// New builds a monitor. Nothing runs until Start.
func New(probe Probe, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval < time.Second {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Monitor{
		probe:    probe,
		interval: interval,
		timeout:  3 * time.Second,
		logger:   logger,
		cron:     cron.New(cron.WithSeconds()),
	}
	if d, ok := probe.(Described); ok {
		m.status.Backend = d.Backend()
	}

	schedule := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	_, _ = m.cron.AddFunc(schedule, func() {
		m.Refresh(context.Background())
	})
	return m
}

// Start probes once and then on every tick.
func (m *Monitor) Start() {
	m.Refresh(context.Background())
	m.cron.Start()
	m.logger.Info("connection monitor started", zap.Duration("interval", m.interval))
}

// Stop ends the schedule, waiting for a running probe or ctx.
func (m *Monitor) Stop(ctx context.Context) {
	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	m.logger.Info("connection monitor stopped")
}

// Refresh probes the gateway now.
func (m *Monitor) Refresh(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	status := Status{LastCheck: time.Now().UTC()}
	if d, ok := m.probe.(Described); ok {
		status.Backend = d.Backend()
		status.Fallback = d.Degraded()
	}
	if m.probe == nil {
		status.LastError = "no gateway configured"
	} else if err := m.probe.Ping(ctx); err != nil {
		status.LastError = err.Error()
	} else {
		status.Online = true
	}

	m.mu.Lock()
	prev := m.status
	m.status = status
	m.mu.Unlock()

	if prev.Online && !status.Online {
		m.logger.Warn("gateway went offline", zap.String("backend", status.Backend), zap.String("error", status.LastError))
	} else if !prev.Online && status.Online && !prev.LastCheck.IsZero() {
		m.logger.Info("gateway back online", zap.String("backend", status.Backend))
	}
	return status
}

// IsOnline reports the last probe result.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Online
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}
