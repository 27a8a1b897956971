package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Probe checks one dependency. A nil error means healthy; detail is shown
// either way.
type Probe func(ctx context.Context) (detail string, err error)

type probe struct {
	name    string
	check   Probe
	timeout time.Duration
}

// Monitor runs the registered probes on demand and keeps the last result.
type Monitor struct {
	logger *zap.Logger

	mu     sync.RWMutex
	probes []probe
	status Status
}

func New(logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{logger: logger}
}

// Add registers a probe. Probes run in registration order.
func (m *Monitor) Add(name string, timeout time.Duration, check Probe) {
	if check == nil {
		return
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probes = append(m.probes, probe{name: name, check: check, timeout: timeout})
}

// Refresh runs every probe and stores the outcome.
func (m *Monitor) Refresh(ctx context.Context) Status {
	m.mu.RLock()
	probes := append([]probe(nil), m.probes...)
	m.mu.RUnlock()

	status := Status{Components: make([]ComponentStatus, 0, len(probes))}
	for _, p := range probes {
		status.Components = append(status.Components, m.run(ctx, p))
	}
	status.LastCheck = time.Now()

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
	return status
}

func (m *Monitor) IsOnline() bool {
	return m.GetStatus().Online()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) run(ctx context.Context, p probe) ComponentStatus {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	started := time.Now()
	detail, err := p.check(ctx)
	out := ComponentStatus{Name: p.name, Healthy: err == nil, Detail: detail, Elapsed: time.Since(started)}
	if err != nil {
		if out.Detail == "" {
			out.Detail = err.Error()
		}
		m.logger.Warn("component check failed", zap.String("component", p.name), zap.Error(err))
	}
	return out
}
