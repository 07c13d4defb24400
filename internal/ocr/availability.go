package ocr

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Availability caches which engines are currently usable. The cache is
// replaced only by an explicit Probe; recognition never probes implicitly.
type Availability struct {
	engines []Engine
	timeout time.Duration
	logger  zerolog.Logger

	mu     sync.RWMutex
	status map[string]bool
}

// NewAvailability tracks the given engines. The map starts empty; callers
// probe once at startup.
func NewAvailability(engines []Engine, timeout time.Duration, logger zerolog.Logger) *Availability {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Availability{
		engines: engines,
		timeout: timeout,
		logger:  logger,
		status:  map[string]bool{},
	}
}

// Probe re-checks every engine and replaces the cached map. On-device
// engines are always available; a failing network check marks that engine
// unavailable rather than failing the probe.
func (a *Availability) Probe(ctx context.Context) map[string]bool {
	status := make(map[string]bool, len(a.engines))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, engine := range a.engines {
		if !engine.Network() {
			status[engine.ID()] = true
			continue
		}
		wg.Add(1)
		go func(engine Engine) {
			defer wg.Done()
			pingCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			err := engine.Ping(pingCtx)
			if err != nil {
				a.logger.Warn().Str("engine", engine.ID()).Err(err).Msg("engine unavailable")
			}
			mu.Lock()
			status[engine.ID()] = err == nil
			mu.Unlock()
		}(engine)
	}
	wg.Wait()

	a.mu.Lock()
	a.status = status
	a.mu.Unlock()

	return a.Snapshot()
}

// Snapshot returns a copy of the cached availability map
func (a *Availability) Snapshot() map[string]bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make(map[string]bool, len(a.status))
	for id, ok := range a.status {
		out[id] = ok
	}
	return out
}
