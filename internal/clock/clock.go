// Package clock drives the simulation's discrete periods: a single
// period-boundary signal fanned out to every registered pricing behaviour.
package clock

import (
	"log/slog"
	"sync"
	"time"

	tomb "gopkg.in/tomb.v2"
)

// Advancer is anything with per-period state to roll over. Satisfied by
// *pricing.Behaviour.
type Advancer interface {
	AdvancePeriod()
}

// Clock ticks once per configured period interval and advances all
// registered advancers. Advancers are independent, so each boundary runs
// them in parallel and joins before the next period can begin.
type Clock struct {
	interval time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	advancers []Advancer
	period    uint64

	t tomb.Tomb
}

// New creates a stopped Clock with the given period interval.
func New(interval time.Duration, logger *slog.Logger) *Clock {
	return &Clock{
		interval: interval,
		logger:   logger,
	}
}

// Register adds an advancer to be driven at every period boundary. Safe to
// call while the clock is running; the advancer joins at the next boundary.
func (c *Clock) Register(a Advancer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advancers = append(c.advancers, a)
}

// Period returns the number of completed periods.
func (c *Clock) Period() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.period
}

// Start launches the period loop. Use Stop to halt it.
func (c *Clock) Start() {
	c.t.Go(c.run)
}

// Stop halts the period loop and waits for it to exit.
func (c *Clock) Stop() error {
	c.t.Kill(nil)
	return c.t.Wait()
}

func (c *Clock) run() error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.t.Dying():
			return nil
		case <-ticker.C:
			c.AdvanceAll()
		}
	}
}

// AdvanceAll signals one period boundary: every registered advancer rolls
// its window over, in parallel, and AdvanceAll returns once all are done.
func (c *Clock) AdvanceAll() {
	c.mu.Lock()
	advancers := make([]Advancer, len(c.advancers))
	copy(advancers, c.advancers)
	c.period++
	period := c.period
	c.mu.Unlock()

	var wg sync.WaitGroup
	for _, a := range advancers {
		wg.Add(1)
		go func(a Advancer) {
			defer wg.Done()
			a.AdvancePeriod()
		}(a)
	}
	wg.Wait()

	c.logger.Debug("period advanced",
		slog.Uint64("period", period),
		slog.Int("behaviours", len(advancers)),
	)
}
