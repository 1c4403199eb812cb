// Package reminder fires the daily "registra tu día" closing reminder: at
// most once per calendar day, while the wall clock sits inside a short
// trigger window, without any server-side cron.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Default copy shown to users, kept from the product's original wording.
const (
	DefaultTitle = "🔔 Recordatorio: Registra tu día"
	DefaultBody  = "Son las 4 PM. No olvides registrar todas las ventas, gastos y producción de hoy."
)

// GuardStore persists the per-day dedup flag. Acquire returns true only for
// the first caller of a given key; later callers the same day get false.
type GuardStore interface {
	Acquire(ctx context.Context, key string, now time.Time) (bool, error)
}

// Notifier performs the reminder side effect (notification fan-out).
type Notifier interface {
	Notify(ctx context.Context) error
}

// Config sets the trigger window: the reminder may fire while
// hour == Hour and minute <= WindowMinutes, checked every Interval.
type Config struct {
	Hour          int
	WindowMinutes int
	Interval      time.Duration
}

// Scheduler evaluates the reminder condition once at Start and then on a
// fixed interval. The clock is a field so tests can simulate arbitrary
// dates and times; window check and guard-key date always come from the
// same clock reading.
type Scheduler struct {
	cfg      Config
	guards   GuardStore
	notifier Notifier
	clock    func() time.Time

	quit     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewScheduler(cfg Config, guards GuardStore, notifier Notifier) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	return &Scheduler{
		cfg:      cfg,
		guards:   guards,
		notifier: notifier,
		clock:    time.Now,
		quit:     make(chan struct{}),
	}
}

// Start evaluates once immediately, then once per tick until Stop is called
// or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.Check(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Check(ctx)
			case <-ctx.Done():
				return
			case <-s.quit:
				return
			}
		}
	}()
}

// Stop terminates the tick loop and waits for it to exit. Safe to call twice.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
	s.wg.Wait()
}

// Check runs one evaluation of the reminder condition.
func (s *Scheduler) Check(ctx context.Context) {
	now := s.clock()
	if now.Hour() != s.cfg.Hour || now.Minute() > s.cfg.WindowMinutes {
		return
	}
	key := GuardKey(now)
	won, err := s.guards.Acquire(ctx, key, now)
	if err != nil {
		slog.Error("reminder: acquire guard", "key", key, "err", err)
		return
	}
	if !won {
		return
	}
	if err := s.notifier.Notify(ctx); err != nil {
		slog.Error("reminder: notify", "key", key, "err", err)
	}
}

// GuardKey is the per-day dedup key for a clock reading.
func GuardKey(now time.Time) string {
	return fmt.Sprintf("closing_reminder_%s", now.Format("2006-01-02"))
}
