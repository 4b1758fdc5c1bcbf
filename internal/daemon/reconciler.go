package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/gridzones/internal/config"
	"github.com/1broseidon/gridzones/internal/engine"
	"github.com/1broseidon/gridzones/internal/platform"
)

// prune at most once per hour regardless of the reconcile interval
const pruneInterval = time.Hour

// Reconciler periodically repairs drift between the engine's view and the
// real window population: vanished windows, inconsistent registry state, and
// screen changes that arrived without a RandR event. It also ages out stale
// position memory.
type Reconciler struct {
	eng      *engine.Engine
	sched    platform.Scheduler
	interval time.Duration
	maxAge   time.Duration // 0 = keep position memory forever
	log      *slog.Logger

	lastPrune time.Time
}

// NewReconciler builds a reconciler from the daemon configuration. The
// interval is fixed for the daemon lifetime.
func NewReconciler(eng *engine.Engine, sched platform.Scheduler, cfg *config.Config, log *slog.Logger) *Reconciler {
	interval := time.Duration(cfg.ReconcileIntervalMS) * time.Millisecond
	if interval <= 0 {
		interval = 2 * time.Second
	}
	var maxAge time.Duration
	if cfg.PositionMemory.Enabled && cfg.PositionMemory.MaxAgeDays > 0 {
		maxAge = time.Duration(cfg.PositionMemory.MaxAgeDays) * 24 * time.Hour
	}
	if sched == nil {
		sched = platform.NewTimerScheduler()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{
		eng:      eng,
		sched:    sched,
		interval: interval,
		maxAge:   maxAge,
		log:      log,
	}
}

// Run starts the periodic reconciliation loop. Blocks until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	r.log.Info("reconciler started", "interval", r.interval)

	h := r.sched.Every(r.interval, r.reconcile)
	<-ctx.Done()
	h.Cancel()
	r.log.Info("reconciler stopped")
}

// ReconcileNow triggers an immediate reconciliation pass, outside the ticker.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}

// reconcile performs a single pass. A panic here must not kill the daemon.
func (r *Reconciler) reconcile() {
	defer func() {
		if err := recover(); err != nil {
			r.log.Error("reconciler panic recovered", "error", err)
		}
	}()

	r.eng.Reconcile()
	r.pruneMemory()
}

func (r *Reconciler) pruneMemory() {
	if r.maxAge <= 0 || time.Since(r.lastPrune) < pruneInterval {
		return
	}
	r.lastPrune = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	n, err := r.eng.PruneMemory(ctx, r.maxAge)
	if err != nil {
		r.log.Warn("position memory prune failed", "error", err)
		return
	}
	if n > 0 {
		r.log.Info("pruned stale position memory", "entries", n)
	}
}
