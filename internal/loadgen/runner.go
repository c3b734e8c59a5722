package loadgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hirelab/vacancyload/sdk/go/vacancy"
)

// RunnerConfig holds the knobs for a load run.
type RunnerConfig struct {
	// Workers is the number of concurrent virtual users.
	Workers int

	// Pacing is the interval between consecutive iterations of one worker.
	Pacing time.Duration

	// CallTimeout bounds a single behavior iteration. Zero means no bound
	// beyond the run context.
	CallTimeout time.Duration
}

// Runner fans a set of behaviors out over a pool of paced workers sharing
// one instrumented client.
type Runner struct {
	cfg       RunnerConfig
	client    *vacancy.Client
	behaviors []Behavior
	logger    *slog.Logger
}

// NewRunner creates a Runner. Workers are assigned behaviors round-robin.
func NewRunner(cfg RunnerConfig, client *vacancy.Client, behaviors []Behavior, logger *slog.Logger) (*Runner, error) {
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("loadgen: workers must be at least 1, got %d", cfg.Workers)
	}
	if cfg.Pacing <= 0 {
		return nil, fmt.Errorf("loadgen: pacing must be positive, got %s", cfg.Pacing)
	}
	if len(behaviors) == 0 {
		return nil, errors.New("loadgen: at least one behavior is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, client: client, behaviors: behaviors, logger: logger}, nil
}

// Run signs in once, then drives all workers until ctx is cancelled.
// Behavior failures are logged and counted, never fatal.
func (r *Runner) Run(ctx context.Context) error {
	if _, err := r.client.SignIn(ctx); err != nil {
		return fmt.Errorf("loadgen: sign in: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := range r.cfg.Workers {
		behavior := r.behaviors[i%len(r.behaviors)]
		worker := &worker{
			id:          i,
			behavior:    behavior,
			client:      r.client,
			pacing:      r.cfg.Pacing,
			callTimeout: r.cfg.CallTimeout,
			logger:      r.logger.With("worker", i, "behavior", behavior.Name()),
		}
		g.Go(func() error {
			worker.loop(ctx)
			return nil
		})
	}
	return g.Wait()
}

// worker repeats one behavior at a constant pace.
type worker struct {
	id          int
	behavior    Behavior
	client      *vacancy.Client
	pacing      time.Duration
	callTimeout time.Duration
	logger      *slog.Logger
}

func (w *worker) loop(ctx context.Context) {
	// First iteration fires immediately; the ticker paces the rest.
	w.iterate(ctx)

	ticker := time.NewTicker(w.pacing)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("worker stopped")
			return
		case <-ticker.C:
			w.iterate(ctx)
		}
	}
}

func (w *worker) iterate(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	iterCtx := ctx
	if w.callTimeout > 0 {
		var cancel context.CancelFunc
		iterCtx, cancel = context.WithTimeout(ctx, w.callTimeout)
		defer cancel()
	}

	if err := w.behavior.Run(iterCtx, w.client); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		w.logger.Warn("behavior iteration failed", "error", err)
	}
}
