// Package pool scores guesses in parallel across replicated search engines.
//
// Every worker owns a full engine built from the shared inventory. Work is
// handed out the way a process pool's map does it: all tasks go to one queue
// and whichever worker is free takes the next one. A broadcast therefore
// cannot address a particular worker. Instead it queues one copy per worker,
// tagged with a generation id, and repeats until every worker has reported
// that generation. Workers ignore copies of a generation they already
// applied.
package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/bent101/wordle-search/hint"
	"github.com/bent101/wordle-search/reducer"
	"github.com/bent101/wordle-search/search"
)

// ErrPoolFailed wraps the first worker failure. A failed pool stays failed.
var ErrPoolFailed = errors.New("worker pool failed")

var errUnacknowledged = errors.New("broadcast not acknowledged by every worker")

type Config struct {
	Workers int `yaml:"workers" validate:"min=1,max=1024"`
	// DuplicateDelay is how long a worker holds a copy it already applied.
	DuplicateDelay time.Duration `yaml:"duplicate_delay" validate:"min=0"`
	// Progress draws a progress bar for scoring rounds.
	Progress bool `yaml:"progress"`
}

func DefaultConfig(workers int) Config {
	return Config{Workers: workers, DuplicateDelay: 10 * time.Millisecond}
}

type Pool struct {
	cfg     Config
	workers []*worker
	tasks   chan task
	wg      sync.WaitGroup
	log     *slog.Logger

	// mu orders rounds: a scoring round never starts while a broadcast is
	// partially acknowledged.
	mu     sync.Mutex
	gens   [kindPrepare + 1]uint64
	err    error
	closed bool
}

func New(inv *reducer.Inventory, engineCfg search.Config, cfg Config, log *slog.Logger) (*Pool, error) {
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("pool needs at least one worker, got %d", cfg.Workers)
	}
	if log == nil {
		log = slog.Default()
	}

	p := &Pool{
		cfg:   cfg,
		tasks: make(chan task),
		log:   log,
	}
	for range cfg.Workers {
		e, err := search.New(inv, engineCfg, log)
		if err != nil {
			return nil, err
		}
		id := uuid.New()
		p.workers = append(p.workers, &worker{
			id:     id,
			engine: e,
			delay:  cfg.DuplicateDelay,
			inbox:  make(chan task, 1),
			log:    log.With("worker", id),
		})
	}

	for _, w := range p.workers {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			w.run(p.tasks)
		}()
	}

	log.Info("worker pool started", "workers", cfg.Workers)
	return p, nil
}

func (p *Pool) Size() int { return len(p.workers) }

// Close stops the workers. The pool cannot be used afterwards.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.err == nil {
		p.err = fmt.Errorf("%w: closed", ErrPoolFailed)
	}
	close(p.tasks)
	p.wg.Wait()
}

// Update applies one played guess and its feedback on every replica.
func (p *Pool) Update(ctx context.Context, guess hint.Word, digits hint.Digits) error {
	return p.broadcast(ctx, task{kind: kindUpdate, word: guess, digits: digits})
}

// Reset returns every replica to the no-information state.
func (p *Pool) Reset(ctx context.Context) error {
	return p.broadcast(ctx, task{kind: kindReset})
}

// Prepare restricts the root guesses of every replica until the next update.
func (p *Pool) Prepare(ctx context.Context, indices []int) error {
	return p.broadcast(ctx, task{kind: kindPrepare, indices: indices})
}

func (p *Pool) broadcast(ctx context.Context, t task) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p.gens[t.kind]++
	t.gen = p.gens[t.kind]
	n := len(p.workers)
	acked := make(map[uuid.UUID]bool, n)
	dispatched := false

	round := func() (int, error) {
		broadcastRounds.WithLabelValues(t.kind.String()).Inc()

		replies := make(chan result, n)
		t.reply = replies
		for range n {
			select {
			case p.tasks <- t:
				dispatched = true
			case <-ctx.Done():
				return 0, backoff.Permanent(ctx.Err())
			}
		}

		for range n {
			select {
			case r := <-replies:
				if r.err != nil {
					return 0, backoff.Permanent(p.fail(r))
				}
				acked[r.worker] = true
			case <-ctx.Done():
				return 0, backoff.Permanent(ctx.Err())
			}
		}

		if len(acked) < n {
			return len(acked), fmt.Errorf("%w: %d of %d for %s %d", errUnacknowledged, len(acked), n, t.kind, t.gen)
		}
		return n, nil
	}

	_, err := backoff.Retry(ctx, round,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(0))
	if err != nil {
		// Some replicas may hold this generation and others not.
		if dispatched {
			return p.abort(t, err)
		}
		return err
	}

	p.log.Debug("broadcast acknowledged", "kind", t.kind, "gen", t.gen)
	return nil
}

// Score returns the expected guess count of each guess, in input order.
func (p *Pool) Score(ctx context.Context, guesses []int) ([]float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}

	start := time.Now()
	defer func() { scoreDuration.Observe(time.Since(start).Seconds()) }()

	var bar *progressbar.ProgressBar
	if p.cfg.Progress {
		bar = progressbar.Default(int64(len(guesses)), "scoring guesses")
		defer bar.Finish()
	}

	scores := make([]float64, len(guesses))
	replies := make(chan result, len(guesses))
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for slot, guess := range guesses {
			select {
			case p.tasks <- task{kind: kindScore, guess: guess, slot: slot, reply: replies}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	g.Go(func() error {
		for range guesses {
			select {
			case r := <-replies:
				if r.err != nil {
					return p.fail(r)
				}
				scores[r.slot] = r.score
				if bar != nil {
					bar.Add(1)
				}
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

// Candidates asks every worker for its current candidates, keyed by worker.
func (p *Pool) Candidates(ctx context.Context) (map[uuid.UUID][]int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}

	replies := make(chan result, len(p.workers))
	for _, w := range p.workers {
		select {
		case w.inbox <- task{kind: kindInspect, reply: replies}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	out := make(map[uuid.UUID][]int, len(p.workers))
	for range p.workers {
		select {
		case r := <-replies:
			out[r.worker] = r.cands
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return out, nil
}

// abort fails the pool when a broadcast stops after copies went out.
// Callers hold mu.
func (p *Pool) abort(t task, err error) error {
	if p.err == nil {
		p.err = fmt.Errorf("%w: %s %d interrupted: %w", ErrPoolFailed, t.kind, t.gen, err)
		p.log.Error("broadcast interrupted", "kind", t.kind, "gen", t.gen, "err", err)
	}
	return p.err
}

// fail records the first worker failure. Callers hold mu.
func (p *Pool) fail(r result) error {
	if p.err == nil {
		p.err = fmt.Errorf("%w: worker %s during %s: %w", ErrPoolFailed, r.worker, r.kind, r.err)
		p.log.Error("worker failed", "worker", r.worker, "kind", r.kind, "err", r.err)
	}
	return p.err
}
