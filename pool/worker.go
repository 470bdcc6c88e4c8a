package pool

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bent101/wordle-search/hint"
	"github.com/bent101/wordle-search/search"
)

var errMissedGeneration = errors.New("missed a broadcast generation")

type kind int

const (
	kindUpdate kind = iota
	kindReset
	kindPrepare
	kindScore
	kindInspect
)

var kindNames = [...]string{"update", "reset", "prepare", "score", "inspect"}

func (k kind) String() string { return kindNames[k] }

func (k kind) broadcast() bool { return k <= kindPrepare }

type task struct {
	kind kind
	gen  uint64

	word    hint.Word
	digits  hint.Digits
	indices []int

	guess int
	slot  int

	reply chan<- result
}

type result struct {
	worker uuid.UUID
	kind   kind
	gen    uint64
	slot   int

	score float64
	cands []int
	err   error
}

// worker exclusively owns one engine replica. Only its own goroutine ever
// touches the engine.
type worker struct {
	id      uuid.UUID
	engine  *search.Engine
	applied [kindPrepare + 1]uint64
	delay   time.Duration
	inbox   chan task
	log     *slog.Logger
}

func (w *worker) run(tasks <-chan task) {
	for {
		select {
		case t, ok := <-tasks:
			if !ok {
				return
			}
			w.handle(t)
		case t := <-w.inbox:
			w.handle(t)
		}
	}
}

func (w *worker) handle(t task) {
	r := result{worker: w.id, kind: t.kind, gen: t.gen, slot: t.slot}
	func() {
		defer func() {
			if v := recover(); v != nil {
				r.err = fmt.Errorf("panic in %s: %v", t.kind, v)
			}
		}()
		r.score, r.cands, r.err = w.do(t)
	}()
	t.reply <- r
}

func (w *worker) do(t task) (float64, []int, error) {
	if t.kind.broadcast() {
		if t.gen <= w.applied[t.kind] {
			duplicates.WithLabelValues(t.kind.String()).Inc()
			w.log.Debug("duplicate broadcast", "worker", w.id, "kind", t.kind, "gen", t.gen)
			// Yield the queue so the remaining copies reach other workers.
			time.Sleep(w.delay)
			return 0, nil, nil
		}
		if t.gen != w.applied[t.kind]+1 {
			return 0, nil, fmt.Errorf("%s %d arrived after %d: %w", t.kind, t.gen, w.applied[t.kind], errMissedGeneration)
		}
	}

	switch t.kind {
	case kindUpdate:
		if err := w.engine.Apply(t.word, t.digits); err != nil {
			return 0, nil, err
		}
	case kindReset:
		w.engine.Reset()
	case kindPrepare:
		if err := w.engine.Restrict(t.indices); err != nil {
			return 0, nil, err
		}
	case kindScore:
		v, err := w.engine.ScoreGuess(t.guess)
		return v, nil, err
	case kindInspect:
		cands, _ := w.engine.Candidates()
		return 0, cands, nil
	}

	w.applied[t.kind] = t.gen
	return 0, nil, nil
}
