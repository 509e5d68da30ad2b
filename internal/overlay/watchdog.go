package overlay

import (
	"errors"
	"time"
)

const (
	// RetryInterval separates attempts while the engine is not ready.
	RetryInterval = 50 * time.Millisecond
	// MaxAttempts bounds a single pass, about ten seconds of retries.
	MaxAttempts = 200
)

// Schedule is when, after a style change, each reconciliation pass runs.
var Schedule = []time.Duration{
	0,
	250 * time.Millisecond,
	750 * time.Millisecond,
	1500 * time.Millisecond,
	3 * time.Second,
	6 * time.Second,
}

// Pass is one scheduled reconciliation belonging to a style change.
type Pass struct {
	Seq     uint64
	Index   int
	Attempt int
}

// Scheduled pairs a pass with its delay from the style change.
type Scheduled struct {
	Pass  Pass
	Delay time.Duration
}

type Status int

const (
	// Done means the overlay matches the desired state.
	Done Status = iota
	// Retry means the engine was not ready; run Outcome.Next after Outcome.Delay.
	Retry
	// Stale means a newer style change superseded this pass.
	Stale
	// Exhausted means the engine stayed not-ready for MaxAttempts.
	Exhausted
	// Failed means reconciliation hit an engine error.
	Failed
	// Yielded means another pass of the same generation owns the retries,
	// or already gave up.
	Yielded
)

func (s Status) String() string {
	switch s {
	case Done:
		return "done"
	case Retry:
		return "retry"
	case Stale:
		return "stale"
	case Exhausted:
		return "exhausted"
	case Failed:
		return "failed"
	case Yielded:
		return "yielded"
	}
	return "unknown"
}

type Outcome struct {
	Status Status
	Next   Pass
	Delay  time.Duration
	Err    error
}

// Watchdog re-establishes the overlay after style changes. It does no
// timing itself: the caller runs each Scheduled pass after its delay and
// follows Retry outcomes, so it fits any event loop. At most one pass of a
// generation retries at a time, and a generation is exhausted once.
type Watchdog struct {
	seq uint64

	retrying bool
	owner    int
	gaveUp   bool
}

// StyleChanged starts a new generation and returns its passes. Passes of
// earlier generations become stale.
func (w *Watchdog) StyleChanged() []Scheduled {
	w.seq++
	w.retrying, w.owner, w.gaveUp = false, 0, false
	out := make([]Scheduled, len(Schedule))
	for i, d := range Schedule {
		out[i] = Scheduled{Pass: Pass{Seq: w.seq, Index: i}, Delay: d}
	}
	return out
}

// Seq is the current generation.
func (w *Watchdog) Seq() uint64 { return w.seq }

// Run executes one attempt of pass p.
func (w *Watchdog) Run(p Pass, e Engine, d Desired) Outcome {
	if p.Seq != w.seq {
		return Outcome{Status: Stale}
	}
	if w.gaveUp || (w.retrying && w.owner != p.Index) {
		return Outcome{Status: Yielded}
	}
	err := Reconcile(e, d)
	switch {
	case err == nil:
		w.retrying = false
		return Outcome{Status: Done}
	case errors.Is(err, ErrNotReady):
		if p.Attempt+1 >= MaxAttempts {
			w.retrying, w.gaveUp = false, true
			return Outcome{Status: Exhausted, Err: err}
		}
		w.retrying, w.owner = true, p.Index
		next := p
		next.Attempt++
		return Outcome{Status: Retry, Next: next, Delay: RetryInterval}
	default:
		w.retrying = false
		return Outcome{Status: Failed, Err: err}
	}
}
