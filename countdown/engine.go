package countdown

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Clock supplies the current instant. The engine captures one reading at
// start and derives every later "now" from the elapsed local time, so
// the baseline may come from an external time source without repeated
// queries, and throttled tick delivery cannot make the countdown drift.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the local wall clock.
var SystemClock Clock = systemClock{}

// Sink receives one breakdown per tick. The final emission carries
// Complete=true; nothing is emitted after that.
type Sink func(Breakdown)

// Engine computes and emits the launch countdown. It does not own a
// timer; the caller drives it by calling Tick on whatever cadence it
// wants (the portal uses a 1-second scheduler task).
type Engine struct {
	target   time.Time
	refNow   time.Time // external baseline for "now"
	refLocal time.Time // local capture at the same moment (monotonic)
	clock    Clock
	sink     Sink

	mu         sync.Mutex
	done       bool
	last       Breakdown
	onComplete func()
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the system clock, for tests.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithOnComplete registers a callback invoked exactly once, when the
// target is reached. The portal uses it to remove the tick task.
func WithOnComplete(fn func()) Option {
	return func(e *Engine) { e.onComplete = fn }
}

// NewEngine creates an engine counting down from referenceNow to target.
// referenceNow is the instant to treat as "now" at creation time; pass a
// server-supplied timestamp, or simply the clock's own reading.
func NewEngine(referenceNow, target time.Time, sink Sink, opts ...Option) *Engine {
	e := &Engine{
		target: target,
		refNow: referenceNow,
		clock:  SystemClock,
		sink:   sink,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.refLocal = e.clock.Now()
	return e
}

// NewEngineFromConfig parses an RFC 3339 target and builds an engine
// anchored at the clock's current reading. An unparseable target means
// the countdown does not start; the caller gets nil and may log it.
func NewEngineFromConfig(target string, sink Sink, logger *zap.Logger, opts ...Option) *Engine {
	ts, err := time.Parse(time.RFC3339, target)
	if err != nil {
		if logger != nil {
			logger.Warn("countdown disabled: invalid target", zap.String("target", target), zap.Error(err))
		}
		return nil
	}
	e := &Engine{
		target: ts,
		clock:  SystemClock,
		sink:   sink,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.refNow = e.clock.Now()
	e.refLocal = e.refNow
	return e
}

// now derives the current instant from the baseline plus elapsed local
// time. time.Since uses the monotonic clock, so wall-clock jumps on the
// host do not skew the countdown.
func (e *Engine) now() time.Time {
	return e.refNow.Add(e.clock.Now().Sub(e.refLocal))
}

// Tick recomputes the breakdown and emits it to the sink. Once the
// target is reached the terminal Complete breakdown is emitted exactly
// once and every later Tick is a no-op.
func (e *Engine) Tick() {
	e.mu.Lock()
	if e.done {
		e.mu.Unlock()
		return
	}
	b := Diff(e.now(), e.target)
	e.last = b
	var complete func()
	if b.Complete {
		e.done = true
		complete = e.onComplete
	}
	e.mu.Unlock()

	if e.sink != nil {
		e.sink(b)
	}
	if complete != nil {
		complete()
	}
}

// Snapshot returns the current breakdown without emitting it. After
// completion it keeps returning the terminal state.
func (e *Engine) Snapshot() Breakdown {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done {
		return e.last
	}
	return Diff(e.now(), e.target)
}

// Done reports whether the countdown has reached its target.
func (e *Engine) Done() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}

// Target returns the countdown's target instant.
func (e *Engine) Target() time.Time {
	return e.target
}
