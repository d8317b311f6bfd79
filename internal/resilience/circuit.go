package resilience

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// ErrOpenCircuit is returned when the circuit breaker refuses a request.
var ErrOpenCircuit = errors.New("resilience: circuit breaker open")

// State represents the current breaker state.
type State int

const (
	// Closed accepts all requests and tracks failures.
	Closed State = iota
	// Open rejects requests until the cool-off period expires.
	Open
	// HalfOpen lets a single probe through to test recovery.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// window tracks request outcomes since the last state change. Counts are
// halved once the sample grows past twice the minimum so old outcomes fade
// instead of dominating the ratio forever.
type window struct {
	ok   int
	fail int
}

func (w *window) record(success bool) {
	if success {
		w.ok++
	} else {
		w.fail++
	}
}

func (w *window) total() int { return w.ok + w.fail }

func (w *window) failureRatio() float64 {
	t := w.total()
	if t == 0 {
		return 0
	}
	return float64(w.fail) / float64(t)
}

func (w *window) decay() {
	w.ok = (w.ok + 1) / 2
	w.fail = (w.fail + 1) / 2
}

func (w *window) reset() { w.ok, w.fail = 0, 0 }

// Breaker is a failure-ratio circuit breaker. It sits in front of the payment
// gateway so a dead upstream fails fast instead of stalling every kiosk
// checkout behind request timeouts.
type Breaker struct {
	mu      sync.Mutex
	state   State
	win     window
	probing bool

	minRequests  int
	failureRatio float64
	openFor      time.Duration
	openedAt     time.Time

	target string
	logger *zerolog.Logger
}

// NewBreaker returns a closed breaker that opens once at least minRequests
// outcomes are recorded and the failure ratio reaches the threshold, staying
// open for the given cool-off.
func NewBreaker(minRequests int, failureRatio float64, openFor time.Duration) *Breaker {
	if minRequests <= 0 {
		minRequests = 1
	}
	if failureRatio <= 0 || failureRatio > 1 {
		failureRatio = 0.5
	}
	if openFor <= 0 {
		openFor = 30 * time.Second
	}
	return &Breaker{
		minRequests:  minRequests,
		failureRatio: failureRatio,
		openFor:      openFor,
	}
}

// WithTarget sets the logical dependency name used in metric and log labels.
func (b *Breaker) WithTarget(target string) *Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.target = strings.TrimSpace(target)
	b.publishStateLocked()
	return b
}

// WithLogger sets the logger for state transition events.
func (b *Breaker) WithLogger(logger zerolog.Logger) *Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logger = &logger
	return b
}

// Allow reports whether a request may proceed. An open breaker starts
// refusing immediately; once the cool-off has passed the next caller becomes
// the half-open probe and later callers wait for its outcome.
func (b *Breaker) Allow(ctx context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return true
	case Open:
		if time.Since(b.openedAt) < b.openFor {
			return false
		}
		b.transitionLocked(ctx, HalfOpen)
		b.probing = true
		return true
	case HalfOpen:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	}
	return false
}

// Report records a request outcome and drives the state machine.
func (b *Breaker) Report(ctx context.Context, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		// Late reports from requests admitted before the trip.
		return
	case HalfOpen:
		b.probing = false
		if success {
			b.transitionLocked(ctx, Closed)
		} else {
			b.transitionLocked(ctx, Open)
		}
		return
	}

	b.win.record(success)
	if b.win.total() < b.minRequests {
		return
	}
	if b.win.failureRatio() >= b.failureRatio {
		b.transitionLocked(ctx, Open)
		return
	}
	if b.win.total() > b.minRequests*2 {
		b.win.decay()
	}
}

// Backoff returns the exponential backoff for an attempt, with jitterPct as a
// fraction of the computed delay (0.2 means up to 20% either way).
func Backoff(base time.Duration, attempt int, jitterPct float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	d := base << uint(attempt-1)
	if jitterPct <= 0 {
		return d
	}
	delta := (rand.Float64()*2 - 1) * jitterPct * float64(d)
	return d + time.Duration(delta)
}

func (b *Breaker) transitionLocked(ctx context.Context, next State) {
	prev := b.state
	if prev == next {
		b.publishStateLocked()
		return
	}
	b.state = next
	b.win.reset()
	if next == Open {
		b.openedAt = time.Now()
	} else {
		b.openedAt = time.Time{}
	}
	b.publishStateLocked()

	label := b.targetLabel()
	if BreakerTransitions != nil {
		BreakerTransitions.WithLabelValues(label, prev.String(), next.String()).Inc()
	}
	if next == Open && BreakerOpenedTotal != nil {
		BreakerOpenedTotal.WithLabelValues(label).Inc()
	}
	evt := b.loggerFor(ctx).Info().
		Str("target", label).
		Str("from_state", prev.String()).
		Str("to_state", next.String())
	if span := trace.SpanContextFromContext(ctx); span.IsValid() {
		evt = evt.Str("trace_id", span.TraceID().String())
	}
	evt.Msg("breaker_transition")
}

func (b *Breaker) publishStateLocked() {
	if BreakerState == nil {
		return
	}
	var v float64
	switch b.state {
	case Closed:
		v = 0
	case Open:
		v = 1
	case HalfOpen:
		v = 2
	}
	BreakerState.WithLabelValues(b.targetLabel()).Set(v)
}

func (b *Breaker) targetLabel() string {
	if b.target == "" {
		return "default"
	}
	return b.target
}

var breakerNopLogger = zerolog.Nop()

func (b *Breaker) loggerFor(ctx context.Context) *zerolog.Logger {
	if ctxLogger := zerolog.Ctx(ctx); ctxLogger != nil && ctxLogger.GetLevel() != zerolog.Disabled {
		return ctxLogger
	}
	if b.logger != nil {
		return b.logger
	}
	return &breakerNopLogger
}
