// Package timestep turns irregular wall-clock deltas into a regular series of
// simulation steps.
package timestep

import (
	"iter"
	"time"
)

// Step is a single quantum handed to the caller.
type Step struct {
	// Now is the processed time before this step was taken.
	Now time.Duration
	// Delta is the length of the step, at most the stepper's step size.
	Delta time.Duration
}

// Option configures a Stepper.
type Option func(*Stepper)

// WithStep sets the maximum size of a single step. It defaults to the period.
func WithStep(step time.Duration) Option {
	return func(s *Stepper) {
		if step > 0 {
			s.step = step
		}
	}
}

// WithMaxSteps caps the number of steps emitted by a single Steps poll.
// Backlog beyond the cap is kept for later polls. Zero means no cap.
func WithMaxSteps(n int) Option {
	return func(s *Stepper) {
		if n >= 0 {
			s.maxSteps = n
		}
	}
}

// FromFrequency returns the period of a tick rate given in hertz.
func FromFrequency(hz int) time.Duration {
	if hz <= 0 {
		return 0
	}
	return time.Second / time.Duration(hz)
}

// Stepper accumulates elapsed time and releases it in steps no shorter than
// its period. It is not safe for concurrent use.
type Stepper struct {
	period   time.Duration
	step     time.Duration
	maxSteps int

	processed time.Duration
	pending   time.Duration
}

// New creates a stepper that emits a step whenever at least period is pending.
// It panics if period is not positive.
func New(period time.Duration, opts ...Option) *Stepper {
	if period <= 0 {
		panic("timestep: non-positive period")
	}

	s := &Stepper{
		period: period,
		step:   period,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add accumulates elapsed wall-clock time.
func (s *Stepper) Add(elapsed time.Duration) {
	if elapsed > 0 {
		s.pending += elapsed
	}
}

// Next takes one step if enough time is pending.
func (s *Stepper) Next() (Step, bool) {
	if s.pending < s.period {
		return Step{}, false
	}

	delta := min(s.step, s.pending)
	st := Step{Now: s.processed, Delta: delta}
	s.pending -= delta
	s.processed += delta
	return st, true
}

// Steps drains the pending time, honouring the per-poll cap.
func (s *Stepper) Steps() iter.Seq[Step] {
	return func(yield func(Step) bool) {
		for n := 0; s.maxSteps == 0 || n < s.maxSteps; n++ {
			st, ok := s.Next()
			if !ok || !yield(st) {
				return
			}
		}
	}
}

// Pending returns the time accumulated but not yet stepped.
func (s *Stepper) Pending() time.Duration { return s.pending }

// Processed returns the total time handed out in steps.
func (s *Stepper) Processed() time.Duration { return s.processed }

// Period returns the minimum pending time required for a step.
func (s *Stepper) Period() time.Duration { return s.period }

// StepSize returns the maximum size of a step.
func (s *Stepper) StepSize() time.Duration { return s.step }
