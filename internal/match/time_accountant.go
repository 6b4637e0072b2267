package match

import "time"

// TimeAccountant tracks one agent's per-step durations against a pooled
// overtime budget: transient jitter shouldn't instantly taint an agent,
// but sustained overruns must.
//
// Invariant: poolRemaining = stepLimitPool − Σ max(0, dᵢ − stepTimeLimit).
// Overtime() reports true once poolRemaining goes negative.
type TimeAccountant struct {
	stepTimeLimit time.Duration
	poolRemaining time.Duration
	durations     []time.Duration
	start         time.Time
}

// NewTimeAccountant builds an accountant with the given per-step limit and
// starting overtime pool.
func NewTimeAccountant(stepTimeLimit, stepLimitPool time.Duration) *TimeAccountant {
	return &TimeAccountant{
		stepTimeLimit: stepTimeLimit,
		poolRemaining: stepLimitPool,
	}
}

// Start marks the beginning of a timed step.
func (a *TimeAccountant) Start(now time.Time) {
	a.start = now
}

// Stop ends the current timed step, records its duration, and deducts any
// overage from the pool. It returns the duration just recorded.
func (a *TimeAccountant) Stop(now time.Time) time.Duration {
	d := now.Sub(a.start)
	a.durations = append(a.durations, d)
	if overage := d - a.stepTimeLimit; overage > 0 {
		a.poolRemaining -= overage
	}
	return d
}

// PoolRemaining returns the current overtime_pool_remaining value.
func (a *TimeAccountant) PoolRemaining() time.Duration { return a.poolRemaining }

// Overtime reports whether the pool has gone negative.
func (a *TimeAccountant) Overtime() bool { return a.poolRemaining < 0 }

// Durations returns a copy of every recorded step duration, oldest first.
func (a *TimeAccountant) Durations() []time.Duration {
	return append([]time.Duration(nil), a.durations...)
}

// StepTimeLimit returns the configured per-step soft limit.
func (a *TimeAccountant) StepTimeLimit() time.Duration { return a.stepTimeLimit }
