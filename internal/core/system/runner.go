package system

import (
	"sort"
	"time"
)

// Runner drives one simulation step: scenario input first, then buff decay,
// then the journal, then despawn cleanup. Systems of the same phase keep their
// registration order.
type Runner struct {
	systems []System
	sorted  bool
	ticks   uint64
}

func NewRunner() *Runner {
	return &Runner{systems: make([]System, 0, 4)}
}

// Register adds s; the phase order is restored lazily on the next step.
func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Ticks returns how many full steps have run. TickPhase does not count.
func (r *Runner) Ticks() uint64 { return r.ticks }

// Tick runs every phase once with the same dt.
func (r *Runner) Tick(dt time.Duration) {
	r.run(dt, func(System) bool { return true })
	r.ticks++
}

// TickPhase runs the systems of a single phase, e.g. draining scenario input
// while containers are advanced by hand.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.run(dt, func(s System) bool { return s.Phase() == phase })
}

func (r *Runner) run(dt time.Duration, include func(System) bool) {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
	for _, s := range r.systems {
		if include(s) {
			s.Update(dt)
		}
	}
}
