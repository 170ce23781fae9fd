package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingSystem struct {
	phase Phase
	name  string
	trace *[]string
	dt    time.Duration
}

func (p *recordingSystem) Phase() Phase { return p.phase }

func (p *recordingSystem) Update(dt time.Duration) {
	p.dt = dt
	*p.trace = append(*p.trace, p.name)
}

func TestRunner_PhaseOrder(t *testing.T) {
	var trace []string
	r := NewRunner()
	r.Register(&recordingSystem{phase: PhaseCleanup, name: "cleanup", trace: &trace})
	r.Register(&recordingSystem{phase: PhaseUpdate, name: "tick", trace: &trace})
	r.Register(&recordingSystem{phase: PhaseInput, name: "input", trace: &trace})
	r.Register(&recordingSystem{phase: PhaseUpdate, name: "tick2", trace: &trace})
	r.Register(&recordingSystem{phase: PhasePersist, name: "journal", trace: &trace})

	r.Tick(50 * time.Millisecond)
	assert.Equal(t, []string{"input", "tick", "tick2", "journal", "cleanup"}, trace)
	assert.Equal(t, uint64(1), r.Ticks())
}

func TestRunner_TickPhase(t *testing.T) {
	var trace []string
	r := NewRunner()
	in := &recordingSystem{phase: PhaseInput, name: "input", trace: &trace}
	r.Register(in)
	r.Register(&recordingSystem{phase: PhaseUpdate, name: "tick", trace: &trace})

	r.TickPhase(PhaseInput, time.Millisecond)
	assert.Equal(t, []string{"input"}, trace)
	assert.Equal(t, time.Millisecond, in.dt)
	assert.Zero(t, r.Ticks())
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "update", PhaseUpdate.String())
	assert.Equal(t, "unknown", Phase(42).String())
}

func TestRunner_RegisterAfterTickResorts(t *testing.T) {
	var trace []string
	r := NewRunner()
	r.Register(&recordingSystem{phase: PhaseCleanup, name: "cleanup", trace: &trace})
	r.Tick(time.Millisecond)

	r.Register(&recordingSystem{phase: PhaseInput, name: "input", trace: &trace})
	trace = nil
	r.Tick(time.Millisecond)
	assert.Equal(t, []string{"input", "cleanup"}, trace)
	assert.Equal(t, uint64(2), r.Ticks())
}
