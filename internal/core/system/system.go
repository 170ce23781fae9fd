package system

import "time"

// Phase orders systems within one simulation step.
type Phase int

const (
	PhaseInput   Phase = iota // 0: scripted or player buff actions
	PhaseUpdate               // 1: buff decay and derived refresh
	PhasePersist              // 2: journal flush
	PhaseCleanup              // 3: despawn queued entities
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseUpdate:
		return "update"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is one step of the host loop.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
