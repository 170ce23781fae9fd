package attribute

import (
	"math"

	"github.com/google/uuid"
)

// RuntimeBuff is a live application of a BuffDefinition on one attribute.
type RuntimeBuff struct {
	id       string
	def      *BuffDefinition
	timeLeft float64
}

func newRuntimeBuff(def *BuffDefinition) *RuntimeBuff {
	rb := &RuntimeBuff{id: uuid.NewString(), def: def}
	rb.SetTimeLeft(def.Duration)
	return rb
}

// ID is unique per application, so equal buffs stacked on one attribute can be told apart.
func (rb *RuntimeBuff) ID() string                  { return rb.id }
func (rb *RuntimeBuff) Definition() *BuffDefinition { return rb.def }
func (rb *RuntimeBuff) TimeLeft() float64           { return rb.timeLeft }

func (rb *RuntimeBuff) AttributeName() string {
	if rb.def == nil {
		return ""
	}
	return rb.def.AttributeName
}

// SetTimeLeft clamps v into [0, Duration].
func (rb *RuntimeBuff) SetTimeLeft(v float64) {
	upper := 0.0
	if rb.def != nil {
		upper = math.Max(rb.def.Duration, 0)
	}
	rb.timeLeft = math.Min(math.Max(v, 0), upper)
}

// CanExpire reports whether the countdown has reached zero.
func (rb *RuntimeBuff) CanExpire() bool { return approxZero(rb.timeLeft) }

func (rb *RuntimeBuff) HasDuration() bool {
	return rb.def != nil && !approxZero(rb.def.Duration)
}

func (rb *RuntimeBuff) IsTransient() bool {
	return rb.def != nil && rb.def.Transient
}

// IsTimeBasedTransient reports whether the tick loop decays this buff.
func (rb *RuntimeBuff) IsTimeBasedTransient() bool {
	return rb.IsTransient() && rb.HasDuration()
}

// Equal compares the underlying definitions structurally.
func (rb *RuntimeBuff) Equal(def *BuffDefinition) bool {
	return rb.def != nil && rb.def.Equal(def)
}

// ComputeEffectiveValue applies the buff's operation to base.
func (rb *RuntimeBuff) ComputeEffectiveValue(base float64) (float64, error) {
	if rb.def == nil {
		return 0, ErrNilBuff
	}
	return rb.def.Apply(base), nil
}
