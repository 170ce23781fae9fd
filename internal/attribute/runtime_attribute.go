package attribute

import (
	"github.com/l1jgo/attrs/internal/core/event"
)

// RuntimeAttribute is the live state of one Definition inside a Container.
// value only ever reflects permanent buffs; transient ones stay in the queue
// and are folded in by BuffedValue.
type RuntimeAttribute struct {
	def       *Definition
	set       *Set
	container *Container // owner, never nil

	value    float64
	previous float64
	buffs    []*RuntimeBuff // FIFO
}

func newRuntimeAttribute(c *Container, def *Definition) *RuntimeAttribute {
	return &RuntimeAttribute{
		def:       def,
		set:       c.set,
		container: c,
		value:     def.InitialValue,
		previous:  def.InitialValue,
	}
}

func (a *RuntimeAttribute) Definition() *Definition { return a.def }
func (a *RuntimeAttribute) Set() *Set               { return a.set }
func (a *RuntimeAttribute) Container() *Container   { return a.container }
func (a *RuntimeAttribute) Name() string            { return a.def.AttributeName() }
func (a *RuntimeAttribute) Value() float64          { return a.value }
func (a *RuntimeAttribute) PreviousValue() float64  { return a.previous }
func (a *RuntimeAttribute) IsComputable() bool      { return a.def.IsComputable() }

// Buffs returns a copy of the queue, oldest first.
func (a *RuntimeAttribute) Buffs() []*RuntimeBuff {
	out := make([]*RuntimeBuff, len(a.buffs))
	copy(out, a.buffs)
	return out
}

// BuffedValue folds value through every queued buff in FIFO order. It never
// mutates the attribute.
func (a *RuntimeAttribute) BuffedValue() float64 {
	v := a.value
	for _, rb := range a.buffs {
		if rb.def != nil {
			v = rb.def.Apply(v)
		}
	}
	return v
}

// SetValue overwrites the base value and notifies when it changed.
func (a *RuntimeAttribute) SetValue(v float64) {
	a.setValue(v)
	a.container.flush()
}

func (a *RuntimeAttribute) setValue(v float64) {
	prev := a.value
	a.previous = prev
	a.value = v
	if !approxEqual(prev, v) {
		event.Emit(a.container.bus, AttributeChanged{Attribute: a, Previous: prev, Current: v})
	}
}

// CanAccept checks uniqueness, the stack limit and the target name.
func (a *RuntimeAttribute) CanAccept(b *BuffDefinition) bool {
	if b == nil {
		return false
	}
	if b.Unique && a.HasBuff(b) {
		return false
	}
	if b.StackLimit > 0 && a.CountBuff(b) >= b.StackLimit {
		return false
	}
	return b.AttributeName == a.Name()
}

// AddBuff applies b. Transient buffs are merged into or appended to the queue;
// permanent buffs mutate the value immediately. A nil result means the buff
// was rejected.
func (a *RuntimeAttribute) AddBuff(b *BuffDefinition) *RuntimeBuff {
	rb := a.addBuff(b)
	a.container.flush()
	return rb
}

func (a *RuntimeAttribute) addBuff(b *BuffDefinition) *RuntimeBuff {
	if !a.CanAccept(b) {
		return nil
	}

	if b.Transient {
		if b.DurationMerge == MergeAdd || b.DurationMerge == MergeRestart {
			for _, existing := range a.buffs {
				if !existing.Equal(b) {
					continue
				}
				if b.DurationMerge == MergeAdd {
					existing.SetTimeLeft(existing.timeLeft + b.Duration)
				} else {
					existing.SetTimeLeft(b.Duration)
				}
				event.Emit(a.container.bus, BuffTimeUpdated{Attribute: a, Buff: existing})
				return existing
			}
		}

		rb := newRuntimeBuff(b)
		a.buffs = append(a.buffs, rb)
		event.Emit(a.container.bus, BuffAdded{Attribute: a, Buff: rb})
		if rb.HasDuration() {
			event.Emit(a.container.bus, BuffEnqueued{Attribute: a, Buff: rb})
		}
		return rb
	}

	rb := newRuntimeBuff(b)
	prev := a.value
	a.previous = prev

	if a.def.ComputeValue != nil {
		a.value = a.def.ComputeValue(&Computation{
			Container:     a.container,
			Buff:          b,
			OperatedValue: b.Apply(a.value),
			Attribute:     a,
		})
	} else if b.AttributeName == a.Name() {
		a.value = b.Apply(a.value)
	}

	if !approxEqual(prev, a.value) {
		event.Emit(a.container.bus, AttributeChanged{Attribute: a, Previous: prev, Current: a.value})
	}
	return rb
}

// ComputeValue re-runs the ComputeValue hook with no buff. Dependents are
// refreshed this way whenever one of their parents changes.
func (a *RuntimeAttribute) ComputeValue() {
	a.computeValue()
	a.container.flush()
}

func (a *RuntimeAttribute) computeValue() {
	if a.def.ComputeValue == nil {
		return
	}
	prev := a.value
	next := a.def.ComputeValue(&Computation{
		Container:     a.container,
		OperatedValue: a.value,
		Attribute:     a,
	})
	a.value = next
	if !approxEqual(prev, next) {
		a.previous = prev
		event.Emit(a.container.bus, AttributeChanged{Attribute: a, Previous: prev, Current: next})
	}
}

// RemoveBuff drops the first queued entry structurally equal to b.
func (a *RuntimeAttribute) RemoveBuff(b *BuffDefinition) bool {
	ok := a.removeWhere(func(rb *RuntimeBuff) bool { return rb.Equal(b) })
	a.container.flush()
	return ok
}

func (a *RuntimeAttribute) removeWhere(match func(*RuntimeBuff) bool) bool {
	for i, rb := range a.buffs {
		if match(rb) {
			a.removeAt(i)
			return true
		}
	}
	return false
}

func (a *RuntimeAttribute) removeRuntimeBuff(target *RuntimeBuff) bool {
	return a.removeWhere(func(rb *RuntimeBuff) bool { return rb == target })
}

func (a *RuntimeAttribute) removeAt(i int) {
	rb := a.buffs[i]
	copy(a.buffs[i:], a.buffs[i+1:])
	a.buffs[len(a.buffs)-1] = nil
	a.buffs = a.buffs[:len(a.buffs)-1]
	event.Emit(a.container.bus, BuffRemoved{Attribute: a, Buff: rb})
}

// ClearBuffs empties the queue without buff notifications. Dependents are
// still recomputed against the cleared value.
func (a *RuntimeAttribute) ClearBuffs() {
	if len(a.buffs) == 0 {
		return
	}
	clear(a.buffs)
	a.buffs = a.buffs[:0]
	for _, dep := range a.container.derived[a.Name()] {
		dep.computeValue()
	}
	a.container.flush()
}

func (a *RuntimeAttribute) HasBuff(b *BuffDefinition) bool {
	for _, rb := range a.buffs {
		if rb.Equal(b) {
			return true
		}
	}
	return false
}

// CountBuff counts queued entries structurally equal to b.
func (a *RuntimeAttribute) CountBuff(b *BuffDefinition) int {
	n := 0
	for _, rb := range a.buffs {
		if rb.Equal(b) {
			n++
		}
	}
	return n
}

// HasOngoingBuffs reports whether any queued buff is still counting down.
func (a *RuntimeAttribute) HasOngoingBuffs() bool {
	for _, rb := range a.buffs {
		if rb.HasDuration() && !rb.CanExpire() {
			return true
		}
	}
	return false
}

// DerivedFrom resolves the definition's dependencies against its set.
func (a *RuntimeAttribute) DerivedFrom() []*Definition {
	return a.def.Dependencies(a.set)
}

// Parents returns the registered runtime attributes this one derives from.
func (a *RuntimeAttribute) Parents() []*RuntimeAttribute {
	deps := a.DerivedFrom()
	if len(deps) == 0 {
		return nil
	}
	parents := make([]*RuntimeAttribute, 0, len(deps))
	for _, d := range deps {
		if p := a.container.Attribute(d.AttributeName()); p != nil {
			parents = append(parents, p)
		}
	}
	return parents
}
