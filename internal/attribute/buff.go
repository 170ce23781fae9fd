package attribute

import (
	"fmt"
	"strings"
)

// DurationMerge decides how a transient buff reconciles with an equal one already queued.
type DurationMerge uint8

const (
	MergeStack   DurationMerge = iota // every application is a new queue entry
	MergeAdd                          // add duration to the queued entry's time left
	MergeRestart                      // reset the queued entry's time left to duration
)

func (m DurationMerge) String() string {
	switch m {
	case MergeStack:
		return "stack"
	case MergeAdd:
		return "add"
	case MergeRestart:
		return "restart"
	}
	return fmt.Sprintf("DurationMerge(%d)", m)
}

// ParseDurationMerge maps "stack", "add" or "restart" to its policy. Empty means stack.
func ParseDurationMerge(s string) (DurationMerge, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stack":
		return MergeStack, nil
	case "add":
		return MergeAdd, nil
	case "restart":
		return MergeRestart, nil
	}
	return MergeStack, fmt.Errorf("unknown duration merge %q", s)
}

// QueueMode decides whether equal queued buffs decay together or one after another.
type QueueMode uint8

const (
	QueueParallel  QueueMode = iota // all equal entries count down at once
	QueueWaterfall                  // only the oldest equal entry counts down
)

func (q QueueMode) String() string {
	switch q {
	case QueueParallel:
		return "parallel"
	case QueueWaterfall:
		return "waterfall"
	}
	return fmt.Sprintf("QueueMode(%d)", q)
}

// ParseQueueMode maps "parallel" or "waterfall" to its mode. Empty means parallel.
func ParseQueueMode(s string) (QueueMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "parallel":
		return QueueParallel, nil
	case "waterfall":
		return QueueWaterfall, nil
	}
	return QueueParallel, fmt.Errorf("unknown queue mode %q", s)
}

// AppliesToFunc lists the attributes a multi-target buff touches.
type AppliesToFunc func(set *Set) []*Definition

// OperateFunc turns the current buffed values of the AppliesTo targets into one
// Operation per target, in the same order.
type OperateFunc func(values []float64, set *Set) []Operation

// BuffDefinition is a designer-authored modifier. Treat it as read-only once it
// has been handed to a Container; RuntimeBuffs share it.
type BuffDefinition struct {
	AttributeName string
	DisplayName   string
	// Duration in seconds. 0 means the buff never decays.
	Duration      float64
	DurationMerge DurationMerge
	// StackLimit caps equal queued entries. 0 means unlimited.
	StackLimit int
	Operation  Operation
	QueueMode  QueueMode
	// Transient buffs are queued and folded at read time instead of mutating the value.
	Transient bool
	Unique    bool

	// Parent is set on buffs the container synthesizes from a multi-target buff.
	Parent *BuffDefinition

	// AppliesTo and Operate turn the buff into a multi-target buff. Operate without
	// AppliesTo is a configuration error.
	AppliesTo AppliesToFunc
	Operate   OperateFunc
}

// IsMultiTarget reports whether the container must route the buff through
// AppliesTo/Operate instead of AttributeName.
func (b *BuffDefinition) IsMultiTarget() bool {
	return b.Operate != nil
}

// IsTimeLimited reports whether the buff has a positive duration.
func (b *BuffDefinition) IsTimeLimited() bool {
	return b.Duration > 0 && !approxZero(b.Duration)
}

// Equal is structural equality. Synthesized buffs compare through their parents
// since their operations depend on the values fed to Operate.
func (b *BuffDefinition) Equal(other *BuffDefinition) bool {
	if b == nil || other == nil {
		return b == other
	}
	if b == other {
		return true
	}
	if b.AttributeName != other.AttributeName {
		return false
	}
	if b.Parent != nil && other.Parent != nil {
		return b.Parent.Equal(other.Parent)
	}
	return b.DisplayName == other.DisplayName &&
		b.Operation.Equal(other.Operation) &&
		approxEqual(b.Duration, other.Duration) &&
		b.DurationMerge == other.DurationMerge &&
		b.StackLimit == other.StackLimit &&
		b.QueueMode == other.QueueMode &&
		b.Transient == other.Transient &&
		b.Unique == other.Unique
}

// Apply runs the buff's operation on base.
func (b *BuffDefinition) Apply(base float64) float64 {
	return b.Operation.Apply(base)
}

// derive copies b for one target of a multi-target application.
func (b *BuffDefinition) derive(attributeName string, op Operation) *BuffDefinition {
	return &BuffDefinition{
		AttributeName: attributeName,
		DisplayName:   b.DisplayName,
		Duration:      b.Duration,
		DurationMerge: b.DurationMerge,
		StackLimit:    b.StackLimit,
		Operation:     op,
		QueueMode:     b.QueueMode,
		Transient:     b.Transient,
		Unique:        b.Unique,
		Parent:        b,
	}
}

func (b *BuffDefinition) String() string {
	name := b.DisplayName
	if name == "" {
		name = "buff"
	}
	return fmt.Sprintf("%s[%s %s]", name, b.AttributeName, b.Operation)
}
