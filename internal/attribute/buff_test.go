package attribute

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func hasteBuff() *BuffDefinition {
	return &BuffDefinition{
		AttributeName: "speed",
		DisplayName:   "Haste",
		Duration:      3,
		Operation:     Add(5),
		Transient:     true,
	}
}

func TestBuffDefinition_Equal(t *testing.T) {
	base := hasteBuff()

	same := hasteBuff()
	assert.True(t, base.Equal(same))
	assert.True(t, base.Equal(base))

	mutations := map[string]func(b *BuffDefinition){
		"attribute":  func(b *BuffDefinition) { b.AttributeName = "health" },
		"name":       func(b *BuffDefinition) { b.DisplayName = "Slow" },
		"operation":  func(b *BuffDefinition) { b.Operation = Multiply(5) },
		"operand":    func(b *BuffDefinition) { b.Operation = Add(6) },
		"duration":   func(b *BuffDefinition) { b.Duration = 4 },
		"merge":      func(b *BuffDefinition) { b.DurationMerge = MergeRestart },
		"stack":      func(b *BuffDefinition) { b.StackLimit = 2 },
		"queue":      func(b *BuffDefinition) { b.QueueMode = QueueWaterfall },
		"transient":  func(b *BuffDefinition) { b.Transient = false },
		"uniqueness": func(b *BuffDefinition) { b.Unique = true },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			other := hasteBuff()
			mutate(other)
			assert.False(t, base.Equal(other))
		})
	}

	assert.False(t, base.Equal(nil))
}

func TestBuffDefinition_DerivedCompareThroughParent(t *testing.T) {
	parent := hasteBuff()
	a := parent.derive("speed", Add(1))
	b := parent.derive("speed", Add(2))
	assert.True(t, a.Equal(b))
	assert.Same(t, parent, a.Parent)

	other := parent.derive("health", Add(1))
	assert.False(t, a.Equal(other))
}

func TestBuffDefinition_IsTimeLimited(t *testing.T) {
	b := hasteBuff()
	assert.True(t, b.IsTimeLimited())
	b.Duration = 0
	assert.False(t, b.IsTimeLimited())
	b.Duration = 1
	assert.True(t, b.IsTimeLimited())
}

func TestRuntimeBuff_TimeLeftIsClamped(t *testing.T) {
	rb := newRuntimeBuff(hasteBuff())
	assert.Equal(t, 3.0, rb.TimeLeft())
	assert.NotEmpty(t, rb.ID())

	rb.SetTimeLeft(10)
	assert.Equal(t, 3.0, rb.TimeLeft())
	rb.SetTimeLeft(-1)
	assert.Zero(t, rb.TimeLeft())
	assert.True(t, rb.CanExpire())
}

func TestRuntimeBuff_Classification(t *testing.T) {
	timed := newRuntimeBuff(hasteBuff())
	assert.True(t, timed.HasDuration())
	assert.True(t, timed.IsTimeBasedTransient())

	untimed := hasteBuff()
	untimed.Duration = 0
	rb := newRuntimeBuff(untimed)
	assert.False(t, rb.HasDuration())
	assert.False(t, rb.IsTimeBasedTransient())

	permanent := hasteBuff()
	permanent.Transient = false
	assert.False(t, newRuntimeBuff(permanent).IsTimeBasedTransient())
}

func TestRuntimeBuff_ComputeEffectiveValue(t *testing.T) {
	v, err := newRuntimeBuff(hasteBuff()).ComputeEffectiveValue(10)
	assert.NoError(t, err)
	assert.Equal(t, 15.0, v)

	v, err = (&RuntimeBuff{}).ComputeEffectiveValue(10)
	assert.ErrorIs(t, err, ErrNilBuff)
	assert.Zero(t, v)
}

func TestParsePolicies(t *testing.T) {
	m, err := ParseDurationMerge("Restart")
	assert.NoError(t, err)
	assert.Equal(t, MergeRestart, m)
	m, err = ParseDurationMerge("")
	assert.NoError(t, err)
	assert.Equal(t, MergeStack, m)
	_, err = ParseDurationMerge("replace")
	assert.Error(t, err)

	q, err := ParseQueueMode("waterfall")
	assert.NoError(t, err)
	assert.Equal(t, QueueWaterfall, q)
	assert.Equal(t, "waterfall", q.String())
	_, err = ParseQueueMode("serial")
	assert.Error(t, err)
}
