package attribute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntimeAttribute_PermanentBuffMutatesValue(t *testing.T) {
	c, log := newTestContainer(t, NewDefinition("health", 100))
	hp := c.Attribute("health")

	rb := hp.AddBuff(permanent("health", Subtract(20)))
	require.NotNil(t, rb)

	assert.Equal(t, 80.0, hp.Value())
	assert.Equal(t, 100.0, hp.PreviousValue())
	assert.Empty(t, hp.Buffs())

	changed := ofType[AttributeChanged](log)
	require.Len(t, changed, 1)
	assert.Same(t, hp, changed[0].Attribute)
	assert.Equal(t, 100.0, changed[0].Previous)
	assert.Equal(t, 80.0, changed[0].Current)
}

func TestRuntimeAttribute_NoChangeNoNotification(t *testing.T) {
	c, log := newTestContainer(t, NewDefinition("health", 100))
	c.Attribute("health").AddBuff(permanent("health", Add(0)))
	assert.Empty(t, ofType[AttributeChanged](log))
}

func TestRuntimeAttribute_ComputeHookOverridesOperatedValue(t *testing.T) {
	def := NewDefinition("health", 100)
	var seen *Computation
	def.ComputeValue = func(c *Computation) float64 {
		seen = c
		// Floor damage at 1 regardless of the candidate.
		if c.OperatedValue > c.Attribute.Value()-1 {
			return c.Attribute.Value() - 1
		}
		return c.OperatedValue
	}
	c, _ := newTestContainer(t, def)
	hp := c.Attribute("health")

	buff := permanent("health", Add(50))
	hp.AddBuff(buff)

	require.NotNil(t, seen)
	assert.Same(t, buff, seen.Buff)
	assert.Same(t, c, seen.Container)
	assert.Equal(t, 150.0, seen.OperatedValue)
	assert.Equal(t, 99.0, hp.Value())
}

func TestRuntimeAttribute_RejectsWrongTarget(t *testing.T) {
	c, log := newTestContainer(t, NewDefinition("health", 100))
	hp := c.Attribute("health")

	assert.False(t, hp.CanAccept(permanent("mana", Add(1))))
	assert.Nil(t, hp.AddBuff(permanent("mana", Add(1))))
	assert.False(t, hp.CanAccept(nil))
	assert.Equal(t, 100.0, hp.Value())
	assert.Empty(t, log.events)
}

func TestRuntimeAttribute_BuffedValueFoldsInOrder(t *testing.T) {
	c, _ := newTestContainer(t, NewDefinition("attack", 10))
	atk := c.Attribute("attack")

	atk.AddBuff(transient("attack", Add(10), 5))
	atk.AddBuff(transient("attack", Multiply(2), 5))

	// (10 + 10) * 2, not 10 * 2 + 10.
	assert.Equal(t, 40.0, atk.BuffedValue())
	assert.Equal(t, 40.0, atk.BuffedValue())
	assert.Equal(t, 10.0, atk.Value())
}

func TestRuntimeAttribute_TransientNotifications(t *testing.T) {
	c, log := newTestContainer(t, NewDefinition("speed", 10))
	speed := c.Attribute("speed")

	timed := speed.AddBuff(transient("speed", Add(5), 3))
	require.NotNil(t, timed)
	assert.Len(t, ofType[BuffAdded](log), 1)
	assert.Len(t, ofType[BuffEnqueued](log), 1)

	log.reset()
	untimed := speed.AddBuff(transient("speed", Add(1), 0))
	require.NotNil(t, untimed)
	assert.Len(t, ofType[BuffAdded](log), 1)
	assert.Empty(t, ofType[BuffEnqueued](log))
	assert.Empty(t, ofType[AttributeChanged](log))
}

func TestRuntimeAttribute_StackLimit(t *testing.T) {
	tests := []struct {
		name    string
		limit   int
		applied int
		want    int
	}{
		{"below limit", 3, 2, 2},
		{"at limit", 2, 3, 2},
		{"limit one", 1, 4, 1},
		{"unlimited", 0, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContainer(t, NewDefinition("armor", 0))
			armor := c.Attribute("armor")
			buff := transient("armor", Add(1), 10)
			buff.StackLimit = tt.limit

			for i := 0; i < tt.applied; i++ {
				armor.AddBuff(buff)
			}
			assert.Len(t, armor.Buffs(), tt.want)
			assert.Equal(t, tt.want, armor.CountBuff(buff))
		})
	}
}

func TestRuntimeAttribute_Unique(t *testing.T) {
	c, _ := newTestContainer(t, NewDefinition("armor", 0))
	armor := c.Attribute("armor")
	buff := transient("armor", Add(1), 10)
	buff.Unique = true

	require.NotNil(t, armor.AddBuff(buff))
	assert.Nil(t, armor.AddBuff(buff))
	assert.Len(t, armor.Buffs(), 1)

	require.True(t, armor.RemoveBuff(buff))
	assert.NotNil(t, armor.AddBuff(buff))
}

func TestRuntimeAttribute_DurationMerge(t *testing.T) {
	for _, merge := range []DurationMerge{MergeAdd, MergeRestart} {
		t.Run(merge.String(), func(t *testing.T) {
			c, log := newTestContainer(t, NewDefinition("speed", 10))
			speed := c.Attribute("speed")
			buff := transient("speed", Add(5), 5)
			buff.DurationMerge = merge

			first := speed.AddBuff(buff)
			require.NotNil(t, first)
			c.OnTick(2)
			require.InDelta(t, 3.0, first.TimeLeft(), 1e-9)

			log.reset()
			again := speed.AddBuff(buff)
			assert.Same(t, first, again)
			assert.Len(t, speed.Buffs(), 1)
			// Add would reach 8 but is clamped to the duration; Restart resets to it.
			assert.InDelta(t, 5.0, first.TimeLeft(), 1e-9)
			assert.Len(t, ofType[BuffTimeUpdated](log), 1)
			assert.Empty(t, ofType[BuffAdded](log))
		})
	}
}

func TestRuntimeAttribute_StackMergeAlwaysQueues(t *testing.T) {
	c, _ := newTestContainer(t, NewDefinition("speed", 10))
	speed := c.Attribute("speed")
	buff := transient("speed", Add(5), 5)

	a := speed.AddBuff(buff)
	b := speed.AddBuff(buff)
	assert.NotSame(t, a, b)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Len(t, speed.Buffs(), 2)
	assert.Equal(t, 20.0, speed.BuffedValue())
}

func TestRuntimeAttribute_RemoveBuff(t *testing.T) {
	c, log := newTestContainer(t, NewDefinition("speed", 10))
	speed := c.Attribute("speed")
	buff := transient("speed", Add(5), 5)
	first := speed.AddBuff(buff)
	speed.AddBuff(buff)

	log.reset()
	assert.True(t, speed.RemoveBuff(buff))
	removed := ofType[BuffRemoved](log)
	require.Len(t, removed, 1)
	assert.Same(t, first, removed[0].Buff)
	assert.Len(t, speed.Buffs(), 1)

	assert.False(t, speed.RemoveBuff(transient("speed", Add(99), 5)))
}

func TestRuntimeAttribute_OngoingAndClear(t *testing.T) {
	c, _ := newTestContainer(t, NewDefinition("speed", 10))
	speed := c.Attribute("speed")
	assert.False(t, speed.HasOngoingBuffs())

	speed.AddBuff(transient("speed", Add(5), 0))
	assert.False(t, speed.HasOngoingBuffs())

	speed.AddBuff(transient("speed", Add(5), 2))
	assert.True(t, speed.HasOngoingBuffs())

	speed.ClearBuffs()
	assert.Empty(t, speed.Buffs())
	assert.Equal(t, 10.0, speed.BuffedValue())
}

func TestRuntimeAttribute_ClearBuffsRefreshesDependents(t *testing.T) {
	speed := NewDefinition("speed", 10)
	dash := NewDefinition("dash", 0)
	dash.DerivedFrom = derivedFrom("speed")
	dash.ComputeValue = func(c *Computation) float64 { return c.Container.BuffedValue("speed") * 2 }

	c, log := newTestContainer(t, speed, dash)
	_, err := c.ApplyBuff(transient("speed", Add(5), 2))
	require.NoError(t, err)
	require.Equal(t, 30.0, c.Value("dash"))
	log.reset()

	c.Attribute("speed").ClearBuffs()
	assert.Equal(t, 20.0, c.Value("dash"))
	assert.Empty(t, ofType[BuffRemoved](log))
	require.Len(t, ofType[AttributeChanged](log), 1)
	assert.Equal(t, "dash", ofType[AttributeChanged](log)[0].Attribute.Name())
}

func TestRuntimeAttribute_SetValue(t *testing.T) {
	c, log := newTestContainer(t, NewDefinition("gold", 5))
	gold := c.Attribute("gold")

	gold.SetValue(12)
	assert.Equal(t, 12.0, gold.Value())
	assert.Equal(t, 5.0, gold.PreviousValue())
	require.Len(t, ofType[AttributeChanged](log), 1)

	log.reset()
	gold.SetValue(12)
	assert.Empty(t, ofType[AttributeChanged](log))
}
