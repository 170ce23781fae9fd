package attribute

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet_UniqueByIdentity(t *testing.T) {
	hp := NewDefinition("health", 100)
	s := NewSet("hero", hp, hp, nil)
	assert.Equal(t, 1, s.Len())

	// Same name, different definition: allowed, the set only blocks identity.
	twin := NewDefinition("health", 50)
	assert.True(t, s.Add(twin))
	assert.False(t, s.Add(twin))
	assert.Equal(t, 2, s.Len())
	assert.Same(t, hp, s.FindByName("health"))
}

func TestSet_Operations(t *testing.T) {
	hp := NewDefinition("health", 100)
	mp := NewDefinition("mana", 50)
	sp := NewDefinition("speed", 10)
	s := NewSet("hero")

	assert.Equal(t, 3, s.AddAll(hp, mp, sp))
	assert.Equal(t, []string{"health", "mana", "speed"}, s.Names())
	assert.Equal(t, 1, s.Index(mp))
	assert.Same(t, sp, s.At(2))
	assert.Nil(t, s.At(3))
	assert.Nil(t, s.At(-1))

	assert.True(t, s.Remove(mp))
	assert.False(t, s.Remove(mp))
	assert.False(t, s.Has(mp))
	assert.Equal(t, 2, s.RemoveAll(hp, sp, mp))
	assert.Zero(t, s.Len())

	s.SetName("villain")
	assert.Equal(t, "villain", s.Name())
}

func TestSet_DefinitionsIsACopy(t *testing.T) {
	s := NewSet("hero", NewDefinition("health", 1))
	defs := s.Definitions()
	defs[0] = nil
	assert.NotNil(t, s.At(0))
}

func TestDefinition_DefaultName(t *testing.T) {
	assert.Equal(t, DefaultName, (&Definition{}).AttributeName())
	assert.Equal(t, "health", NewDefinition("health", 0).AttributeName())
}
