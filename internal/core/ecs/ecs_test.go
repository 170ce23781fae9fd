package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityPool_RecyclesWithNewGeneration(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	b := p.Create()
	assert.Equal(t, uint32(0), a.Index())
	assert.Equal(t, uint32(1), b.Index())
	assert.Equal(t, 2, p.Len())

	p.Destroy(a)
	assert.False(t, p.Alive(a))
	p.Destroy(a) // stale, no-op
	assert.Equal(t, 1, p.Len())

	c := p.Create()
	assert.Equal(t, a.Index(), c.Index())
	assert.Equal(t, uint32(1), c.Generation())
	assert.True(t, p.Alive(c))
	assert.False(t, p.Alive(a))
	assert.Equal(t, "0.1", c.String())
}

func TestStore_EachIsOrdered(t *testing.T) {
	s := NewStore[string]()
	for i := uint32(5); i > 0; i-- {
		v := string(rune('a' + i))
		s.Set(NewEntityID(i, 0), &v)
	}
	var got []uint32
	s.Each(func(id EntityID, _ *string) { got = append(got, id.Index()) })
	assert.Equal(t, []uint32{1, 2, 3, 4, 5}, got)
}

func TestEach2(t *testing.T) {
	names := NewStore[string]()
	scores := NewStore[int]()
	for i := uint32(0); i < 4; i++ {
		n := "e"
		names.Set(NewEntityID(i, 0), &n)
	}
	for _, i := range []uint32{3, 1} {
		v := int(i) * 10
		scores.Set(NewEntityID(i, 0), &v)
	}

	var got []int
	Each2(names, scores, func(_ EntityID, _ *string, s *int) { got = append(got, *s) })
	assert.Equal(t, []int{10, 30}, got)
}

func TestWorld_DeferredDestroy(t *testing.T) {
	w := NewWorld()
	s := NewStore[int]()
	w.Track(s)

	id := w.CreateEntity()
	v := 1
	s.Set(id, &v)

	w.MarkForDestruction(id)
	w.MarkForDestruction(id)
	assert.True(t, w.Alive(id))
	assert.Equal(t, 2, w.Pending())

	destroyed := w.FlushDestroyQueue()
	require.Equal(t, []EntityID{id}, destroyed)
	assert.False(t, w.Alive(id))
	assert.False(t, s.Has(id))
	assert.Zero(t, w.Pending())
	assert.Zero(t, w.Len())
}
