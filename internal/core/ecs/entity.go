package ecs

import "fmt"

// EntityID packs a 32-bit slot index in the low bits and a 32-bit generation in
// the high bits. Destroying an entity bumps its slot generation so stale IDs
// stop resolving.
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }

func (id EntityID) String() string {
	return fmt.Sprintf("%d.%d", id.Index(), id.Generation())
}

// EntityPool hands out generational IDs and recycles destroyed slots.
type EntityPool struct {
	generations []uint32
	freeList    []uint32
	alive       int
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		generations: make([]uint32, 0, 64),
		freeList:    make([]uint32, 0, 16),
	}
}

func (p *EntityPool) Create() EntityID {
	p.alive++
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return NewEntityID(idx, p.generations[idx])
	}
	idx := uint32(len(p.generations))
	p.generations = append(p.generations, 0)
	return NewEntityID(idx, 0)
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	return int(idx) < len(p.generations) && p.generations[idx] == id.Generation()
}

// Len returns the number of live entities.
func (p *EntityPool) Len() int { return p.alive }

func (p *EntityPool) Destroy(id EntityID) {
	if !p.Alive(id) {
		return // stale
	}
	idx := id.Index()
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
	p.alive--
}
