package ecs

// World owns the entity pool, the component stores and the deferred destroy
// queue. Entities marked during a step are torn down by the cleanup phase.
type World struct {
	pool         *EntityPool
	stores       []Removable
	destroyQueue []EntityID
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		destroyQueue: make([]EntityID, 0, 16),
	}
}

// Track registers a store so destroyed entities are removed from it.
func (w *World) Track(store Removable) {
	w.stores = append(w.stores, store)
}

func (w *World) CreateEntity() EntityID { return w.pool.Create() }
func (w *World) Alive(id EntityID) bool  { return w.pool.Alive(id) }
func (w *World) Len() int                { return w.pool.Len() }

// MarkForDestruction queues id for the next FlushDestroyQueue.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// Pending returns the number of entities waiting to be destroyed.
func (w *World) Pending() int { return len(w.destroyQueue) }

// FlushDestroyQueue destroys queued entities, clears their components and
// returns the IDs that were still alive.
func (w *World) FlushDestroyQueue() []EntityID {
	var destroyed []EntityID
	for _, id := range w.destroyQueue {
		if !w.pool.Alive(id) {
			continue
		}
		for _, s := range w.stores {
			s.Remove(id)
		}
		w.pool.Destroy(id)
		destroyed = append(destroyed, id)
	}
	w.destroyQueue = w.destroyQueue[:0]
	return destroyed
}
