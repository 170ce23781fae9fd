package ecs

// Each2 visits entities holding both components, in ascending ID order. The
// smaller store drives the walk.
func Each2[A, B any](sa *Store[A], sb *Store[B], fn func(EntityID, *A, *B)) {
	if sa.Len() <= sb.Len() {
		for _, id := range sa.IDs() {
			if b, ok := sb.data[id]; ok {
				fn(id, sa.data[id], b)
			}
		}
		return
	}
	for _, id := range sb.IDs() {
		if a, ok := sa.data[id]; ok {
			fn(id, a, sb.data[id])
		}
	}
}
