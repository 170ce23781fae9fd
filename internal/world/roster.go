package world

import (
	"errors"
	"fmt"

	"github.com/l1jgo/attrs/internal/attribute"
	"github.com/l1jgo/attrs/internal/core/ecs"
	"go.uber.org/zap"
)

var (
	ErrDuplicateEntity = errors.New("entity name already spawned")
	ErrUnknownEntity   = errors.New("unknown entity")
)

// Profile labels an entity for lookups and journaling.
type Profile struct {
	Name    string
	SetName string
}

// SpawnHook runs once per spawned entity, after its container is set up.
type SpawnHook func(id ecs.EntityID, p *Profile, c *attribute.Container)

// Roster owns every simulated entity and its attribute container.
// Accessed only from the simulation loop goroutine; no locks.
type Roster struct {
	ecs        *ecs.World
	profiles   *ecs.Store[Profile]
	containers *ecs.Store[attribute.Container]
	byName     map[string]ecs.EntityID

	log   *zap.Logger
	opts  []attribute.Option
	hooks []SpawnHook
}

// NewRoster builds an empty roster. opts apply to every container it creates.
func NewRoster(log *zap.Logger, opts ...attribute.Option) *Roster {
	w := ecs.NewWorld()
	r := &Roster{
		ecs:        w,
		profiles:   ecs.NewStore[Profile](),
		containers: ecs.NewStore[attribute.Container](),
		byName:     make(map[string]ecs.EntityID),
		log:        log,
		opts:       opts,
	}
	w.Track(r.profiles)
	w.Track(r.containers)
	return r
}

func (r *Roster) OnSpawn(fn SpawnHook) { r.hooks = append(r.hooks, fn) }

// Spawn creates an entity named name whose container is set up from set.
func (r *Roster) Spawn(name string, set *attribute.Set, opts ...attribute.Option) (ecs.EntityID, error) {
	if _, ok := r.byName[name]; ok {
		return 0, fmt.Errorf("spawn %q: %w", name, ErrDuplicateEntity)
	}
	all := make([]attribute.Option, 0, len(r.opts)+len(opts)+1)
	all = append(all, attribute.WithLogger(r.log.With(zap.String("entity", name))))
	all = append(all, r.opts...)
	all = append(all, opts...)

	c, err := attribute.NewContainer(set, all...)
	if err != nil {
		return 0, fmt.Errorf("spawn %q: %w", name, err)
	}

	id := r.ecs.CreateEntity()
	p := &Profile{Name: name}
	if set != nil {
		p.SetName = set.Name()
	}
	r.profiles.Set(id, p)
	r.containers.Set(id, c)
	r.byName[name] = id

	for _, h := range r.hooks {
		h(id, p, c)
	}
	r.log.Info("entity spawned",
		zap.String("entity", name),
		zap.Stringer("id", id),
		zap.String("set", p.SetName),
	)
	return id, nil
}

// Get returns the container of a live entity.
func (r *Roster) Get(id ecs.EntityID) (*attribute.Container, bool) {
	if !r.ecs.Alive(id) {
		return nil, false
	}
	return r.containers.Get(id)
}

func (r *Roster) Profile(id ecs.EntityID) (*Profile, bool) {
	if !r.ecs.Alive(id) {
		return nil, false
	}
	return r.profiles.Get(id)
}

// Lookup resolves an entity by its spawn name.
func (r *Roster) Lookup(name string) (ecs.EntityID, *attribute.Container, bool) {
	id, ok := r.byName[name]
	if !ok {
		return 0, nil, false
	}
	c, ok := r.Get(id)
	return id, c, ok
}

// Despawn queues the entity for removal by the next Flush. The entity stays
// reachable until then.
func (r *Roster) Despawn(id ecs.EntityID) error {
	if !r.ecs.Alive(id) {
		return fmt.Errorf("despawn %s: %w", id, ErrUnknownEntity)
	}
	r.ecs.MarkForDestruction(id)
	return nil
}

// Flush removes every entity queued by Despawn.
func (r *Roster) Flush() int {
	names := make(map[ecs.EntityID]string)
	r.profiles.Each(func(id ecs.EntityID, p *Profile) { names[id] = p.Name })

	destroyed := r.ecs.FlushDestroyQueue()
	for _, id := range destroyed {
		name := names[id]
		delete(r.byName, name)
		r.log.Info("entity despawned", zap.String("entity", name), zap.Stringer("id", id))
	}
	return len(destroyed)
}

// Each visits live entities in ID order.
func (r *Roster) Each(fn func(id ecs.EntityID, p *Profile, c *attribute.Container)) {
	ecs.Each2(r.profiles, r.containers, fn)
}

func (r *Roster) Len() int { return r.ecs.Len() }
