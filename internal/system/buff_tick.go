package system

import (
	"time"

	"github.com/l1jgo/attrs/internal/attribute"
	"github.com/l1jgo/attrs/internal/core/ecs"
	coresys "github.com/l1jgo/attrs/internal/core/system"
	"github.com/l1jgo/attrs/internal/world"
)

// AttributeTickSystem decays queued buffs of every automatically ticked
// container by the step duration. Manually ticked containers are left to the
// host. Phase 1 (Update).
type AttributeTickSystem struct {
	roster *world.Roster
}

func NewAttributeTickSystem(roster *world.Roster) *AttributeTickSystem {
	return &AttributeTickSystem{roster: roster}
}

func (s *AttributeTickSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *AttributeTickSystem) Update(dt time.Duration) {
	delta := dt.Seconds()
	s.roster.Each(func(_ ecs.EntityID, _ *world.Profile, c *attribute.Container) {
		if c.ManualTicking() {
			return
		}
		c.OnTick(delta)
	})
}
