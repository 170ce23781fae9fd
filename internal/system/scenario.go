package system

import (
	"fmt"
	"sort"
	"time"

	"github.com/l1jgo/attrs/internal/attribute"
	"github.com/l1jgo/attrs/internal/config"
	coresys "github.com/l1jgo/attrs/internal/core/system"
	"github.com/l1jgo/attrs/internal/world"
	"go.uber.org/zap"
)

// SetSource builds attribute sets by name.
type SetSource interface {
	Set(name string) (*attribute.Set, bool)
}

// BuffSource resolves buff definitions by id.
type BuffSource interface {
	Get(id string) (*attribute.BuffDefinition, bool)
}

// ScenarioSystem replays scripted actions at the start of their step.
// Failed actions are logged and skipped. Phase 0 (Input).
type ScenarioSystem struct {
	roster *world.Roster
	sets   SetSource
	buffs  BuffSource
	log    *zap.Logger

	steps []config.ScenarioStep
	next  int
	tick  uint64
}

func NewScenarioSystem(roster *world.Roster, sets SetSource, buffs BuffSource, steps []config.ScenarioStep, log *zap.Logger) *ScenarioSystem {
	sorted := make([]config.ScenarioStep, len(steps))
	copy(sorted, steps)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Tick < sorted[j].Tick })
	return &ScenarioSystem{
		roster: roster,
		sets:   sets,
		buffs:  buffs,
		log:    log,
		steps:  sorted,
	}
}

func (s *ScenarioSystem) Phase() coresys.Phase { return coresys.PhaseInput }

// Done reports whether every step has run.
func (s *ScenarioSystem) Done() bool { return s.next >= len(s.steps) }

func (s *ScenarioSystem) Update(_ time.Duration) {
	for s.next < len(s.steps) && s.steps[s.next].Tick <= s.tick {
		step := s.steps[s.next]
		s.next++
		if err := s.run(step); err != nil {
			s.log.Warn("scenario step failed",
				zap.Uint64("tick", s.tick),
				zap.String("action", step.Action),
				zap.String("entity", step.Entity),
				zap.Error(err),
			)
		}
	}
	s.tick++
}

func (s *ScenarioSystem) run(step config.ScenarioStep) error {
	if step.Action == config.ActionSpawn {
		set, ok := s.sets.Set(step.Set)
		if !ok {
			return fmt.Errorf("unknown attribute set %q", step.Set)
		}
		_, err := s.roster.Spawn(step.Entity, set)
		return err
	}

	id, c, ok := s.roster.Lookup(step.Entity)
	if !ok {
		return fmt.Errorf("%q: %w", step.Entity, world.ErrUnknownEntity)
	}

	switch step.Action {
	case config.ActionApply:
		b, ok := s.buffs.Get(step.Buff)
		if !ok {
			return fmt.Errorf("unknown buff %q", step.Buff)
		}
		applied, err := c.ApplyBuff(b)
		if err != nil {
			return err
		}
		s.log.Debug("buff applied",
			zap.String("entity", step.Entity),
			zap.String("buff", step.Buff),
			zap.Int("accepted", len(applied)),
		)
	case config.ActionRemove:
		b, ok := s.buffs.Get(step.Buff)
		if !ok {
			return fmt.Errorf("unknown buff %q", step.Buff)
		}
		n, err := c.RemoveBuff(b)
		if err != nil {
			return err
		}
		s.log.Debug("buff removed",
			zap.String("entity", step.Entity),
			zap.String("buff", step.Buff),
			zap.Int("removed", n),
		)
	case config.ActionSet:
		return c.SetAttributeValue(step.Attribute, step.Value)
	case config.ActionTick:
		c.OnTick(step.Value)
	case config.ActionDespawn:
		return s.roster.Despawn(id)
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}
	return nil
}
