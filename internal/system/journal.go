package system

import (
	"context"
	"time"

	"github.com/l1jgo/attrs/internal/attribute"
	"github.com/l1jgo/attrs/internal/core/ecs"
	coresys "github.com/l1jgo/attrs/internal/core/system"
	"github.com/l1jgo/attrs/internal/persist"
	"github.com/l1jgo/attrs/internal/world"
	"go.uber.org/zap"
)

// JournalWriter stores journal batches. *persist.JournalRepo satisfies it.
type JournalWriter interface {
	WriteJournal(ctx context.Context, entries []persist.JournalEntry) error
}

// JournalSystem records every container notification and writes them out in
// batches every few steps. Phase 2 (Persist).
type JournalSystem struct {
	writer    JournalWriter
	log       *zap.Logger
	interval  int // flush every N steps
	batchSize int

	tick      uint64
	tickCount int
	pending   []persist.JournalEntry
	now       func() time.Time
}

func NewJournalSystem(w JournalWriter, log *zap.Logger, intervalTicks, batchSize int) *JournalSystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	if batchSize < 1 {
		batchSize = 256
	}
	return &JournalSystem{
		writer:    w,
		log:       log,
		interval:  intervalTicks,
		batchSize: batchSize,
		now:       time.Now,
	}
}

func (s *JournalSystem) Phase() coresys.Phase { return coresys.PhasePersist }

// Attach starts journaling a container. Its signature matches world.SpawnHook.
func (s *JournalSystem) Attach(id ecs.EntityID, p *world.Profile, c *attribute.Container) {
	c.Bus().Listen(&entityJournal{sys: s, id: id, name: p.Name})
}

// Pending returns the number of entries not yet written.
func (s *JournalSystem) Pending() int { return len(s.pending) }

func (s *JournalSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount >= s.interval {
		s.tickCount = 0
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.Flush(ctx); err != nil {
			s.log.Error("journal flush failed", zap.Int("pending", len(s.pending)), zap.Error(err))
		}
		cancel()
	}
	s.tick++
}

// Flush writes pending entries in batches. Entries of a failed batch and the
// ones after it stay pending for the next attempt.
func (s *JournalSystem) Flush(ctx context.Context) error {
	for len(s.pending) > 0 {
		n := min(len(s.pending), s.batchSize)
		if err := s.writer.WriteJournal(ctx, s.pending[:n]); err != nil {
			return err
		}
		s.pending = s.pending[n:]
	}
	s.pending = nil
	return nil
}

func (s *JournalSystem) record(id ecs.EntityID, name string, ev any) {
	e, ok := journalEntry(ev)
	if !ok {
		return
	}
	e.Tick = s.tick
	e.Entity = name
	e.EntityID = uint64(id)
	e.RecordedAt = s.now()
	s.pending = append(s.pending, e)
}

type entityJournal struct {
	sys  *JournalSystem
	id   ecs.EntityID
	name string
}

func (l *entityJournal) HandleEvent(ev any) { l.sys.record(l.id, l.name, ev) }

func journalEntry(ev any) (persist.JournalEntry, bool) {
	var (
		e    persist.JournalEntry
		ra   *attribute.RuntimeAttribute
		buff *attribute.RuntimeBuff
	)
	switch v := ev.(type) {
	case attribute.AttributeChanged:
		e.Event, ra = "attribute_changed", v.Attribute
		e.Previous, e.Current = v.Previous, v.Current
	case attribute.BuffAdded:
		e.Event, ra, buff = "buff_added", v.Attribute, v.Buff
	case attribute.BuffRemoved:
		e.Event, ra, buff = "buff_removed", v.Attribute, v.Buff
	case attribute.BuffEnqueued:
		e.Event, ra, buff = "buff_enqueued", v.Attribute, v.Buff
	case attribute.BuffDequeued:
		e.Event, ra, buff = "buff_dequeued", v.Attribute, v.Buff
	case attribute.BuffTimeElapsed:
		e.Event, ra, buff = "buff_time_elapsed", v.Attribute, v.Buff
	case attribute.BuffTimeUpdated:
		e.Event, ra, buff = "buff_time_updated", v.Attribute, v.Buff
	default:
		return e, false
	}
	if ra != nil {
		e.Attribute = ra.Name()
		if buff != nil {
			e.Previous, e.Current = ra.Value(), ra.BuffedValue()
		}
	}
	if buff != nil {
		e.BuffID = buff.ID()
		e.TimeLeft = buff.TimeLeft()
		if def := buff.Definition(); def != nil {
			e.Buff = def.String()
		}
	}
	return e, true
}
