package system

import (
	"time"

	coresys "github.com/l1jgo/attrs/internal/core/system"
	"github.com/l1jgo/attrs/internal/world"
)

// CleanupSystem flushes the roster's deferred despawn queue at step end.
// Phase 3 (Cleanup).
type CleanupSystem struct {
	roster *world.Roster
}

func NewCleanupSystem(roster *world.Roster) *CleanupSystem {
	return &CleanupSystem{roster: roster}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.roster.Flush()
}
