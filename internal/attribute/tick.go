package attribute

import (
	"github.com/l1jgo/attrs/internal/core/event"
	"go.uber.org/zap"
)

// OnTick advances every time-based transient buff by dt seconds. The source of
// dt (physics step, turn advance) is the caller's business.
//
// Each queue is walked newest to oldest over a snapshot, so expiring entries
// never shift unvisited ones. A waterfall buff only counts down when no
// structurally equal entry sits before it in the queue.
func (c *Container) OnTick(dt float64) {
	for _, name := range c.order {
		c.tickAttribute(c.attributes[name], dt)
	}
	c.flush()
}

func (c *Container) tickAttribute(ra *RuntimeAttribute, dt float64) {
	if len(ra.buffs) == 0 {
		return
	}
	queue := ra.Buffs()

	for j := len(queue) - 1; j >= 0; j-- {
		rb := queue[j]
		if !rb.IsTimeBasedTransient() {
			continue
		}
		if rb.def.QueueMode == QueueWaterfall && blocked(queue[:j], rb) {
			continue
		}

		rb.SetTimeLeft(rb.timeLeft - dt)
		event.Emit(c.bus, BuffTimeElapsed{Attribute: ra, Buff: rb, Delta: dt})

		if rb.CanExpire() {
			event.Emit(c.bus, BuffDequeued{Attribute: ra, Buff: rb})
			ra.removeRuntimeBuff(rb)
			c.log.Debug("buff expired",
				zap.String("attribute", ra.Name()),
				zap.Stringer("buff", rb.def),
				zap.String("id", rb.id),
			)
		}
	}
}

// blocked reports whether an earlier entry of the queue is equal to rb.
func blocked(earlier []*RuntimeBuff, rb *RuntimeBuff) bool {
	for k := len(earlier) - 1; k >= 0; k-- {
		if earlier[k].Equal(rb.def) {
			return true
		}
	}
	return false
}
