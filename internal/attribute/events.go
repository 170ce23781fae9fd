package attribute

// Notifications published on a Container's bus. Subscribe with
// event.Subscribe[attribute.BuffAdded](c.Bus(), fn) or attach an event.Listener.

// AttributeChanged fires when an attribute's base value moves by more than epsilon.
type AttributeChanged struct {
	Attribute *RuntimeAttribute
	Previous  float64
	Current   float64
}

// BuffAdded fires when a transient buff joins an attribute's queue.
type BuffAdded struct {
	Attribute *RuntimeAttribute
	Buff      *RuntimeBuff
}

// BuffRemoved fires when a queued buff leaves the queue, by expiry or removal.
type BuffRemoved struct {
	Attribute *RuntimeAttribute
	Buff      *RuntimeBuff
}

// BuffEnqueued fires for queued buffs that will decay over time.
type BuffEnqueued struct {
	Attribute *RuntimeAttribute
	Buff      *RuntimeBuff
}

// BuffDequeued fires when a decaying buff runs out, right before its removal.
type BuffDequeued struct {
	Attribute *RuntimeAttribute
	Buff      *RuntimeBuff
}

// BuffTimeElapsed fires each tick a buff's countdown advances.
type BuffTimeElapsed struct {
	Attribute *RuntimeAttribute
	Buff      *RuntimeBuff
	Delta     float64
}

// BuffTimeUpdated fires when an Add/Restart merge touches an already queued buff.
type BuffTimeUpdated struct {
	Attribute *RuntimeAttribute
	Buff      *RuntimeBuff
}
