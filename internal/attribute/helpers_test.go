package attribute

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// eventLog records every notification a container dispatches.
type eventLog struct{ events []any }

func (l *eventLog) HandleEvent(ev any) { l.events = append(l.events, ev) }

func ofType[T any](l *eventLog) []T {
	var out []T
	for _, ev := range l.events {
		if e, ok := ev.(T); ok {
			out = append(out, e)
		}
	}
	return out
}

func (l *eventLog) reset() { l.events = nil }

func newTestContainer(t *testing.T, defs ...*Definition) (*Container, *eventLog) {
	t.Helper()
	c, err := NewContainer(NewSet("test", defs...))
	require.NoError(t, err)
	log := &eventLog{}
	c.Bus().Listen(log)
	return c, log
}

func transient(attr string, op Operation, duration float64) *BuffDefinition {
	return &BuffDefinition{
		AttributeName: attr,
		DisplayName:   "test",
		Duration:      duration,
		Operation:     op,
		Transient:     true,
	}
}

func permanent(attr string, op Operation) *BuffDefinition {
	return &BuffDefinition{AttributeName: attr, DisplayName: "test", Operation: op}
}
