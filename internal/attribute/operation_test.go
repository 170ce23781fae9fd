package attribute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperation_Apply(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		base float64
		want float64
	}{
		{"add", Add(5), 10, 15},
		{"subtract", Subtract(20), 100, 80},
		{"multiply", Multiply(1.5), 10, 15},
		{"divide", Divide(4), 10, 2.5},
		{"divide by near zero", Divide(0.00005), 10, 0},
		{"divide by negative near zero", Divide(-0.00009), 42, 0},
		{"percentage", Percentage(10), 200, 220},
		{"negative percentage", Percentage(-50), 80, 40},
		{"set ignores base", Assign(7), 1000, 7},
		{"unknown kind is identity", Operation{Kind: OperationKind(99), Operand: 3}, 12, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.op.Apply(tt.base), 1e-9)
			// Pure: same input, same output.
			assert.Equal(t, tt.op.Apply(tt.base), tt.op.Apply(tt.base))
		})
	}
}

func TestOperation_Equal(t *testing.T) {
	assert.True(t, Add(1).Equal(Add(1.000001)))
	assert.False(t, Add(1).Equal(Add(1.1)))
	assert.False(t, Add(1).Equal(Subtract(1)))
}

func TestParseOperationKind(t *testing.T) {
	for k, name := range operationNames {
		got, err := ParseOperationKind(name)
		require.NoError(t, err)
		assert.Equal(t, OperationKind(k), got)
	}

	got, err := ParseOperationKind("  Percentage ")
	require.NoError(t, err)
	assert.Equal(t, OpPercentage, got)

	_, err = ParseOperationKind("modulo")
	assert.Error(t, err)
}
