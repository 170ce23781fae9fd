package attribute

import (
	"fmt"
	"math"
	"strings"
)

// OperationKind selects the arithmetic an Operation performs on a base value.
type OperationKind uint8

const (
	OpAdd        OperationKind = iota // base + operand
	OpDivide                          // base / operand, 0 when |operand| < divideGuard
	OpMultiply                        // base * operand
	OpPercentage                      // base + base/100*operand
	OpSubtract                        // base - operand
	OpSet                             // operand, base ignored
)

const (
	// epsilon is the tolerance for approximate float comparisons.
	epsilon = 0.00001
	// divideGuard is the smallest divisor magnitude OpDivide accepts.
	divideGuard = 0.0001
)

var operationNames = [...]string{
	OpAdd:        "add",
	OpDivide:     "divide",
	OpMultiply:   "multiply",
	OpPercentage: "percentage",
	OpSubtract:   "subtract",
	OpSet:        "set",
}

func (k OperationKind) String() string {
	if int(k) < len(operationNames) {
		return operationNames[k]
	}
	return fmt.Sprintf("OperationKind(%d)", k)
}

// ParseOperationKind maps a lower-case operation name ("add", "set", ...) to its kind.
func ParseOperationKind(s string) (OperationKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range operationNames {
		if n == name {
			return OperationKind(k), nil
		}
	}
	return OpAdd, fmt.Errorf("unknown operation %q", s)
}

// Operation is a pure numeric transform of a base value.
type Operation struct {
	Kind    OperationKind
	Operand float64
}

func Add(v float64) Operation        { return Operation{Kind: OpAdd, Operand: v} }
func Divide(v float64) Operation     { return Operation{Kind: OpDivide, Operand: v} }
func Multiply(v float64) Operation   { return Operation{Kind: OpMultiply, Operand: v} }
func Percentage(v float64) Operation { return Operation{Kind: OpPercentage, Operand: v} }
func Subtract(v float64) Operation   { return Operation{Kind: OpSubtract, Operand: v} }

// Assign returns an operation that replaces the base value outright. It
// discards every operation folded before it.
func Assign(v float64) Operation { return Operation{Kind: OpSet, Operand: v} }

// Apply returns the operated value. Unknown kinds leave base untouched.
func (o Operation) Apply(base float64) float64 {
	switch o.Kind {
	case OpAdd:
		return base + o.Operand
	case OpDivide:
		if math.Abs(o.Operand) < divideGuard {
			return 0
		}
		return base / o.Operand
	case OpMultiply:
		return base * o.Operand
	case OpPercentage:
		return base + (base/100)*o.Operand
	case OpSubtract:
		return base - o.Operand
	case OpSet:
		return o.Operand
	default:
		return base
	}
}

// Equal compares kinds exactly and operands approximately.
func (o Operation) Equal(other Operation) bool {
	return o.Kind == other.Kind && approxEqual(o.Operand, other.Operand)
}

func (o Operation) String() string {
	return fmt.Sprintf("%s(%g)", o.Kind, o.Operand)
}

// approxEqual uses a tolerance relative to a, floored at epsilon.
func approxEqual(a, b float64) bool {
	if a == b {
		return true
	}
	tolerance := epsilon * math.Abs(a)
	if tolerance < epsilon {
		tolerance = epsilon
	}
	return math.Abs(a-b) < tolerance
}

func approxZero(v float64) bool {
	return math.Abs(v) < epsilon
}
