package attribute

// DefaultName is used for definitions authored without a name.
const DefaultName = "Attribute"

// DerivedFromFunc lists the attributes a definition is computed from.
type DerivedFromFunc func(set *Set) []*Definition

// ComputeValueFunc returns the attribute's new value. It may ignore
// Computation.OperatedValue entirely.
type ComputeValueFunc func(c *Computation) float64

// Definition is a designer-authored attribute. Both hooks are optional: without
// DerivedFrom the attribute is independent, without ComputeValue permanent buffs
// assign their operated value directly.
type Definition struct {
	Name         string
	InitialValue float64

	DerivedFrom  DerivedFromFunc
	ComputeValue ComputeValueFunc
}

// NewDefinition returns an independent attribute starting at initial.
func NewDefinition(name string, initial float64) *Definition {
	return &Definition{Name: name, InitialValue: initial}
}

// AttributeName returns Name, or DefaultName when unset.
func (d *Definition) AttributeName() string {
	if d.Name == "" {
		return DefaultName
	}
	return d.Name
}

func (d *Definition) IsComputable() bool { return d.ComputeValue != nil }

// Dependencies resolves the DerivedFrom hook against set. Nil entries are
// dropped; registration already rejects hooks that produce them.
func (d *Definition) Dependencies(set *Set) []*Definition {
	if d.DerivedFrom == nil {
		return nil
	}
	deps := d.DerivedFrom(set)
	out := deps[:0:0]
	for _, dep := range deps {
		if dep != nil {
			out = append(out, dep)
		}
	}
	return out
}

// Computation is the argument handed to a ComputeValueFunc.
type Computation struct {
	Container *Container
	// Buff is the permanent buff being applied, nil on a dependency refresh.
	Buff *BuffDefinition
	// OperatedValue is Buff applied to the current value, or the current value
	// itself on a dependency refresh. Not committed yet.
	OperatedValue float64
	Attribute     *RuntimeAttribute
}

// Parents returns the runtime attributes the computed attribute derives from.
func (c *Computation) Parents() []*RuntimeAttribute {
	if c.Attribute == nil {
		return nil
	}
	return c.Attribute.Parents()
}
