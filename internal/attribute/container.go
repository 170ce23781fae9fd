package attribute

import (
	"fmt"

	"github.com/l1jgo/attrs/internal/core/event"
	"go.uber.org/zap"
)

// Container owns every RuntimeAttribute of one game entity. It resolves buffs to
// their targets, decays queued buffs on each tick and refreshes derived
// attributes when their parents change.
//
// A Container is not safe for concurrent use; drive it from the owning
// entity's update loop.
type Container struct {
	set        *Set
	attributes map[string]*RuntimeAttribute
	order      []string
	// derived maps a parent attribute name to the attributes computed from it.
	derived map[string][]*RuntimeAttribute

	bus           *event.Bus
	log           *zap.Logger
	manualTicking bool
}

type Option func(*Container)

// WithLogger sets the container logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Container) { c.log = log }
}

// WithManualTicking marks the container as advanced by the host through OnTick
// rather than by the tick system. Useful for turn-based games.
func WithManualTicking(manual bool) Option {
	return func(c *Container) { c.manualTicking = manual }
}

// NewContainer builds a container and runs Setup on set. A nil set yields an
// empty container that attributes can be added to one by one.
func NewContainer(set *Set, opts ...Option) (*Container, error) {
	c := &Container{
		set:        set,
		attributes: make(map[string]*RuntimeAttribute),
		derived:    make(map[string][]*RuntimeAttribute),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.bus = event.NewBus()
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if err := c.Setup(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) Bus() *event.Bus     { return c.bus }
func (c *Container) AttributeSet() *Set  { return c.set }
func (c *Container) ManualTicking() bool { return c.manualTicking }

func (c *Container) SetManualTicking(manual bool) { c.manualTicking = manual }

// Setup discards all runtime state and instantiates one RuntimeAttribute per
// definition of the configured set. Computable attributes with dependencies are
// computed once every attribute is registered.
func (c *Container) Setup() error {
	c.attributes = make(map[string]*RuntimeAttribute)
	c.derived = make(map[string][]*RuntimeAttribute)
	c.order = c.order[:0]
	c.bus.Discard()

	if c.set == nil {
		return nil
	}
	for _, def := range c.set.Definitions() {
		if err := c.register(def); err != nil {
			return fmt.Errorf("setup %q: %w", c.set.Name(), err)
		}
	}
	for _, name := range c.order {
		if ra := c.attributes[name]; ra.IsComputable() && len(ra.DerivedFrom()) > 0 {
			ra.computeValue()
		}
	}
	c.flush()
	return nil
}

// SetAttributeSet swaps the configured set and re-runs Setup.
func (c *Container) SetAttributeSet(set *Set) error {
	c.set = set
	return c.Setup()
}

// AddAttribute registers def, adding it to the attribute set when missing.
func (c *Container) AddAttribute(def *Definition) error {
	if def == nil {
		return ErrNilDefinition
	}
	if c.set == nil {
		c.set = NewSet("")
	}
	if _, ok := c.attributes[def.AttributeName()]; ok {
		return fmt.Errorf("add %q: %w", def.AttributeName(), ErrDuplicateAttribute)
	}
	added := c.set.Add(def)
	if err := c.register(def); err != nil {
		if added {
			c.set.Remove(def)
		}
		return err
	}
	if ra := c.attributes[def.AttributeName()]; ra.IsComputable() && len(ra.DerivedFrom()) > 0 {
		ra.ComputeValue()
	}
	return nil
}

func (c *Container) register(def *Definition) error {
	if def == nil {
		return ErrNilDefinition
	}
	name := def.AttributeName()
	if _, ok := c.attributes[name]; ok {
		c.log.Warn("duplicate attribute", zap.String("attribute", name))
		return fmt.Errorf("register %q: %w", name, ErrDuplicateAttribute)
	}

	if def.DerivedFrom != nil {
		for _, dep := range def.DerivedFrom(c.set) {
			if dep == nil {
				c.log.Warn("base attribute missing", zap.String("attribute", name))
				return fmt.Errorf("register %q: base attribute: %w", name, ErrNilDefinition)
			}
		}
	}

	ra := newRuntimeAttribute(c, def)
	parents := ra.DerivedFrom()
	for _, p := range parents {
		c.derived[p.AttributeName()] = append(c.derived[p.AttributeName()], ra)
	}
	// Attributes registered earlier may only now resolve name as a parent.
	prevChildren := c.derived[name]
	for _, existing := range c.attributes {
		if dependsOn(existing, name) && !contains(c.derived[name], existing) {
			c.derived[name] = append(c.derived[name], existing)
		}
	}
	if c.reaches(name, name, make(map[string]bool)) {
		for _, p := range parents {
			c.derived[p.AttributeName()] = without(c.derived[p.AttributeName()], ra)
		}
		c.derived[name] = prevChildren[:len(prevChildren):len(prevChildren)]
		if len(c.derived[name]) == 0 {
			delete(c.derived, name)
		}
		c.log.Warn("derivation cycle", zap.String("attribute", name))
		return fmt.Errorf("register %q: %w", name, ErrDerivationCycle)
	}

	c.attributes[name] = ra
	c.order = append(c.order, name)
	return nil
}

// reaches reports whether target is reachable from name through the derived index.
func (c *Container) reaches(name, target string, seen map[string]bool) bool {
	for _, dep := range c.derived[name] {
		depName := dep.Name()
		if depName == target {
			return true
		}
		if seen[depName] {
			continue
		}
		seen[depName] = true
		if c.reaches(depName, target, seen) {
			return true
		}
	}
	return false
}

// RemoveAttribute unregisters def's runtime attribute. The definition stays in
// the attribute set.
func (c *Container) RemoveAttribute(def *Definition) error {
	if def == nil {
		return ErrNilDefinition
	}
	name := def.AttributeName()
	ra, ok := c.attributes[name]
	if !ok {
		return fmt.Errorf("remove %q: %w", name, ErrAttributeNotFound)
	}
	delete(c.attributes, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	for parent, deps := range c.derived {
		c.derived[parent] = without(deps, ra)
	}
	return nil
}

// ApplyBuff routes b to its target attribute, or through AppliesTo/Operate for
// multi-target buffs. Returned RuntimeBuffs are the accepted applications;
// an empty result with a nil error means every target rejected the buff.
func (c *Container) ApplyBuff(b *BuffDefinition) ([]*RuntimeBuff, error) {
	if b == nil {
		return nil, ErrNilBuff
	}

	if b.IsMultiTarget() {
		targets, err := c.resolveTargets(b)
		if err != nil {
			return nil, err
		}
		values := make([]float64, len(targets))
		for i, t := range targets {
			values[i] = t.BuffedValue()
		}
		ops := b.Operate(values, c.set)
		if len(ops) != len(targets) {
			c.log.Warn("operate result mismatch",
				zap.Stringer("buff", b),
				zap.Int("targets", len(targets)),
				zap.Int("operations", len(ops)),
			)
			return nil, fmt.Errorf("apply %s: %w", b, ErrOperationCount)
		}

		applied := make([]*RuntimeBuff, 0, len(targets))
		for i, t := range targets {
			if rb := t.addBuff(b.derive(t.Name(), ops[i])); rb != nil {
				applied = append(applied, rb)
			} else {
				c.log.Debug("buff rejected", zap.Stringer("buff", b), zap.String("attribute", t.Name()))
			}
		}
		c.flush()
		return applied, nil
	}

	ra, ok := c.attributes[b.AttributeName]
	if !ok {
		c.log.Warn("buff target missing", zap.Stringer("buff", b))
		return nil, fmt.Errorf("apply %s: %q: %w", b, b.AttributeName, ErrAttributeNotFound)
	}
	rb := ra.addBuff(b)
	c.flush()
	if rb == nil {
		c.log.Debug("buff rejected", zap.Stringer("buff", b), zap.String("attribute", ra.Name()))
		return nil, nil
	}
	return []*RuntimeBuff{rb}, nil
}

// RemoveBuff removes b's queued applications and returns how many entries left
// a queue. Multi-target buffs remove one synthesized entry per target.
func (c *Container) RemoveBuff(b *BuffDefinition) (int, error) {
	if b == nil {
		return 0, ErrNilBuff
	}

	removed := 0
	if b.IsMultiTarget() {
		targets, err := c.resolveTargets(b)
		if err != nil {
			return 0, err
		}
		for _, t := range targets {
			if t.removeWhere(func(rb *RuntimeBuff) bool {
				return rb.def != nil && rb.def.Parent != nil && rb.def.Parent.Equal(b)
			}) {
				removed++
			}
		}
	} else {
		ra, ok := c.attributes[b.AttributeName]
		if !ok {
			return 0, fmt.Errorf("remove %s: %q: %w", b, b.AttributeName, ErrAttributeNotFound)
		}
		if ra.removeWhere(func(rb *RuntimeBuff) bool { return rb.Equal(b) }) {
			removed++
		}
	}
	c.flush()
	return removed, nil
}

// resolveTargets validates a multi-target buff and maps AppliesTo onto runtime
// attributes. It fails before anything is mutated.
func (c *Container) resolveTargets(b *BuffDefinition) ([]*RuntimeAttribute, error) {
	if b.AppliesTo == nil {
		return nil, fmt.Errorf("%s: %w", b, ErrMissingAppliesTo)
	}
	defs := b.AppliesTo(c.set)
	targets := make([]*RuntimeAttribute, 0, len(defs))
	for _, d := range defs {
		if d == nil {
			return nil, fmt.Errorf("%s: %w", b, ErrNilDefinition)
		}
		ra, ok := c.attributes[d.AttributeName()]
		if !ok {
			c.log.Warn("buff target missing", zap.Stringer("buff", b), zap.String("attribute", d.AttributeName()))
			return nil, fmt.Errorf("%s: %q: %w", b, d.AttributeName(), ErrAttributeNotFound)
		}
		targets = append(targets, ra)
	}
	return targets, nil
}

// SetAttributeValue overwrites a base value and propagates the change.
func (c *Container) SetAttributeValue(name string, v float64) error {
	ra, ok := c.attributes[name]
	if !ok {
		return fmt.Errorf("set %q: %w", name, ErrAttributeNotFound)
	}
	ra.SetValue(v)
	return nil
}

// Attribute returns the runtime attribute registered under name, or nil.
func (c *Container) Attribute(name string) *RuntimeAttribute {
	return c.attributes[name]
}

func (c *Container) Has(name string) bool {
	_, ok := c.attributes[name]
	return ok
}

// Attributes returns runtime attributes in registration order.
func (c *Container) Attributes() []*RuntimeAttribute {
	out := make([]*RuntimeAttribute, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.attributes[name])
	}
	return out
}

// Dependents returns the attributes directly computed from name.
func (c *Container) Dependents(name string) []*RuntimeAttribute {
	deps := c.derived[name]
	out := make([]*RuntimeAttribute, len(deps))
	copy(out, deps)
	return out
}

// Value returns the base value of name, or 0 when it is not registered.
func (c *Container) Value(name string) float64 {
	if ra := c.attributes[name]; ra != nil {
		return ra.Value()
	}
	return 0
}

// BuffedValue returns the buffed value of name, or 0 when it is not registered.
func (c *Container) BuffedValue(name string) float64 {
	if ra := c.attributes[name]; ra != nil {
		return ra.BuffedValue()
	}
	return 0
}

// PreviousValue returns the previous base value of name, or 0 when it is not registered.
func (c *Container) PreviousValue(name string) float64 {
	if ra := c.attributes[name]; ra != nil {
		return ra.PreviousValue()
	}
	return 0
}

// Find returns the first attribute, in registration order, matching pred.
func (c *Container) Find(pred func(*RuntimeAttribute) bool) *RuntimeAttribute {
	for _, name := range c.order {
		if ra := c.attributes[name]; pred(ra) {
			return ra
		}
	}
	return nil
}

func (c *Container) FindValue(pred func(*RuntimeAttribute) bool) float64 {
	if ra := c.Find(pred); ra != nil {
		return ra.Value()
	}
	return 0
}

func (c *Container) FindBuffedValue(pred func(*RuntimeAttribute) bool) float64 {
	if ra := c.Find(pred); ra != nil {
		return ra.BuffedValue()
	}
	return 0
}

// flush dispatches queued notifications and refreshes dependents of every
// attribute whose value or queue changed.
func (c *Container) flush() {
	c.bus.Flush(c.propagate)
}

func (c *Container) propagate(ev any) {
	var changed *RuntimeAttribute
	switch e := ev.(type) {
	case AttributeChanged:
		changed = e.Attribute
	case BuffAdded:
		changed = e.Attribute
	case BuffRemoved:
		changed = e.Attribute
	default:
		return
	}
	// Ignore events from attributes removed while the queue was pending.
	if changed == nil || c.attributes[changed.Name()] != changed {
		return
	}
	for _, dep := range c.derived[changed.Name()] {
		dep.computeValue()
	}
}

func dependsOn(ra *RuntimeAttribute, parent string) bool {
	for _, d := range ra.DerivedFrom() {
		if d.AttributeName() == parent {
			return true
		}
	}
	return false
}

func contains(list []*RuntimeAttribute, ra *RuntimeAttribute) bool {
	for _, x := range list {
		if x == ra {
			return true
		}
	}
	return false
}

func without(list []*RuntimeAttribute, ra *RuntimeAttribute) []*RuntimeAttribute {
	out := list[:0]
	for _, x := range list {
		if x != ra {
			out = append(out, x)
		}
	}
	return out
}
