package attribute

// Set is an ordered, named collection of attribute definitions. Entries are
// unique by identity, not by name.
type Set struct {
	name        string
	definitions []*Definition
}

// NewSet builds a set, silently skipping nil and repeated definitions.
func NewSet(name string, defs ...*Definition) *Set {
	s := &Set{name: name, definitions: make([]*Definition, 0, len(defs))}
	s.AddAll(defs...)
	return s
}

func (s *Set) Name() string        { return s.name }
func (s *Set) SetName(name string) { s.name = name }
func (s *Set) Len() int            { return len(s.definitions) }

// Add appends def unless it is nil or already present.
func (s *Set) Add(def *Definition) bool {
	if def == nil || s.Has(def) {
		return false
	}
	s.definitions = append(s.definitions, def)
	return true
}

// AddAll returns how many definitions were actually added.
func (s *Set) AddAll(defs ...*Definition) int {
	n := 0
	for _, d := range defs {
		if s.Add(d) {
			n++
		}
	}
	return n
}

func (s *Set) Remove(def *Definition) bool {
	i := s.Index(def)
	if i < 0 {
		return false
	}
	s.definitions = append(s.definitions[:i], s.definitions[i+1:]...)
	return true
}

func (s *Set) RemoveAll(defs ...*Definition) int {
	n := 0
	for _, d := range defs {
		if s.Remove(d) {
			n++
		}
	}
	return n
}

func (s *Set) Has(def *Definition) bool { return s.Index(def) >= 0 }

// Index returns the position of def, or -1.
func (s *Set) Index(def *Definition) int {
	for i, d := range s.definitions {
		if d == def {
			return i
		}
	}
	return -1
}

// At returns the definition at i, or nil when out of range.
func (s *Set) At(i int) *Definition {
	if i < 0 || i >= len(s.definitions) {
		return nil
	}
	return s.definitions[i]
}

// FindByName returns the first definition with the given attribute name.
func (s *Set) FindByName(name string) *Definition {
	for _, d := range s.definitions {
		if d.AttributeName() == name {
			return d
		}
	}
	return nil
}

func (s *Set) Names() []string {
	names := make([]string, len(s.definitions))
	for i, d := range s.definitions {
		names[i] = d.AttributeName()
	}
	return names
}

// Definitions returns a copy of the ordered entries.
func (s *Set) Definitions() []*Definition {
	out := make([]*Definition, len(s.definitions))
	copy(out, s.definitions)
	return out
}
