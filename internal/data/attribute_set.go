package data

import (
	"fmt"
	"os"
	"sort"

	"github.com/l1jgo/attrs/internal/attribute"
	"gopkg.in/yaml.v3"
)

// AttributeSets holds attribute definitions and the named sets built from them.
// Definitions are shared by every set that lists them, so hooks bound once
// apply everywhere.
type AttributeSets struct {
	defs map[string]*attribute.Definition
	sets map[string][]string // set name → attribute names, in file order
}

// Definition returns a definition by attribute name, or nil if not found.
func (t *AttributeSets) Definition(name string) *attribute.Definition {
	return t.defs[name]
}

// Definitions returns every definition sorted by name.
func (t *AttributeSets) Definitions() []*attribute.Definition {
	out := make([]*attribute.Definition, 0, len(t.defs))
	for _, d := range t.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Set builds a fresh attribute set so containers never share set membership.
func (t *AttributeSets) Set(name string) (*attribute.Set, bool) {
	names, ok := t.sets[name]
	if !ok {
		return nil, false
	}
	set := attribute.NewSet(name)
	for _, n := range names {
		set.Add(t.defs[n])
	}
	return set, true
}

// Count returns the number of loaded sets.
func (t *AttributeSets) Count() int {
	return len(t.sets)
}

// --- YAML loading ---

type attributeEntry struct {
	Name    string  `yaml:"name"`
	Initial float64 `yaml:"initial"`
}

type setEntry struct {
	Name       string   `yaml:"name"`
	Attributes []string `yaml:"attributes"`
}

type attributeSetFile struct {
	Attributes []attributeEntry `yaml:"attributes"`
	Sets       []setEntry       `yaml:"sets"`
}

// LoadAttributeSets loads attribute definitions and sets from YAML.
func LoadAttributeSets(path string) (*AttributeSets, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attribute sets: %w", err)
	}
	var f attributeSetFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse attribute sets: %w", err)
	}

	t := &AttributeSets{
		defs: make(map[string]*attribute.Definition, len(f.Attributes)),
		sets: make(map[string][]string, len(f.Sets)),
	}
	for _, e := range f.Attributes {
		if e.Name == "" {
			return nil, fmt.Errorf("attribute sets %s: attribute without name", path)
		}
		if _, dup := t.defs[e.Name]; dup {
			return nil, fmt.Errorf("attribute sets %s: duplicate attribute %q", path, e.Name)
		}
		t.defs[e.Name] = attribute.NewDefinition(e.Name, e.Initial)
	}
	for _, s := range f.Sets {
		if _, dup := t.sets[s.Name]; dup {
			return nil, fmt.Errorf("attribute sets %s: duplicate set %q", path, s.Name)
		}
		for _, n := range s.Attributes {
			if _, ok := t.defs[n]; !ok {
				return nil, fmt.Errorf("attribute sets %s: set %q lists unknown attribute %q", path, s.Name, n)
			}
		}
		t.sets[s.Name] = s.Attributes
	}
	return t, nil
}
