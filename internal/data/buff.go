package data

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/l1jgo/attrs/internal/attribute"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// BuffTable holds buff definitions indexed by id. Buffs without an attribute
// are expected to be bound to applies_to/operate script hooks.
type BuffTable struct {
	buffs map[string]*attribute.BuffDefinition
}

// Get returns a buff by id.
func (t *BuffTable) Get(id string) (*attribute.BuffDefinition, bool) {
	b, ok := t.buffs[id]
	return b, ok
}

// Count returns total loaded buffs.
func (t *BuffTable) Count() int {
	return len(t.buffs)
}

// IDs returns every buff id, sorted.
func (t *BuffTable) IDs() []string {
	ids := make([]string, 0, len(t.buffs))
	for id := range t.buffs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// --- YAML loading ---

type buffEntry struct {
	ID            string  `yaml:"id"`
	DisplayName   string  `yaml:"display_name"`
	Attribute     string  `yaml:"attribute"`
	Operation     string  `yaml:"operation"`
	Value         float64 `yaml:"value"`
	Duration      float64 `yaml:"duration"` // seconds
	DurationMerge string  `yaml:"duration_merge"`
	StackLimit    int     `yaml:"stack_limit"`
	QueueMode     string  `yaml:"queue_mode"`
	Transient     bool    `yaml:"transient"`
	Unique        bool    `yaml:"unique"`
}

type buffListFile struct {
	Buffs []buffEntry `yaml:"buffs"`
}

// LoadBuffTable loads buff definitions from YAML. A missing display_name is
// derived from the id ("war_cry" → "War Cry").
func LoadBuffTable(path string) (*BuffTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read buffs: %w", err)
	}
	var f buffListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse buffs: %w", err)
	}

	title := cases.Title(language.English)
	t := &BuffTable{buffs: make(map[string]*attribute.BuffDefinition, len(f.Buffs))}
	for i := range f.Buffs {
		e := &f.Buffs[i]
		if e.ID == "" {
			return nil, fmt.Errorf("buffs %s: entry %d has no id", path, i)
		}
		if _, dup := t.buffs[e.ID]; dup {
			return nil, fmt.Errorf("buffs %s: duplicate id %q", path, e.ID)
		}
		b, err := e.definition()
		if err != nil {
			return nil, fmt.Errorf("buffs %s: %q: %w", path, e.ID, err)
		}
		if b.DisplayName == "" {
			b.DisplayName = title.String(strings.ReplaceAll(e.ID, "_", " "))
		}
		t.buffs[e.ID] = b
	}
	return t, nil
}

func (e *buffEntry) definition() (*attribute.BuffDefinition, error) {
	kind := attribute.OpAdd
	if e.Operation != "" {
		k, err := attribute.ParseOperationKind(e.Operation)
		if err != nil {
			return nil, err
		}
		kind = k
	}
	merge, err := attribute.ParseDurationMerge(e.DurationMerge)
	if err != nil {
		return nil, err
	}
	queue, err := attribute.ParseQueueMode(e.QueueMode)
	if err != nil {
		return nil, err
	}
	if e.Duration < 0 {
		return nil, fmt.Errorf("negative duration %v", e.Duration)
	}
	if e.StackLimit < 0 {
		return nil, fmt.Errorf("negative stack_limit %d", e.StackLimit)
	}
	return &attribute.BuffDefinition{
		AttributeName: e.Attribute,
		DisplayName:   e.DisplayName,
		Duration:      e.Duration,
		DurationMerge: merge,
		StackLimit:    e.StackLimit,
		Operation:     attribute.Operation{Kind: kind, Operand: e.Value},
		QueueMode:     queue,
		Transient:     e.Transient,
		Unique:        e.Unique,
	}, nil
}
