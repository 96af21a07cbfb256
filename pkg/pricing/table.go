package pricing

import (
	"fmt"
	"sort"
	"strings"
)

// Table is an immutable resource-class price list with a designated fallback entry.
type Table struct {
	entries   map[string]Entry
	fallback  string
	unitScale float64
}

// NewTable builds a table. Class names are normalized to lower case.
// The fallback class must be present and unitScale must be positive.
func NewTable(entries map[string]Entry, fallback string, unitScale float64) (*Table, error) {
	if unitScale <= 0 {
		return nil, fmt.Errorf("pricing: unit scale must be positive, got %v", unitScale)
	}
	m := make(map[string]Entry, len(entries))
	for name, e := range entries {
		if e.InRate < 0 || e.OutRate < 0 {
			return nil, fmt.Errorf("pricing: negative rate for %q", name)
		}
		m[normalize(name)] = e
	}
	fallback = normalize(fallback)
	if _, ok := m[fallback]; !ok {
		return nil, fmt.Errorf("pricing: fallback class %q not in table", fallback)
	}
	return &Table{entries: m, fallback: fallback, unitScale: unitScale}, nil
}

// Default returns the built-in price list.
func Default() *Table {
	t, err := NewTable(map[string]Entry{
		"opus-4.5":   {InRate: 15.00, OutRate: 75.00},
		"sonnet-4.5": {InRate: 3.00, OutRate: 15.00},
		"sonnet-3.5": {InRate: 3.00, OutRate: 15.00},
		"haiku-3.5":  {InRate: 0.80, OutRate: 4.00},
		"grok":       {InRate: 0, OutRate: 0},
		"gemini":     {InRate: 0, OutRate: 0},
	}, DefaultFallback, DefaultUnitScale)
	if err != nil {
		panic(err)
	}
	return t
}

// Has reports whether class is priced explicitly.
func (t *Table) Has(class string) bool {
	_, ok := t.entries[normalize(class)]
	return ok
}

// Lookup returns the entry for class. When class is unknown it returns the
// fallback entry and false.
func (t *Table) Lookup(class string) (Entry, bool) {
	if e, ok := t.entries[normalize(class)]; ok {
		return e, true
	}
	return t.entries[t.fallback], false
}

// Fallback returns the fallback class name.
func (t *Table) Fallback() string { return t.fallback }

// UnitScale returns the number of units each rate covers.
func (t *Table) UnitScale() float64 { return t.unitScale }

// Classes returns all priced classes sorted by name.
func (t *Table) Classes() []ClassPricing {
	out := make([]ClassPricing, 0, len(t.entries))
	for name, e := range t.entries {
		out = append(out, ClassPricing{Name: name, Entry: e})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func normalize(class string) string {
	return strings.ToLower(strings.TrimSpace(class))
}
