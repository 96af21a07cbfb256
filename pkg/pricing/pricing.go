package pricing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadTable reads a YAML pricing file and builds a Table from it.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pricing file %s: %w", path, err)
	}

	t, err := LoadTableFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("pricing file %s: %w", path, err)
	}
	return t, nil
}

// LoadTableFromBytes parses YAML pricing data. Missing fallback and unit
// scale take the package defaults.
func LoadTableFromBytes(data []byte) (*Table, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse pricing data: %w", err)
	}
	if len(f.ResourceClasses) == 0 {
		return nil, fmt.Errorf("no resource classes defined")
	}

	entries := make(map[string]Entry, len(f.ResourceClasses))
	for _, c := range f.ResourceClasses {
		if c.Name == "" {
			return nil, fmt.Errorf("resource class with empty name")
		}
		entries[c.Name] = c.Entry
	}

	if f.Fallback == "" {
		f.Fallback = DefaultFallback
	}
	if f.UnitScale == 0 {
		f.UnitScale = DefaultUnitScale
	}
	return NewTable(entries, f.Fallback, f.UnitScale)
}
