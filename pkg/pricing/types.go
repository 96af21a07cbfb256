package pricing

// DefaultUnitScale is the number of units a rate is quoted for.
const DefaultUnitScale = 1_000_000

// DefaultFallback is the resource class whose rates price unknown classes.
const DefaultFallback = "sonnet-4.5"

// Entry is the per-unit-scale rate pair for one resource class.
type Entry struct {
	InRate  float64 `yaml:"in_rate" json:"in_rate"`
	OutRate float64 `yaml:"out_rate" json:"out_rate"`
}

// ClassPricing is a named Entry as it appears in a pricing file.
type ClassPricing struct {
	Name  string `yaml:"name"`
	Entry `yaml:",inline"`
}

// File is the YAML layout of a pricing override file.
type File struct {
	Updated         string         `yaml:"updated"`
	Fallback        string         `yaml:"fallback"`
	UnitScale       float64        `yaml:"unit_scale"`
	ResourceClasses []ClassPricing `yaml:"resource_classes"`
}
