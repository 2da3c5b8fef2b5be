package types

// TypeOverride adjusts how one exported type is treated during
// generation: skipped entirely, or emitted under a different name.
type TypeOverride struct {
	Skip   bool   `yaml:"skip,omitempty"`
	Rename string `yaml:"rename,omitempty"`
}

// OverridesFile is the top-level structure of a flow-jsonschema
// overrides yaml file. Multiple files can be layered; later layers
// override earlier ones on a per-type basis.
type OverridesFile struct {
	Version string                  `yaml:"version"`
	Types   map[string]TypeOverride `yaml:"types"`
}
