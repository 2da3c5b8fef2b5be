package adapters

import (
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/pjm0616/flow-jsonschema/internal/ports"
	"github.com/pjm0616/flow-jsonschema/internal/types"
)

// OverridesAdapter implements OverridesPort using layered yaml files.
// Each call to LoadOverrides merges new entries into the internal
// table; later loads override earlier ones per type name.
type OverridesAdapter struct {
	merged map[string]types.TypeOverride
	layers []string
}

func NewOverridesAdapter() *OverridesAdapter {
	return &OverridesAdapter{
		merged: make(map[string]types.TypeOverride),
	}
}

// LoadOverrides reads an overrides yaml file and merges its entries
// (last-write wins per type name).
func (a *OverridesAdapter) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read overrides file: " + path).
			WithCause(err)
	}

	var file types.OverridesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse overrides file: " + path).
			WithCause(err)
	}
	if file.Version == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("overrides file missing version: " + path)
	}

	for name, override := range file.Types {
		normalized := strings.TrimSpace(name)
		if normalized == "" {
			continue
		}
		if override.Skip && override.Rename != "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("override for '" + normalized + "' sets both skip and rename in " + path)
		}
		if _, exists := a.merged[normalized]; exists {
			log.Debug().
				Str("type", normalized).
				Str("layer", path).
				Msg("override replaced by later layer")
		}
		a.merged[normalized] = override
	}

	a.layers = append(a.layers, path)
	log.Debug().
		Str("path", path).
		Int("entries", len(file.Types)).
		Int("total", len(a.merged)).
		Msg("overrides layer loaded")
	return nil
}

// Lookup returns the override for an exported type name, if any.
func (a *OverridesAdapter) Lookup(name string) (types.TypeOverride, bool) {
	override, ok := a.merged[strings.TrimSpace(name)]
	return override, ok
}

var _ ports.OverridesPort = (*OverridesAdapter)(nil)
