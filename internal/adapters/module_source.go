package adapters

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/pjm0616/flow-jsonschema/internal/ports"
)

// ModuleSourceAdapter reads module files and resolves import
// specifiers. Relative specifiers are resolved against the importing
// file with the usual extension candidates; anything else is delegated
// to the oracle's module resolver.
type ModuleSourceAdapter struct {
	Invoker ports.OracleInvokerPort
}

func NewModuleSourceAdapter(invoker ports.OracleInvokerPort) ModuleSourceAdapter {
	return ModuleSourceAdapter{Invoker: invoker}
}

func (a ModuleSourceAdapter) Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read module: " + path).
			WithCause(err)
	}
	return string(data), nil
}

func (a ModuleSourceAdapter) ResolveImport(ctx context.Context, fromFile string, ref string) (string, error) {
	if strings.HasPrefix(ref, ".") {
		base := filepath.Join(filepath.Dir(fromFile), filepath.FromSlash(ref))
		candidates := []string{
			base,
			base + ".js",
			base + ".jsx",
			base + ".js.flow",
			filepath.Join(base, "index.js"),
		}
		for _, candidate := range candidates {
			info, err := os.Stat(candidate)
			if err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
		if a.Invoker == nil {
			return "", errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("cannot resolve import " + ref + " from " + fromFile)
		}
	}
	if a.Invoker == nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("cannot resolve non-relative import " + ref + " without oracle")
	}
	raw, err := a.Invoker.Invoke(ctx, FindModuleArgs(ref, fromFile))
	if err != nil {
		return "", err
	}
	return ParseFindModule(raw)
}

var _ ports.ModuleSourcePort = ModuleSourceAdapter{}
