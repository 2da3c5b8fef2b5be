package ports

import "context"

// ModuleSourcePort loads module source text and resolves import
// specifiers to module file paths.
type ModuleSourcePort interface {
	Load(path string) (string, error)
	ResolveImport(ctx context.Context, fromFile string, ref string) (string, error)
}
