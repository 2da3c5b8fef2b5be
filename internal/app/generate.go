package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
	"sync"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"github.com/pjm0616/flow-jsonschema/internal/adapters"
	"github.com/pjm0616/flow-jsonschema/internal/core"
	"github.com/pjm0616/flow-jsonschema/internal/parser"
	"github.com/pjm0616/flow-jsonschema/internal/types"
)

const (
	defaultResolveWorkers   = 4
	defaultMaxReExportDepth = 10
)

type GenerateRequest struct {
	InputPath string
	OutputDir string
}

type SkippedType struct {
	Name   string
	File   string
	Reason string
}

type GenerateResult struct {
	OutputDir string
	Types     []string
	Skipped   []SkippedType
}

// Generate runs the whole pipeline for one entry module: enumerate its
// exported type names (following re-export chains), resolve each name's
// expanded type through the resilient oracle invoker, compile the type
// AST to a JSON Schema fragment, and write the validator module plus
// the schema index. Per-type unsupported-construct failures are warned
// about and skipped; every other failure aborts the run.
func (s Service) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	inputPath := strings.TrimSpace(req.InputPath)
	if inputPath == "" {
		return GenerateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("input module path is required")
	}
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		return GenerateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is required")
	}
	assert.NotEmpty(ctx, inputPath, "input module path must be set")

	run := &generateRun{
		service:      s,
		scans:        make(map[string]parser.ModuleExports),
		fingerprints: make(map[string]string),
	}
	exports, err := run.collectExports(ctx, inputPath, nil)
	if err != nil {
		return GenerateResult{}, err
	}
	exports = s.applyOverrides(exports)

	entries, skipped, err := run.resolveAll(ctx, exports)
	if err != nil {
		return GenerateResult{}, err
	}
	if len(entries) == 0 {
		return GenerateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no exported types resolved in " + inputPath)
	}

	writer := adapters.NewValidatorWriterAdapter(outputDir)
	if err := writer.WriteValidatorModule(entries); err != nil {
		return GenerateResult{}, err
	}
	if err := writer.WriteSchemaIndex(entries); err != nil {
		return GenerateResult{}, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	sort.Strings(names)
	log.Info().
		Int("types", len(names)).
		Int("skipped", len(skipped)).
		Str("output", outputDir).
		Msg("generation complete")
	return GenerateResult{OutputDir: outputDir, Types: names, Skipped: skipped}, nil
}

func (s Service) applyOverrides(exports []types.ExportedType) []types.ExportedType {
	if s.Overrides == nil {
		return exports
	}
	out := exports[:0]
	for _, export := range exports {
		override, ok := s.Overrides.Lookup(export.Name)
		if !ok {
			out = append(out, export)
			continue
		}
		if override.Skip {
			log.Info().Str("type", export.Name).Msg("type skipped by override")
			continue
		}
		if override.Rename != "" {
			export.Name = override.Rename
		}
		out = append(out, export)
	}
	return out
}

// generateRun holds per-run state: scanned modules and their source
// fingerprints. Nothing outlives the run.
type generateRun struct {
	service      Service
	scans        map[string]parser.ModuleExports
	fingerprints map[string]string
}

func (r *generateRun) scanModule(path string) (parser.ModuleExports, error) {
	if scan, ok := r.scans[path]; ok {
		return scan, nil
	}
	source, err := r.service.Modules.Load(path)
	if err != nil {
		return parser.ModuleExports{}, err
	}
	scan, err := parser.ScanExports(path, source)
	if err != nil {
		return parser.ModuleExports{}, err
	}
	digest := sha256.Sum256([]byte(source))
	r.scans[path] = scan
	r.fingerprints[path] = hex.EncodeToString(digest[:])
	return scan, nil
}

// collectExports enumerates the exported type names of a module,
// following re-export specifiers into other modules. The chain records
// the modules traversed so far; exceeding the depth limit fails naming
// the whole chain.
func (r *generateRun) collectExports(ctx context.Context, path string, chain []string) ([]types.ExportedType, error) {
	if err := r.checkDepth(path, chain); err != nil {
		return nil, err
	}
	scan, err := r.scanModule(path)
	if err != nil {
		return nil, err
	}

	exports := append([]types.ExportedType(nil), scan.Declarations...)
	for _, spec := range scan.ReExports {
		resolved, err := r.resolveReExport(ctx, path, spec, append(chain, path))
		if err != nil {
			return nil, err
		}
		exports = append(exports, resolved)
	}
	return exports, nil
}

func (r *generateRun) resolveReExport(ctx context.Context, fromPath string, spec parser.ReExport, chain []string) (types.ExportedType, error) {
	if spec.Module == "" {
		// Local alias: export type {X} picks up a declaration in the
		// same module, exported or not.
		scan := r.scans[fromPath]
		for _, decl := range append(scan.Declarations, scan.Locals...) {
			if decl.Name == spec.LocalName {
				decl.Name = spec.ExportedName
				return decl, nil
			}
		}
		return types.ExportedType{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("type " + spec.LocalName + " not declared in " + fromPath)
	}

	target, err := r.service.Modules.ResolveImport(ctx, fromPath, spec.Module)
	if err != nil {
		return types.ExportedType{}, err
	}
	resolved, err := r.lookupExport(ctx, target, spec.LocalName, chain)
	if err != nil {
		return types.ExportedType{}, err
	}
	resolved.Name = spec.ExportedName
	return resolved, nil
}

// lookupExport finds the declaration behind the name exported by a
// module, following further re-exports.
func (r *generateRun) lookupExport(ctx context.Context, path string, name string, chain []string) (types.ExportedType, error) {
	if err := r.checkDepth(path, chain); err != nil {
		return types.ExportedType{}, err
	}
	scan, err := r.scanModule(path)
	if err != nil {
		return types.ExportedType{}, err
	}
	for _, decl := range scan.Declarations {
		if decl.Name == name {
			return decl, nil
		}
	}
	for _, spec := range scan.ReExports {
		if spec.ExportedName != name {
			continue
		}
		if spec.Module == "" {
			return r.resolveReExport(ctx, path, spec, chain)
		}
		target, err := r.service.Modules.ResolveImport(ctx, path, spec.Module)
		if err != nil {
			return types.ExportedType{}, err
		}
		return r.lookupExport(ctx, target, spec.LocalName, append(chain, path))
	}
	return types.ExportedType{}, errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg("type " + name + " not exported by " + path)
}

func (r *generateRun) checkDepth(path string, chain []string) error {
	maxDepth := r.service.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxReExportDepth
	}
	if len(chain) <= maxDepth {
		return nil
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeResourceExhausted).
		WithMsg("re-export chain too deep: " + strings.Join(append(chain, path), " -> "))
}

// resolveAll fans out over the exported names with a small fixed
// concurrency limit so the oracle process pool is not overloaded.
// Results may complete in any order; the assembled registry is keyed by
// name only.
func (r *generateRun) resolveAll(ctx context.Context, exports []types.ExportedType) ([]types.RegistryEntry, []SkippedType, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workerCount := r.service.Concurrency
	if workerCount <= 0 {
		workerCount = defaultResolveWorkers
	}
	if len(exports) < workerCount {
		workerCount = len(exports)
	}

	var mu sync.Mutex
	var errMu sync.Mutex
	var firstErr error
	var entries []types.RegistryEntry
	var skipped []SkippedType

	sem := make(chan struct{}, workerCount)
	var wg sync.WaitGroup
	for _, export := range exports {
		export := export
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if ctx.Err() != nil {
				return
			}
			entry, err := r.resolveType(ctx, export)
			if err != nil {
				if core.IsUnsupportedType(err) {
					log.Warn().
						Str("type", export.Name).
						Str("file", export.File).
						Err(err).
						Msg("skipping type with no JSON Schema representation")
					mu.Lock()
					skipped = append(skipped, SkippedType{
						Name:   export.Name,
						File:   export.File,
						Reason: errorMessage(err),
					})
					mu.Unlock()
					return
				}
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				errMu.Unlock()
				return
			}
			mu.Lock()
			entries = append(entries, entry)
			mu.Unlock()
		}()
	}
	wg.Wait()
	if firstErr != nil {
		return nil, nil, firstErr
	}
	sort.Slice(skipped, func(i, j int) bool { return skipped[i].Name < skipped[j].Name })
	return entries, skipped, nil
}

// resolveType obtains the expanded type text for one exported name
// (cache first, then the resilient invoker), parses it, and compiles
// the resulting AST into a schema fragment.
func (r *generateRun) resolveType(ctx context.Context, export types.ExportedType) (types.RegistryEntry, error) {
	key := types.CacheKey{
		File:        export.File,
		Line:        export.Line,
		Column:      export.Column,
		Fingerprint: r.fingerprints[export.File],
	}
	raw, hit, err := r.service.Cache.Get(key)
	if err != nil {
		return types.RegistryEntry{}, err
	}
	if !hit {
		raw, err = r.service.Invoker.Invoke(ctx, adapters.TypeAtPosArgs(export.File, export.Line, export.Column))
		if err != nil {
			return types.RegistryEntry{}, err
		}
		if putErr := r.service.Cache.Put(key, raw); putErr != nil {
			log.Warn().Err(putErr).Str("file", export.File).Msg("oracle cache write failed")
		}
	}

	typeText, err := adapters.ParseTypeEnvelope(raw)
	if err != nil {
		return types.RegistryEntry{}, err
	}
	node, err := parser.ParseTypeText(export.File, typeText)
	if err != nil {
		return types.RegistryEntry{}, err
	}
	schema, err := r.service.Compiler.Compile(node)
	if err != nil {
		return types.RegistryEntry{}, err
	}
	return types.RegistryEntry{
		Name:          export.Name,
		SourcePath:    export.File,
		SourceSnippet: rewriteSnippet(export.Snippet, export.LocalName, export.Name),
		Schema:        schema,
	}, nil
}

// rewriteSnippet emits a re-exported declaration under its exported
// name. Only the declared name itself is rewritten; self-references in
// the body keep the original spelling.
func rewriteSnippet(snippet string, localName string, exportedName string) string {
	if localName == exportedName || localName == "" {
		return snippet
	}
	idx := strings.Index(snippet, localName)
	if idx < 0 {
		return snippet
	}
	return snippet[:idx] + exportedName + snippet[idx+len(localName):]
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
