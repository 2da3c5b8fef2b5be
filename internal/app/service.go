package app

import (
	"time"

	"github.com/pjm0616/flow-jsonschema/internal/adapters"
	"github.com/pjm0616/flow-jsonschema/internal/core"
	"github.com/pjm0616/flow-jsonschema/internal/ports"
)

type Service struct {
	Invoker     ports.OracleInvokerPort
	Modules     ports.ModuleSourcePort
	Cache       ports.OracleCachePort
	Overrides   ports.OverridesPort
	Validator   ports.SchemaValidatorPort
	Compiler    core.SchemaCompiler
	Concurrency int
	MaxDepth    int
	Clock       func() time.Time
}

type ServiceOptions struct {
	FlowBin       string
	MaxRetries    int
	RetryInterval time.Duration
	Concurrency   int
	CachePath     string
	Overrides     []string
}

func NewService(opts ServiceOptions) (Service, error) {
	oracle := adapters.NewFlowOracleAdapter(opts.FlowBin)
	invoker := core.NewResilientInvoker(oracle)
	if opts.MaxRetries > 0 {
		invoker.MaxRetries = opts.MaxRetries
	}
	if opts.RetryInterval > 0 {
		invoker.RetryInterval = opts.RetryInterval
	}

	var cache ports.OracleCachePort = adapters.NoopOracleCache{}
	if opts.CachePath != "" {
		sqliteCache, err := adapters.NewSQLiteOracleCache(opts.CachePath)
		if err != nil {
			return Service{}, err
		}
		cache = sqliteCache
	}

	overrides := adapters.NewOverridesAdapter()
	for _, path := range opts.Overrides {
		if err := overrides.LoadOverrides(path); err != nil {
			return Service{}, err
		}
	}

	return Service{
		Invoker:     invoker,
		Modules:     adapters.NewModuleSourceAdapter(invoker),
		Cache:       cache,
		Overrides:   overrides,
		Validator:   adapters.NewJSONSchemaEngineAdapter(),
		Compiler:    core.NewSchemaCompiler(),
		Concurrency: opts.Concurrency,
		MaxDepth:    defaultMaxReExportDepth,
		Clock:       time.Now,
	}, nil
}

// Close releases resources held by the service, currently only the
// oracle cache.
func (s Service) Close() error {
	if s.Cache == nil {
		return nil
	}
	return s.Cache.Close()
}
