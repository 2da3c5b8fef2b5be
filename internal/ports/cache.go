package ports

import "github.com/pjm0616/flow-jsonschema/internal/types"

// OracleCachePort stores oracle responses across runs, keyed by source
// position plus a fingerprint of the module source. The cache is an
// explicit object owned by the app service; its lifecycle ends with
// Close.
type OracleCachePort interface {
	Get(key types.CacheKey) (string, bool, error)
	Put(key types.CacheKey, output string) error
	Close() error
}
