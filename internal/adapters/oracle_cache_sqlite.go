package adapters

import (
	"database/sql"
	"errors"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/pjm0616/flow-jsonschema/internal/ports"
	"github.com/pjm0616/flow-jsonschema/internal/types"
)

// SQLiteOracleCache persists oracle responses across runs. Position
// queries against a slow Flow server dominate generation time, so a hit
// skips the oracle entirely. Keys carry a fingerprint of the module
// source; editing a module invalidates its cached entries naturally.
type SQLiteOracleCache struct {
	db *sql.DB
}

const oracleCacheSchema = `
CREATE TABLE IF NOT EXISTS oracle_cache (
	file        TEXT NOT NULL,
	line        INTEGER NOT NULL,
	col         INTEGER NOT NULL,
	fingerprint TEXT NOT NULL,
	output      TEXT NOT NULL,
	created_at  TEXT NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (file, line, col, fingerprint)
)`

func NewSQLiteOracleCache(path string) (*SQLiteOracleCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to open oracle cache: " + path).
			WithCause(err)
	}
	if _, err := db.Exec(oracleCacheSchema); err != nil {
		_ = db.Close()
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to initialize oracle cache: " + path).
			WithCause(err)
	}
	return &SQLiteOracleCache{db: db}, nil
}

func (c *SQLiteOracleCache) Get(key types.CacheKey) (string, bool, error) {
	var output string
	err := c.db.QueryRow(
		`SELECT output FROM oracle_cache WHERE file = ? AND line = ? AND col = ? AND fingerprint = ?`,
		key.File, key.Line, key.Column, key.Fingerprint,
	).Scan(&output)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("oracle cache lookup failed").
			WithCause(err)
	}
	log.Debug().Str("file", key.File).Int("line", key.Line).Msg("oracle cache hit")
	return output, true, nil
}

func (c *SQLiteOracleCache) Put(key types.CacheKey, output string) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO oracle_cache (file, line, col, fingerprint, output) VALUES (?, ?, ?, ?, ?)`,
		key.File, key.Line, key.Column, key.Fingerprint, output,
	)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("oracle cache write failed").
			WithCause(err)
	}
	return nil
}

func (c *SQLiteOracleCache) Close() error {
	return c.db.Close()
}

// NoopOracleCache is used when caching is disabled.
type NoopOracleCache struct{}

func (NoopOracleCache) Get(types.CacheKey) (string, bool, error) { return "", false, nil }
func (NoopOracleCache) Put(types.CacheKey, string) error         { return nil }
func (NoopOracleCache) Close() error                             { return nil }

var _ ports.OracleCachePort = (*SQLiteOracleCache)(nil)
var _ ports.OracleCachePort = NoopOracleCache{}
