package types

// CacheKey identifies one cached oracle response. The fingerprint is a
// digest of the module source, so edits invalidate stale entries.
type CacheKey struct {
	File        string
	Line        int
	Column      int
	Fingerprint string
}

// ExportedType is one exported type name discovered in a module, with
// the position of its declaration name and the minimal source span of
// the declaration. Name is the exported name; LocalName the name of the
// underlying declaration (they differ for aliased re-exports).
type ExportedType struct {
	Name      string
	LocalName string
	File      string
	Line      int
	Column    int
	Snippet   string
}

// ValidationErrorRecord is one structured failure reported by the JSON
// Schema validation engine.
type ValidationErrorRecord struct {
	Keyword    string         `json:"keyword"`
	DataPath   string         `json:"dataPath"`
	SchemaPath string         `json:"schemaPath"`
	Params     map[string]any `json:"params,omitempty"`
	Message    string         `json:"message"`
}
