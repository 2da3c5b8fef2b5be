package core

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/ZanzyTHEbar/errbuilder-go"
)

// MinFlowVersion is the oldest Flow binary known to support the
// --expand-type-aliases flag on position queries.
const MinFlowVersion = "0.80.0"

// CheckFlowVersion parses the oracle's reported version and verifies it
// meets the minimum supported release. Returns the normalized version.
func CheckFlowVersion(raw string) (string, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "v")
	if trimmed == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("oracle reported an empty version")
	}
	version, err := semver.NewVersion(trimmed)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to parse oracle version: " + trimmed).
			WithCause(err)
	}
	minimum := semver.MustParse(MinFlowVersion)
	if version.LessThan(minimum) {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("flow binary " + version.String() + " is older than supported minimum " + MinFlowVersion)
	}
	return version.String(), nil
}
