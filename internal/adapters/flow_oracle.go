package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/pjm0616/flow-jsonschema/internal/ports"
	"github.com/pjm0616/flow-jsonschema/internal/shared"
)

// FlowOracleAdapter invokes the Flow type-checker binary once per call.
// It is deliberately a single unreliable primitive: no retries, no
// racing. Resilience lives in core.ResilientInvoker.
type FlowOracleAdapter struct {
	Bin string
}

func NewFlowOracleAdapter(bin string) FlowOracleAdapter {
	if strings.TrimSpace(bin) == "" {
		bin = "flow"
	}
	return FlowOracleAdapter{Bin: bin}
}

// Invoke runs the oracle and captures standard output. A process killed
// through context cancellation maps to a retryable deadline error; a
// start failure or unexpected non-zero exit is an invocation error.
func (a FlowOracleAdapter) Invoke(ctx context.Context, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, a.Bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}
	if ctx.Err() != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeDeadlineExceeded).
			WithMsg("flow invocation killed").
			WithCause(err)
	}
	return "", errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("flow invocation failed").
		WithCause(shared.CommandError(stderr.Bytes(), err))
}

// StatusArgs queries current diagnostic status.
func StatusArgs() []string {
	return []string{"status", "--json"}
}

// VersionArgs reports the tool version.
func VersionArgs() []string {
	return []string{"version", "--json"}
}

// FindModuleArgs resolves an import specifier relative to a file.
func FindModuleArgs(ref string, fromFile string) []string {
	return []string{"find-module", "--json", ref, fromFile}
}

// TypeAtPosArgs asks for the fully expanded type at a 1-based source
// position.
func TypeAtPosArgs(file string, line int, column int) []string {
	return []string{
		"type-at-pos",
		"--json",
		"--expand-type-aliases",
		file,
		strconv.Itoa(line),
		strconv.Itoa(column),
	}
}

// ParseTypeEnvelope extracts the type-syntax source text from a
// position query's JSON envelope.
func ParseTypeEnvelope(raw string) (string, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("unexpected oracle output for position query").
			WithCause(err)
	}
	typeText := strings.TrimSpace(envelope.Type)
	if typeText == "" || typeText == "(unknown)" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("oracle returned no type at position")
	}
	return typeText, nil
}

// ParseFindModule extracts the resolved file path from a module
// resolution envelope.
func ParseFindModule(raw string) (string, error) {
	var envelope struct {
		File string `json:"file"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("unexpected oracle output for module resolution").
			WithCause(err)
	}
	if strings.TrimSpace(envelope.File) == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("oracle could not resolve module")
	}
	return envelope.File, nil
}

// ParseVersion extracts the semver string from a version envelope.
func ParseVersion(raw string) (string, error) {
	var envelope struct {
		Semver string `json:"semver"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("unexpected oracle output for version query").
			WithCause(err)
	}
	return envelope.Semver, nil
}

// ParseStatus reports whether the checked codebase passed and how many
// diagnostics the oracle currently holds. Diagnostics do not block
// generation; only a fatal, non-diagnostic failure of the status
// command itself does, and that surfaces as an invocation error.
func ParseStatus(raw string) (bool, int, error) {
	var envelope struct {
		Passed bool  `json:"passed"`
		Errors []any `json:"errors"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return false, 0, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("unexpected oracle output for status query").
			WithCause(err)
	}
	return envelope.Passed, len(envelope.Errors), nil
}

var _ ports.OraclePort = FlowOracleAdapter{}
