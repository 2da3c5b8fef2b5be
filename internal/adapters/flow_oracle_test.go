package adapters

import (
	"context"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestNewFlowOracleAdapterDefaultsBin(t *testing.T) {
	require.Equal(t, "flow", NewFlowOracleAdapter("").Bin)
	require.Equal(t, "flow", NewFlowOracleAdapter("   ").Bin)
	require.Equal(t, "/opt/flow/bin/flow", NewFlowOracleAdapter("/opt/flow/bin/flow").Bin)
}

func TestTypeAtPosArgs(t *testing.T) {
	got := TypeAtPosArgs("src/config.js", 12, 13)

	expect := []string{"type-at-pos", "--json", "--expand-type-aliases", "src/config.js", "12", "13"}
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestFlowOracleInvokeCapturesStdout(t *testing.T) {
	adapter := NewFlowOracleAdapter("echo")

	output, err := adapter.Invoke(context.Background(), []string{"hello"})

	require.NoError(t, err)
	require.Equal(t, "hello\n", output)
}

func TestFlowOracleInvokeMissingBinary(t *testing.T) {
	adapter := NewFlowOracleAdapter("definitely-not-a-real-binary-7f3a")

	_, err := adapter.Invoke(context.Background(), []string{"version"})

	require.Error(t, err)
	require.Equal(t, errbuilder.CodeInternal, errbuilder.CodeOf(err))
}

func TestFlowOracleInvokeCancelledContextIsRetryable(t *testing.T) {
	adapter := NewFlowOracleAdapter("sleep")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := adapter.Invoke(ctx, []string{"10"})

	require.Error(t, err)
	require.Equal(t, errbuilder.CodeDeadlineExceeded, errbuilder.CodeOf(err))
}

func TestParseTypeEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		expect  string
		wantErr bool
	}{
		{
			name:   "expanded type text",
			raw:    `{"type": "{| id: string |}", "loc": {}}`,
			expect: "{| id: string |}",
		},
		{
			name:   "surrounding whitespace trimmed",
			raw:    `{"type": "  string\n"}`,
			expect: "string",
		},
		{
			name:    "unknown type",
			raw:     `{"type": "(unknown)"}`,
			wantErr: true,
		},
		{
			name:    "empty type",
			raw:     `{"type": ""}`,
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     "Could not find a .flowconfig",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTypeEnvelope(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expect, got)
		})
	}
}

func TestParseFindModule(t *testing.T) {
	got, err := ParseFindModule(`{"file": "/repo/src/config.js"}`)
	require.NoError(t, err)
	require.Equal(t, "/repo/src/config.js", got)

	_, err = ParseFindModule(`{"file": ""}`)
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))

	_, err = ParseFindModule("garbage")
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeInternal, errbuilder.CodeOf(err))
}

func TestParseVersion(t *testing.T) {
	got, err := ParseVersion(`{"semver": "0.120.1", "binary": "/usr/bin/flow"}`)
	require.NoError(t, err)
	require.Equal(t, "0.120.1", got)

	_, err = ParseVersion("garbage")
	require.Error(t, err)
}

func TestParseStatus(t *testing.T) {
	passed, diagnostics, err := ParseStatus(`{"passed": true, "errors": []}`)
	require.NoError(t, err)
	require.True(t, passed)
	require.Zero(t, diagnostics)

	passed, diagnostics, err = ParseStatus(`{"passed": false, "errors": [{}, {}]}`)
	require.NoError(t, err)
	require.False(t, passed)
	require.Equal(t, 2, diagnostics)

	_, _, err = ParseStatus("garbage")
	require.Error(t, err)
}
