package app

import (
	"context"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/require"
)

// commandOracle dispatches on the oracle subcommand, mimicking a binary
// that answers version and status queries differently.
type commandOracle struct {
	version   string
	status    string
	statusErr error
}

func (c commandOracle) Invoke(ctx context.Context, args []string) (string, error) {
	switch args[0] {
	case "version":
		return c.version, nil
	case "status":
		return c.status, c.statusErr
	}
	return "", errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("unexpected command " + args[0])
}

func TestDoctorHealthyOracle(t *testing.T) {
	svc := Service{Invoker: commandOracle{
		version: `{"semver": "0.120.1"}`,
		status:  `{"passed": true, "errors": []}`,
	}}

	result, err := svc.Doctor(context.Background())

	require.NoError(t, err)
	require.Equal(t, "0.120.1", result.Version)
	require.True(t, result.Passed)
	require.Zero(t, result.Diagnostics)
}

func TestDoctorCountsDiagnostics(t *testing.T) {
	svc := Service{Invoker: commandOracle{
		version: `{"semver": "0.150.0"}`,
		status:  `{"passed": false, "errors": [{}, {}, {}]}`,
	}}

	result, err := svc.Doctor(context.Background())

	require.NoError(t, err)
	require.False(t, result.Passed)
	require.Equal(t, 3, result.Diagnostics)
}

func TestDoctorRejectsOldBinary(t *testing.T) {
	svc := Service{Invoker: commandOracle{
		version: `{"semver": "0.79.0"}`,
	}}

	_, err := svc.Doctor(context.Background())

	require.Error(t, err)
	require.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}

func TestDoctorToleratesStatusFailure(t *testing.T) {
	svc := Service{Invoker: commandOracle{
		version: `{"semver": "0.120.1"}`,
		statusErr: errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("flow invocation failed"),
	}}

	result, err := svc.Doctor(context.Background())

	require.NoError(t, err)
	require.Equal(t, "0.120.1", result.Version)
	require.False(t, result.Passed)
}
