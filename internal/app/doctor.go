package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/pjm0616/flow-jsonschema/internal/adapters"
	"github.com/pjm0616/flow-jsonschema/internal/core"
)

type DoctorResult struct {
	Version     string
	Passed      bool
	Diagnostics int
}

// Doctor probes the oracle: verifies the binary meets the minimum
// supported version and reports the current diagnostic status.
// Outstanding diagnostics do not fail the probe; only an unusable
// binary does.
func (s Service) Doctor(ctx context.Context) (DoctorResult, error) {
	raw, err := s.Invoker.Invoke(ctx, adapters.VersionArgs())
	if err != nil {
		return DoctorResult{}, err
	}
	reported, err := adapters.ParseVersion(raw)
	if err != nil {
		return DoctorResult{}, err
	}
	version, err := core.CheckFlowVersion(reported)
	if err != nil {
		return DoctorResult{}, err
	}

	result := DoctorResult{Version: version}
	statusRaw, err := s.Invoker.Invoke(ctx, adapters.StatusArgs())
	if err != nil {
		// The status command exits non-zero when the checked codebase
		// has diagnostics; that is not a probe failure.
		log.Warn().Err(err).Msg("oracle reported outstanding diagnostics")
		return result, nil
	}
	passed, diagnostics, err := adapters.ParseStatus(statusRaw)
	if err != nil {
		return DoctorResult{}, err
	}
	result.Passed = passed
	result.Diagnostics = diagnostics
	return result, nil
}
