package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newDoctorCommand() *cobra.Command {
	opts := generateOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Probe the Flow binary and report version and status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd.Context(), cmd, opts)
		},
	}
	addOracleFlags(cmd, &opts)
	return cmd
}

func runDoctor(ctx context.Context, cmd *cobra.Command, opts generateOptions) error {
	service, err := newAppService(cmd, opts)
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	result, err := service.Doctor(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("flow version: %s\n", result.Version)
	if result.Passed {
		fmt.Println("status: passed")
	} else {
		fmt.Printf("status: %d diagnostic(s)\n", result.Diagnostics)
	}
	return nil
}
