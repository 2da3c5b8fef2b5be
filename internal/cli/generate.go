package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pjm0616/flow-jsonschema/internal/app"
)

type generateOptions struct {
	FlowBin         string
	MaxRetries      int
	RetryIntervalMs int
	Concurrency     int
	CachePath       string
	Overrides       []string
}

func newGenerateCommand() *cobra.Command {
	opts := generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate <input> [output]",
		Short: "Generate a validator module from a Flow module's exported types",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), cmd, opts, args)
		},
	}

	addOracleFlags(cmd, &opts)
	cmd.Flags().StringSliceVar(&opts.Overrides, "overrides", nil, "Overrides yaml file(s), later files win")
	_ = viper.BindPFlag("overrides", cmd.Flags().Lookup("overrides"))

	return cmd
}

func addOracleFlags(cmd *cobra.Command, opts *generateOptions) {
	cmd.Flags().StringVar(&opts.FlowBin, "flow-bin", "flow", "Flow binary path")
	cmd.Flags().IntVar(&opts.MaxRetries, "max-retries", 0, "Oracle retry rounds (0 = default)")
	cmd.Flags().IntVar(&opts.RetryIntervalMs, "retry-interval-ms", 0, "Base oracle retry interval in ms (0 = default)")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "Concurrent type resolutions (0 = default)")
	cmd.Flags().StringVar(&opts.CachePath, "cache-path", "", "Oracle response cache database (empty = disabled)")

	_ = viper.BindPFlag("flow_bin", cmd.Flags().Lookup("flow-bin"))
	_ = viper.BindPFlag("max_retries", cmd.Flags().Lookup("max-retries"))
	_ = viper.BindPFlag("retry_interval_ms", cmd.Flags().Lookup("retry-interval-ms"))
	_ = viper.BindPFlag("concurrency", cmd.Flags().Lookup("concurrency"))
	_ = viper.BindPFlag("cache_path", cmd.Flags().Lookup("cache-path"))
}

func runGenerate(ctx context.Context, cmd *cobra.Command, opts generateOptions, args []string) error {
	outputDir := "out"
	if len(args) > 1 {
		outputDir = args[1]
	}

	service, err := newAppService(cmd, opts)
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	result, err := service.Generate(ctx, app.GenerateRequest{
		InputPath: args[0],
		OutputDir: outputDir,
	})
	if err != nil {
		return err
	}
	fmt.Printf("generated: %s (%s)\n", strings.Join(result.Types, ", "), result.OutputDir)
	for _, skipped := range result.Skipped {
		fmt.Printf("skipped: %s (%s)\n", skipped.Name, skipped.Reason)
	}
	return nil
}

func newAppService(cmd *cobra.Command, opts generateOptions) (app.Service, error) {
	return app.NewService(app.ServiceOptions{
		FlowBin:       resolveString(cmd, opts.FlowBin, "flow_bin", "flow-bin"),
		MaxRetries:    resolveInt(cmd, opts.MaxRetries, "max_retries", "max-retries"),
		RetryInterval: time.Duration(resolveInt(cmd, opts.RetryIntervalMs, "retry_interval_ms", "retry-interval-ms")) * time.Millisecond,
		Concurrency:   resolveInt(cmd, opts.Concurrency, "concurrency", "concurrency"),
		CachePath:     resolveString(cmd, opts.CachePath, "cache_path", "cache-path"),
		Overrides:     resolveStrings(cmd, opts.Overrides, "overrides", "overrides"),
	})
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return value
}

func resolveStrings(cmd *cobra.Command, values []string, key string, flagName string) []string {
	if cmd == nil {
		if len(values) > 0 {
			return values
		}
		return viper.GetStringSlice(key)
	}
	if flagChanged(cmd, flagName) {
		return values
	}
	if viper.IsSet(key) {
		return viper.GetStringSlice(key)
	}
	return values
}

func resolveInt(cmd *cobra.Command, value int, key string, flagName string) int {
	if cmd == nil {
		if value != 0 {
			return value
		}
		return viper.GetInt(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	return value
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
