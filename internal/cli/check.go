package cli

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pjm0616/flow-jsonschema/internal/adapters"
	"github.com/pjm0616/flow-jsonschema/internal/app"
)

type checkOptions struct {
	AllErrors bool
}

func newCheckCommand() *cobra.Command {
	opts := checkOptions{}
	cmd := &cobra.Command{
		Use:   "check <schemas.json> <TypeName> <document.json>",
		Short: "Validate a JSON document against a generated type schema",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), cmd, opts, args)
		},
	}
	cmd.Flags().BoolVar(&opts.AllErrors, "all-errors", false, "Report every validation failure, not just the first")
	_ = viper.BindPFlag("all_errors", cmd.Flags().Lookup("all-errors"))
	return cmd
}

func runCheck(ctx context.Context, cmd *cobra.Command, opts checkOptions, args []string) error {
	service := app.Service{Validator: adapters.NewJSONSchemaEngineAdapter()}
	result, err := service.Check(ctx, app.CheckRequest{
		SchemaIndexPath: args[0],
		TypeName:        args[1],
		DocumentPath:    args[2],
		AllErrors:       resolveBool(cmd, opts.AllErrors, "all_errors", "all-errors"),
	})
	if err != nil {
		return err
	}
	if result.Valid {
		fmt.Printf("valid: %s\n", args[1])
		return nil
	}
	for _, record := range result.Errors {
		fmt.Printf("invalid: %s at %s (%s): %s\n", record.Keyword, record.DataPath, record.SchemaPath, record.Message)
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg("value does not match type " + args[1])
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}
