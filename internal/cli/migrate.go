package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), cmd.OutOrStdout(), *configPath, reset)
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "drop every table and recreate the schema")
	return cmd
}

func runMigrations(ctx context.Context, out io.Writer, configPath string, reset bool) error {
	d, err := openDeps(ctx, configPath, false)
	if err != nil {
		return err
	}
	defer d.Close()

	if reset {
		if err := d.store.ResetSchema(ctx); err != nil {
			return err
		}
		glog.Info("schema reset")
		fmt.Fprintln(out, "Schema reset.")
		return nil
	}

	if err := d.store.InitializeSchema(ctx); err != nil {
		return err
	}
	glog.Info("migrations applied")
	fmt.Fprintln(out, "Migrations applied.")
	return nil
}
