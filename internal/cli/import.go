package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

// NewImportCmd loads the reference dataset into the store.
func NewImportCmd(configPath *string) *cobra.Command {
	var (
		force bool
		file  string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import the country/continent dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cmd.OutOrStdout(), *configPath, file, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "import even if reference data is already present")
	cmd.Flags().StringVar(&file, "file", "", "dataset file with one name,group record per line")
	return cmd
}

func runImport(ctx context.Context, out io.Writer, configPath, file string, force bool) error {
	d, err := openDeps(ctx, configPath, true)
	if err != nil {
		return err
	}
	defer d.Close()

	if !force {
		present, err := d.store.HasReferenceData(ctx)
		if err != nil {
			return err
		}
		if present {
			fmt.Fprintln(out, "Reference data already imported; use --force to import again.")
			return nil
		}
	}

	report, err := d.importReferenceData(ctx, file, func(success bool) {
		glog.V(2).Infof("import finished, success=%v", success)
	})
	if err != nil {
		fmt.Fprintln(out, "Import failed.")
		return wrapImportErr(err)
	}
	fmt.Fprintf(out, "Imported %d entries (%d lines skipped).\n", report.Imported, report.Skipped)
	return nil
}
