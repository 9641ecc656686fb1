package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"worldquiz/internal/app"
)

// NewResultsCmd prints the result history.
func NewResultsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "results",
		Short: "List past quiz results, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResults(cmd.Context(), cmd.OutOrStdout(), *configPath)
		},
	}
}

func runResults(ctx context.Context, out io.Writer, configPath string) error {
	d, err := openDeps(ctx, configPath, true)
	if err != nil {
		return err
	}
	defer d.Close()

	return printResults(ctx, out, d.quizService())
}

func printResults(ctx context.Context, out io.Writer, service *app.QuizService) error {
	results, err := service.ResultsAsync(ctx).Wait(ctx)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(out, "No results yet.")
		return nil
	}
	for _, result := range results {
		fmt.Fprintln(out, result.String())
	}
	return nil
}
