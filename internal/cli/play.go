package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"worldquiz/internal/app"
	"worldquiz/internal/domain"
)

// NewPlayCmd runs an interactive quiz on stdin/stdout.
func NewPlayCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play a quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), *configPath)
		},
	}
}

func runPlay(ctx context.Context, in io.Reader, out io.Writer, configPath string) error {
	d, err := openDeps(ctx, configPath, true)
	if err != nil {
		return err
	}
	defer d.Close()

	err = d.ensureReferenceData(ctx, func(success bool) {
		if !success {
			fmt.Fprintln(out, "Could not import the country list.")
		}
	})
	if err != nil {
		return wrapImportErr(err)
	}

	service := d.quizService()
	run, err := service.StartRun(ctx)
	if err != nil {
		return err
	}
	return playLoop(ctx, bufio.NewReader(in), out, service, run)
}

func playLoop(ctx context.Context, reader *bufio.Reader, out io.Writer, service *app.QuizService, run *app.QuizRun) error {
	for {
		quit, err := playRun(reader, out, run)
		if err != nil || quit {
			return err
		}

		if _, _, err := service.Finish(ctx, run); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nFinal score: %d/%d\n", run.Score(), run.Total())

		for {
			fmt.Fprint(out, "\n[r] play again  [h] history  [q] quit: ")
			choice, ok := readChoice(reader)
			if !ok || choice == "q" {
				return nil
			}
			if choice == "h" {
				if err := printResults(ctx, out, service); err != nil {
					return err
				}
				continue
			}
			if choice == "r" {
				if err := run.Restart(ctx); err != nil {
					return err
				}
				break
			}
		}
	}
}

// playRun asks every question of run. A question is scored only on its first
// answer, so revisiting it with "b" cannot push the score past the total.
func playRun(reader *bufio.Reader, out io.Writer, run *app.QuizRun) (bool, error) {
	answered := make(map[int]bool, run.Total())

	for !run.IsComplete() {
		question, _ := run.Current()
		printQuestion(out, run.Index()+1, run.Total(), question)

		choice, ok := readChoice(reader)
		if !ok || choice == "q" {
			return true, nil
		}
		if choice == "b" {
			run.Retreat()
			continue
		}

		number, err := strconv.Atoi(choice)
		if err != nil || number < 1 || number > len(question.Options) {
			fmt.Fprintf(out, "Please enter 1-%d, b for back or q to quit.\n", len(question.Options))
			continue
		}

		if answered[run.Index()] {
			fmt.Fprintln(out, "Already answered.")
			run.Advance()
			continue
		}
		answered[run.Index()] = true

		correct, err := run.Answer(number - 1)
		if err != nil {
			return false, err
		}
		if correct {
			fmt.Fprintln(out, "Correct!")
		} else {
			fmt.Fprintf(out, "Wrong. Correct answer was %s\n", question.Answer())
		}
	}
	glog.V(2).Infof("run %s complete with %d/%d", run.ID(), run.Score(), run.Total())
	return false, nil
}

func printQuestion(out io.Writer, number, total int, question domain.Question) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Q%d/%d: %s\n\n", number, total, question.Prompt)
	for _, option := range question.Options {
		fmt.Fprintln(out, option.String())
	}
	fmt.Fprint(out, "> ")
}

func readChoice(reader *bufio.Reader) (string, bool) {
	line, err := reader.ReadString('\n')
	line = strings.ToLower(strings.TrimSpace(line))
	if err != nil && line == "" {
		return "", false
	}
	return line, true
}
