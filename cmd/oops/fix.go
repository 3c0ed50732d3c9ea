package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/animeshkundu/oops/internal/corrector"
	"github.com/animeshkundu/oops/internal/selector"
	"github.com/animeshkundu/oops/internal/shell"
	"github.com/animeshkundu/oops/internal/ui"
)

type fixFlags struct {
	yes         bool
	repeat      bool
	stdinOutput bool
}

func newFixCmd(root *rootOptions) *cobra.Command {
	flags := &fixFlags{}
	cmd := &cobra.Command{
		Use:   "fix [--] [script...]",
		Short: "Suggest a correction for a failed command and print the chosen one",
		Long: "Runs one correction cycle. Without a script the previous command is taken from\n" +
			"$OOPS_HISTORY, which the shell alias exports. The chosen script is printed on\n" +
			"stdout for the alias to evaluate; everything else goes to stderr.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runFix(ctx, cmd, root, flags, args)
		},
	}
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "take the best correction without asking")
	cmd.Flags().BoolVarP(&flags.repeat, "repeat", "r", false, "try again if the correction fails too")
	cmd.Flags().BoolVar(&flags.stdinOutput, "stdin-output", false, "read the failed command's output from stdin instead of re-running it")
	return cmd
}

func runFix(ctx context.Context, cmd *cobra.Command, root *rootOptions, flags *fixFlags, args []string) error {
	settings := root.settings
	logger := root.logger
	stderr := cmd.ErrOrStderr()
	sh := root.shell

	alias := strings.TrimSpace(os.Getenv("OOPS_ALIAS"))
	script := strings.TrimSpace(strings.Join(args, " "))
	if script == "" {
		script = shell.LastCommand(os.Getenv("OOPS_HISTORY"), alias)
	}
	if script == "" {
		fmt.Fprintln(stderr, "nothing to fix")
		return nil
	}

	output, err := captureOutput(ctx, cmd.InOrStdin(), sh, script, flags.stdinOutput, settings.WaitFor(script))
	if err != nil {
		switch {
		case errors.Is(err, shell.ErrTimeout):
			logger.Debug("command timed out; using partial output", zap.String("script", script))
		case ctx.Err() != nil:
			return nil
		default:
			logger.Warn("could not capture output", zap.String("script", script), zap.Error(err))
		}
	}
	logger.Debug("captured", zap.String("script", script), zap.Int("output_bytes", len(output)))

	command := corrector.NewCommand(script, output)
	candidates, err := root.corrector.Correct(ctx, command)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	machine := selector.New(command, candidates,
		selector.WithLogger(logger),
		selector.WithSideEffectTimeout(settings.SideEffectTimeout()),
	)
	prompter := root.prompter
	if prompter == nil {
		prompter = &ui.Picker{Output: stderr, NoColors: settings.NoColors}
	}
	auto := flags.yes || !settings.RequireConfirmation
	result, ok := selector.Run(ctx, machine, prompter, auto)
	if !ok {
		if machine.State() == selector.NoCandidates {
			fmt.Fprintln(stderr, "no correction found")
		} else {
			fmt.Fprintln(stderr, "aborted")
		}
		return nil
	}

	if flags.repeat || settings.Repeat {
		result = sh.Or(result, repeatCommand(alias))
	}
	fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}

func captureOutput(ctx context.Context, stdin io.Reader, sh shell.Shell, script string, fromStdin bool, wait time.Duration) (string, error) {
	if fromStdin {
		data, err := io.ReadAll(io.LimitReader(stdin, shell.DefaultMaxOutput))
		if err != nil {
			return "", fmt.Errorf("read output: %w", err)
		}
		return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
	}
	if os.Getenv("OOPS_RERUN") != "" {
		return "", errors.New("refusing to re-run from inside a re-run")
	}
	return shell.Rerun(ctx, sh, script, wait)
}

func repeatCommand(alias string) string {
	if alias == "" {
		return "oops fix --repeat"
	}
	return alias + " --repeat"
}
