package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/animeshkundu/oops/internal/shell"
)

func newAliasCmd() *cobra.Command {
	var shellName, name, binary string
	cmd := &cobra.Command{
		Use:   "alias",
		Short: "Print the shell function that wires oops into your shell",
		Example: "  eval \"$(oops alias)\"            # bash, zsh\n" +
			"  oops alias --shell fish | source  # fish",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sh, err := shell.Detect(shellName)
			if err != nil {
				return err
			}
			name = strings.TrimSpace(name)
			if name == "" {
				return fmt.Errorf("alias name is required")
			}
			fmt.Fprint(cmd.OutOrStdout(), sh.Alias(name, binary))
			return nil
		},
	}
	cmd.Flags().StringVar(&shellName, "shell", "", "shell to integrate with (default $SHELL)")
	cmd.Flags().StringVar(&name, "name", "oops", "name of the shell function")
	cmd.Flags().StringVar(&binary, "binary", "oops", "oops executable the function calls")
	return cmd
}
