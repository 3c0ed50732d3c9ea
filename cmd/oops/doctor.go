package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	cliconfig "github.com/animeshkundu/oops/internal/cli/config"
	"github.com/animeshkundu/oops/internal/shell"
	"github.com/animeshkundu/oops/internal/ui"
)

func newDoctorCmd(root *rootOptions) *cobra.Command {
	var writeDefault bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Print local diagnostic information for troubleshooting",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			exe, _ := os.Executable()
			exe = strings.TrimSpace(exe)
			look, _ := exec.LookPath("oops")
			look = strings.TrimSpace(look)

			fmt.Fprintf(out, "oops_executable=%s\n", exe)
			if look != "" {
				fmt.Fprintf(out, "oops_on_path=%s\n", look)
			}
			if exe != "" && look != "" {
				absExe, _ := filepath.EvalSymlinks(exe)
				absLook, _ := filepath.EvalSymlinks(look)
				if absExe != "" && absLook != "" && absExe != absLook {
					fmt.Fprintln(out, "warning=you_are_not_running_the_same_oops_as_on_PATH (adjust PATH or call the intended binary explicitly)")
				}
			}
			fmt.Fprintf(out, "PATH=%s\n", os.Getenv("PATH"))

			if sh, err := shell.Detect(""); err != nil {
				fmt.Fprintf(out, "shell_error=%s\n", err.Error())
			} else {
				fmt.Fprintf(out, "shell=%s\n", sh.Name())
				fmt.Fprintf(out, "shell_binary=%s\n", sh.Binary())
			}
			fmt.Fprintf(out, "interactive=%t\n", ui.Interactive())
			if alias := strings.TrimSpace(os.Getenv("OOPS_ALIAS")); alias != "" {
				fmt.Fprintf(out, "alias=%s\n", alias)
			}

			cfgPath := root.configPath
			fmt.Fprintf(out, "config_path=%s\n", cfgPath)
			if _, err := os.Stat(cfgPath); err != nil {
				fmt.Fprintln(out, "config_present=false")
				if writeDefault {
					if err := cliconfig.Default().Save(cfgPath); err != nil {
						return err
					}
					fmt.Fprintf(out, "config_written=%s\n", cfgPath)
				}
			} else {
				fmt.Fprintln(out, "config_present=true")
			}

			if err := root.prepare(cmd); err != nil {
				fmt.Fprintf(out, "config_error=%s\n", err.Error())
				return nil
			}
			if err := root.loadRules(); err != nil {
				if root.catalog != nil {
					fmt.Fprintf(out, "rules_total=%d\n", root.catalog.Len())
				}
				fmt.Fprintf(out, "rules_error=%s\n", err.Error())
				return nil
			}
			fmt.Fprintf(out, "rules_total=%d\n", root.catalog.Len())
			res, err := root.catalog.Resolve(root.ruleSet())
			if err != nil {
				fmt.Fprintf(out, "rules_error=%s\n", err.Error())
				return nil
			}
			fmt.Fprintf(out, "rules_enabled=%d\n", len(res.Names()))
			for _, name := range res.Unknown {
				fmt.Fprintf(out, "rules_unknown=%s\n", name)
			}
			fmt.Fprintf(out, "require_confirmation=%t\n", root.settings.RequireConfirmation)
			fmt.Fprintf(out, "rule_timeout=%s\n", root.settings.RuleTimeout())
			return nil
		},
	}
	cmd.Flags().BoolVar(&writeDefault, "write-default", false, "write the default settings file when none exists")
	return cmd
}
