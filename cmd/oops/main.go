package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cliconfig "github.com/animeshkundu/oops/internal/cli/config"
	"github.com/animeshkundu/oops/internal/corrector"
	"github.com/animeshkundu/oops/internal/logging"
	"github.com/animeshkundu/oops/internal/rules"
	"github.com/animeshkundu/oops/internal/selector"
	"github.com/animeshkundu/oops/internal/shell"
	"github.com/animeshkundu/oops/internal/which"
)

type rootOptions struct {
	configPath   string
	rules        string
	excludeRules string
	debug        bool

	settings  *cliconfig.Settings
	logger    *zap.Logger
	shell     shell.Shell
	catalog   *corrector.Catalog
	corrector *corrector.Corrector
	// prompter replaces the terminal picker in tests.
	prompter selector.Prompter
}

// prepare layers the command-line overrides on top of file and environment
// settings and builds the logger.
func (r *rootOptions) prepare(cmd *cobra.Command) error {
	settings, err := cliconfig.Load(r.configPath)
	if err != nil {
		return err
	}
	if strings.TrimSpace(r.rules) != "" {
		settings.Rules = cliconfig.SplitList(r.rules)
	}
	if strings.TrimSpace(r.excludeRules) != "" {
		settings.ExcludeRules = cliconfig.SplitList(r.excludeRules)
	}
	if r.debug {
		settings.Debug = true
	}
	r.settings = settings
	r.logger = logging.New(logging.Options{
		Debug:    settings.Debug,
		Output:   cmd.ErrOrStderr(),
		NoColors: settings.NoColors,
	}).With(zap.String("cycle", uuid.NewString()))
	return nil
}

// loadRules detects the shell, binds the built-in catalog and resolves the
// rule selection. A ConfigError here stops the command before anything runs.
func (r *rootOptions) loadRules() error {
	sh, err := shell.Detect("")
	if err != nil {
		r.logger.Warn("falling back to bash", zap.Error(err))
		sh = shell.Bash()
	}
	r.shell = sh
	catalog, err := rules.Init(rules.Env{
		Which:           which.New(),
		Shell:           sh,
		NumCloseMatches: r.settings.NumCloseMatches,
	})
	if err != nil {
		return err
	}
	r.catalog = catalog
	c, err := corrector.New(catalog, r.ruleSet(),
		corrector.WithLogger(r.logger),
		corrector.WithConcurrency(r.settings.MaxWorkers),
		corrector.WithRuleTimeout(r.settings.RuleTimeout()),
	)
	if err != nil {
		return err
	}
	r.corrector = c
	return nil
}

// ruleSet converts the settings into the corrector's rule selection.
func (r *rootOptions) ruleSet() corrector.RuleSet {
	return corrector.RuleSet{
		Enabled:  r.settings.Rules,
		Excluded: r.settings.ExcludeRules,
		Priority: r.settings.Priority,
	}
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "oops",
		Short:         "Correct the previous console command",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	defaultConfig := os.Getenv("OOPS_CONFIG")
	if defaultConfig == "" {
		defaultConfig = cliconfig.DefaultConfigPath()
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfig, "path to settings file (default $XDG_CONFIG_HOME/oops/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.rules, "rules", "", "colon-separated rules to enable (overrides settings; ALL for every default rule)")
	rootCmd.PersistentFlags().StringVar(&opts.excludeRules, "exclude-rules", "", "colon-separated rules to disable (overrides settings)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log rule failures and timings to stderr")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		// doctor reports config errors instead of failing on them.
		if cmd.Name() == "doctor" || cmd.Name() == "alias" {
			return nil
		}
		if err := opts.prepare(cmd); err != nil {
			return err
		}
		return opts.loadRules()
	}
	rootCmd.PersistentPostRun = func(*cobra.Command, []string) {
		if opts.logger != nil {
			_ = opts.logger.Sync()
		}
	}

	rootCmd.AddCommand(newFixCmd(opts))
	rootCmd.AddCommand(newAliasCmd())
	rootCmd.AddCommand(newRulesCmd(opts))
	rootCmd.AddCommand(newDoctorCmd(opts))
	return rootCmd
}

func main() {
	if err := newRootCmd(&rootOptions{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "oops:", err)
		os.Exit(1)
	}
}
