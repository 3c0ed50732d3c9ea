package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// All mirrors the rule-set wildcard understood by the corrector.
const All = "ALL"

// Settings models the YAML settings file. Unset keys keep their defaults.
type Settings struct {
	Rules                    []string       `yaml:"rules"`
	ExcludeRules             []string       `yaml:"exclude_rules"`
	Priority                 map[string]int `yaml:"priority"`
	RequireConfirmation      bool           `yaml:"require_confirmation"`
	WaitCommandSeconds       int            `yaml:"wait_command_seconds"`
	WaitSlowCommandSeconds   int            `yaml:"wait_slow_command_seconds"`
	SlowCommands             []string       `yaml:"slow_commands"`
	RuleTimeoutMillis        int            `yaml:"rule_timeout_ms"`
	SideEffectTimeoutSeconds int            `yaml:"side_effect_timeout_seconds"`
	NumCloseMatches          int            `yaml:"num_close_matches"`
	MaxWorkers               int            `yaml:"max_workers"`
	NoColors                 bool           `yaml:"no_colors"`
	Debug                    bool           `yaml:"debug"`
	Repeat                   bool           `yaml:"repeat"`
}

// ErrInvalidSetting indicates a malformed value in the file or environment.
var ErrInvalidSetting = errors.New("invalid setting")

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Rules:                    []string{All},
		Priority:                 map[string]int{},
		RequireConfirmation:      true,
		WaitCommandSeconds:       3,
		WaitSlowCommandSeconds:   15,
		SlowCommands:             []string{"lein", "react-native", "gradle", "./gradlew", "vagrant"},
		RuleTimeoutMillis:        250,
		SideEffectTimeoutSeconds: 30,
		NumCloseMatches:          3,
	}
}

// Load layers the settings file at path and the OOPS_* environment on top of
// Default. A missing file is not an error.
func Load(path string) (*Settings, error) {
	s := Default()
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		expanded, err := expandPath(trimmed)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(expanded)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, s); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	if err := s.applyEnv(); err != nil {
		return nil, err
	}
	if s.Priority == nil {
		s.Priority = map[string]int{}
	}
	return s, nil
}

// Save writes the settings to disk, creating parent directories if needed.
func (s *Settings) Save(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("config is nil")
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return err
	}
	return os.WriteFile(expanded, data, 0o600)
}

// WaitFor returns how long to wait for script when re-running it to
// capture its output. Non-positive settings fall back to the defaults so a
// hanging command can never block a cycle.
func (s *Settings) WaitFor(script string) time.Duration {
	def := Default()
	fields := strings.Fields(script)
	if len(fields) > 0 {
		for _, slow := range s.SlowCommands {
			if fields[0] == slow {
				return seconds(s.WaitSlowCommandSeconds, def.WaitSlowCommandSeconds)
			}
		}
	}
	return seconds(s.WaitCommandSeconds, def.WaitCommandSeconds)
}

func seconds(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
}

// RuleTimeout is the per-rule evaluation budget.
func (s *Settings) RuleTimeout() time.Duration {
	return time.Duration(s.RuleTimeoutMillis) * time.Millisecond
}

// SideEffectTimeout bounds the post-selection action.
func (s *Settings) SideEffectTimeout() time.Duration {
	return time.Duration(s.SideEffectTimeoutSeconds) * time.Second
}

func (s *Settings) applyEnv() error {
	if v, ok := lookupEnv("OOPS_RULES"); ok {
		s.Rules = splitList(v)
	}
	if v, ok := lookupEnv("OOPS_EXCLUDE_RULES"); ok {
		s.ExcludeRules = splitList(v)
	}
	if v, ok := lookupEnv("OOPS_PRIORITY"); ok {
		priority, err := ParsePriority(v)
		if err != nil {
			return err
		}
		s.Priority = priority
	}
	if v, ok := lookupEnv("OOPS_SLOW_COMMANDS"); ok {
		s.SlowCommands = splitList(v)
	}
	s.RequireConfirmation = parseBoolEnv("OOPS_REQUIRE_CONFIRMATION", s.RequireConfirmation)
	s.NoColors = parseBoolEnv("OOPS_NO_COLORS", s.NoColors)
	s.Debug = parseBoolEnv("OOPS_DEBUG", s.Debug)
	s.Repeat = parseBoolEnv("OOPS_REPEAT", s.Repeat)
	s.WaitCommandSeconds = parseIntEnv("OOPS_WAIT_COMMAND", s.WaitCommandSeconds)
	s.WaitSlowCommandSeconds = parseIntEnv("OOPS_WAIT_SLOW_COMMAND", s.WaitSlowCommandSeconds)
	s.RuleTimeoutMillis = parseIntEnv("OOPS_RULE_TIMEOUT_MS", s.RuleTimeoutMillis)
	s.SideEffectTimeoutSeconds = parseIntEnv("OOPS_SIDE_EFFECT_TIMEOUT", s.SideEffectTimeoutSeconds)
	s.NumCloseMatches = parseIntEnv("OOPS_NUM_CLOSE_MATCHES", s.NumCloseMatches)
	s.MaxWorkers = parseIntEnv("OOPS_MAX_WORKERS", s.MaxWorkers)
	return nil
}

// ParsePriority parses "name=N:name=N" overrides.
func ParsePriority(v string) (map[string]int, error) {
	out := map[string]int{}
	for _, item := range splitList(v) {
		name, value, ok := strings.Cut(item, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: OOPS_PRIORITY entry %q, want name=N", ErrInvalidSetting, item)
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("%w: OOPS_PRIORITY entry %q: %v", ErrInvalidSetting, item, err)
		}
		out[name] = n
	}
	return out, nil
}

// SplitList splits a colon or comma separated list, dropping blanks.
func SplitList(v string) []string { return splitList(v) }

func splitList(v string) []string {
	fields := strings.FieldsFunc(v, func(r rune) bool { return r == ':' || r == ',' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

func parseBoolEnv(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	switch strings.ToLower(v) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func parseIntEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func expandPath(path string) (string, error) {
	switch {
	case strings.HasPrefix(path, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[2:]), nil
	case path == "~":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return home, nil
	case filepath.IsAbs(path):
		return path, nil
	default:
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return filepath.Join(cwd, path), nil
	}
}
