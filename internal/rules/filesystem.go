package rules

import (
	"os"
	"regexp"
	"strings"

	"github.com/animeshkundu/oops/internal/corrector"
	"github.com/animeshkundu/oops/internal/shell"
)

var (
	cdArgRe     = regexp.MustCompile(`^cd (.*)`)
	mkdirArgRe  = regexp.MustCompile(`\bmkdir (.*)`)
	rmArgRe     = regexp.MustCompile(`\brm (.*)`)
	touchPathRe = regexp.MustCompile(`touch: (?:cannot touch ')?(.+)/.+'?:`)
)

func cdParentRule() corrector.Rule {
	return &corrector.Definition{
		RuleName: "cd_parent",
		MatchFunc: func(cmd corrector.Command) bool {
			return cmd.Script() == "cd.."
		},
		NewCommandFunc: func(corrector.Command) ([]string, error) {
			return single("cd ..")
		},
		OutputOptional: true,
	}
}

func cdMkdirRule(env Env) corrector.Rule {
	return &corrector.Definition{
		RuleName: "cd_mkdir",
		MatchFunc: forApp(func(cmd corrector.Command) bool {
			return strings.HasPrefix(cmd.Script(), "cd ") && lowerOutputContains(cmd,
				"no such file or directory",
				"cd: can't cd to",
				"does not exist")
		}, "cd"),
		NewCommandFunc: func(cmd corrector.Command) ([]string, error) {
			m := cdArgRe.FindStringSubmatch(cmd.Script())
			if m == nil {
				return nil, nil
			}
			return single(env.Shell.And("mkdir -p "+m[1], "cd "+m[1]))
		},
	}
}

func mkdirPRule() corrector.Rule {
	return &corrector.Definition{
		RuleName: "mkdir_p",
		MatchFunc: func(cmd corrector.Command) bool {
			return strings.Contains(cmd.Script(), "mkdir") &&
				outputContains(cmd, "No such file or directory") &&
				!strings.Contains(cmd.Script(), "mkdir -p")
		},
		NewCommandFunc: func(cmd corrector.Command) ([]string, error) {
			return single(mkdirArgRe.ReplaceAllString(cmd.Script(), "mkdir -p $1"))
		},
	}
}

func touchRule(env Env) corrector.Rule {
	return &corrector.Definition{
		RuleName: "touch",
		MatchFunc: forApp(func(cmd corrector.Command) bool {
			return outputContains(cmd, "No such file or directory") &&
				touchPathRe.MatchString(cmd.Output())
		}, "touch"),
		NewCommandFunc: func(cmd corrector.Command) ([]string, error) {
			m := touchPathRe.FindStringSubmatch(cmd.Output())
			if m == nil {
				return nil, nil
			}
			return single(env.Shell.And("mkdir -p "+m[1], cmd.Script()))
		},
	}
}

func rmDirRule() corrector.Rule {
	return &corrector.Definition{
		RuleName: "rm_dir",
		MatchFunc: forApp(func(cmd corrector.Command) bool {
			return lowerOutputContains(cmd, "is a directory")
		}, "rm"),
		NewCommandFunc: func(cmd corrector.Command) ([]string, error) {
			return single(rmArgRe.ReplaceAllString(cmd.Script(), "rm -rf $1"))
		},
	}
}

func cpOmittingDirectoryRule() corrector.Rule {
	return &corrector.Definition{
		RuleName: "cp_omitting_directory",
		MatchFunc: forApp(func(cmd corrector.Command) bool {
			return lowerOutputContains(cmd, "omitting directory", "is a directory")
		}, "cp"),
		NewCommandFunc: func(cmd corrector.Command) ([]string, error) {
			return single("cp -a" + strings.TrimPrefix(cmd.Script(), "cp"))
		},
	}
}

func grepRecursiveRule() corrector.Rule {
	return &corrector.Definition{
		RuleName: "grep_recursive",
		MatchFunc: forApp(func(cmd corrector.Command) bool {
			return lowerOutputContains(cmd, "is a directory")
		}, "grep"),
		NewCommandFunc: func(cmd corrector.Command) ([]string, error) {
			return single("grep -r " + strings.TrimPrefix(cmd.Script(), "grep "))
		},
	}
}

// lsAllRule retries an ls that printed nothing with hidden entries shown.
func lsAllRule() corrector.Rule {
	return &corrector.Definition{
		RuleName: "ls_all",
		MatchFunc: forApp(func(cmd corrector.Command) bool {
			return strings.TrimSpace(cmd.Output()) == "" && !strings.Contains(cmd.Script(), "-A")
		}, "ls"),
		NewCommandFunc: func(cmd corrector.Command) ([]string, error) {
			return single("ls -A" + strings.TrimPrefix(cmd.Script(), "ls"))
		},
		OutputOptional: true,
	}
}

func slLsRule() corrector.Rule {
	return &corrector.Definition{
		RuleName: "sl_ls",
		MatchFunc: func(cmd corrector.Command) bool {
			return cmd.Script() == "sl"
		},
		NewCommandFunc: func(corrector.Command) ([]string, error) {
			return single("ls")
		},
		OutputOptional: true,
	}
}

// chmodXRule makes a local script executable before running it again.
func chmodXRule(env Env) corrector.Rule {
	return &corrector.Definition{
		RuleName: "chmod_x",
		MatchFunc: func(cmd corrector.Command) bool {
			parts := cmd.Parts()
			if len(parts) == 0 || !strings.HasPrefix(parts[0], "./") {
				return false
			}
			if !lowerOutputContains(cmd, "permission denied") {
				return false
			}
			info, err := os.Stat(parts[0])
			return err == nil && info.Mode().IsRegular() && info.Mode().Perm()&0o111 == 0
		},
		NewCommandFunc: func(cmd corrector.Command) ([]string, error) {
			file := strings.TrimPrefix(cmd.Parts()[0], "./")
			return single(env.Shell.And("chmod +x "+shell.Quote(file), cmd.Script()))
		},
	}
}
