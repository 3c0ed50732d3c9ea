// Package which memoizes executable lookups for the lifetime of a process.
package which

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache answers "is this on PATH" questions. Every key is resolved at most
// once; concurrent first lookups of the same key share one resolution.
type Cache struct {
	lookPath func(string) (string, error)
	pathEnv  func() string

	paths sync.Map // name -> string ("" when missing)
	group singleflight.Group

	listOnce sync.Once
	list     []string
}

// New returns a cache backed by exec.LookPath and $PATH.
func New() *Cache {
	return &Cache{
		lookPath: exec.LookPath,
		pathEnv:  func() string { return os.Getenv("PATH") },
	}
}

// NewForPath returns a cache that only searches the directories of pathList,
// ignoring the process environment.
func NewForPath(pathList string) *Cache {
	return &Cache{
		lookPath: func(name string) (string, error) { return lookIn(pathList, name) },
		pathEnv:  func() string { return pathList },
	}
}

func lookIn(pathList, name string) (string, error) {
	if strings.Contains(name, "/") {
		if isExecutable(name) {
			return name, nil
		}
		return "", exec.ErrNotFound
	}
	for _, dir := range filepath.SplitList(pathList) {
		if dir == "" {
			continue
		}
		if p := filepath.Join(dir, name); isExecutable(p) {
			return p, nil
		}
	}
	return "", exec.ErrNotFound
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Mode().Perm()&0o111 != 0
}

// Path returns the resolved location of name, or "" when it is not an
// executable on PATH.
func (c *Cache) Path(name string) string {
	if name == "" {
		return ""
	}
	if v, ok := c.paths.Load(name); ok {
		return v.(string)
	}
	v, _, _ := c.group.Do(name, func() (any, error) {
		if v, ok := c.paths.Load(name); ok {
			return v, nil
		}
		resolved, err := c.lookPath(name)
		if err != nil {
			resolved = ""
		}
		actual, _ := c.paths.LoadOrStore(name, resolved)
		return actual, nil
	})
	return v.(string)
}

// Exists reports whether name resolves to an executable.
func (c *Cache) Exists(name string) bool {
	return c.Path(name) != ""
}

// Executables lists the distinct executable names found on PATH, sorted.
// The directory scan happens once per cache.
func (c *Cache) Executables() []string {
	c.listOnce.Do(func() {
		c.list = scanPath(c.pathEnv())
	})
	out := make([]string, len(c.list))
	copy(out, c.list)
	return out
}

func scanPath(pathEnv string) []string {
	seen := map[string]struct{}{}
	for _, dir := range filepath.SplitList(pathEnv) {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			// Symlinks are resolved by Stat; dangling ones are skipped.
			if info.Mode()&os.ModeSymlink != 0 {
				info, err = os.Stat(filepath.Join(dir, e.Name()))
				if err != nil || info.IsDir() {
					continue
				}
			}
			if info.Mode().Perm()&0o111 == 0 {
				continue
			}
			seen[e.Name()] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
