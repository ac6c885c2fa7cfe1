package completion

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// StaticCompleter handles static word lists for common commands
type StaticCompleter struct {
	completions map[string][]string
}

func NewStaticCompleter() *StaticCompleter {
	sc := &StaticCompleter{
		completions: make(map[string][]string),
	}
	sc.registerDefaults()
	return sc
}

func (s *StaticCompleter) registerDefaults() {
	s.Register("docker", []string{
		"attach", "build", "commit", "cp", "create", "diff", "events", "exec",
		"export", "history", "images", "import", "info", "inspect", "kill",
		"load", "login", "logout", "logs", "pause", "port", "ps", "pull",
		"push", "rename", "restart", "rm", "rmi", "run", "save", "search",
		"start", "stats", "stop", "tag", "top", "unpause", "update", "version", "wait",
	})

	s.Register("git", []string{
		"add", "branch", "checkout", "cherry-pick", "clone", "commit", "diff",
		"fetch", "init", "log", "merge", "pull", "push", "rebase", "remote",
		"reset", "restore", "show", "stash", "status", "switch", "tag",
	})

	s.Register("kubectl", []string{
		"apply", "get", "describe", "delete", "logs", "exec", "port-forward",
		"config", "cluster-info", "top", "explain", "run", "create", "edit",
		"scale", "autoscale", "rollout", "cordon", "drain", "taint", "label",
		"annotate", "completion", "api-resources", "api-versions", "version",
	})

	s.Register("npm", []string{
		"install", "start", "test", "run", "build", "publish", "update",
		"uninstall", "init", "version", "config", "list", "audit", "outdated",
		"ci", "cache", "doctor", "login", "logout", "link", "unlink",
	})

	s.Register("yarn", []string{
		"add", "install", "remove", "run", "test", "build", "start", "publish",
		"init", "list", "global", "upgrade", "why", "cache", "create",
	})

	s.Register("pnpm", []string{
		"add", "install", "remove", "run", "test", "build", "start", "publish",
		"init", "list", "store", "update", "why", "prune",
	})

	s.Register("go", []string{
		"build", "run", "test", "get", "mod", "install", "list", "vet", "fmt",
		"doc", "env", "bug", "clean", "fix", "generate", "tool", "version", "work",
	})
}

// Register sets the subcommands offered for command, sorted.
func (s *StaticCompleter) Register(command string, subcommands []string) {
	words := lo.Uniq(subcommands)
	sort.Strings(words)
	s.completions[command] = words
}

// LoadFile reads extra word lists from a YAML file mapping command names to
// their subcommands. Entries replace the built-in list for that command.
func (s *StaticCompleter) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read static completions: %w", err)
	}

	var lists map[string][]string
	if err := yaml.Unmarshal(data, &lists); err != nil {
		return fmt.Errorf("failed to parse static completions %s: %w", path, err)
	}

	for command, words := range lists {
		s.Register(command, words)
	}
	return nil
}

// Has reports whether command has a word list.
func (s *StaticCompleter) Has(command string) bool {
	_, ok := s.completions[command]
	return ok
}

// Commands returns every command with a word list.
func (s *StaticCompleter) Commands() []string {
	commands := lo.Keys(s.completions)
	sort.Strings(commands)
	return commands
}

// Complete offers the subcommands of the request's command, but only for its
// first argument.
func (s *StaticCompleter) Complete(ctx context.Context, request *Request) error {
	if request.CursorIndex() != 1 {
		return nil
	}
	words, ok := s.completions[request.CommandName()]
	if !ok {
		return nil
	}

	filterByPrefix(request, words)
	request.SetWordComplete(true)
	return nil
}
