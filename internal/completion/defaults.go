package completion

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
)

var killSignals = []string{
	"-HUP", "-INT", "-QUIT", "-ILL", "-TRAP", "-ABRT", "-BUS", "-FPE",
	"-KILL", "-USR1", "-SEGV", "-USR2", "-PIPE", "-ALRM", "-TERM",
	"-STKFLT", "-CHLD", "-CONT", "-STOP", "-TSTP", "-TTIN", "-TTOU",
	"-URG", "-XCPU", "-XFSZ", "-VTALRM", "-PROF", "-WINCH", "-IO",
	"-PWR", "-SYS",
}

// DefaultCompleter handles built-in default completions for common commands
type DefaultCompleter struct {
	WorkingDir string
	// Environ lists the environment in KEY=value form.
	Environ []string
}

// ProviderFor returns the built-in provider for command, if there is one.
func (d *DefaultCompleter) ProviderFor(command string) (Provider, bool) {
	switch command {
	case "cd", "pushd", "rmdir":
		return &FileCompleter{WorkingDir: d.WorkingDir, DirectoriesOnly: true}, true
	case "export", "unset":
		return ProviderFunc(d.completeEnvVars), true
	case "ssh", "scp", "sftp":
		return ProviderFunc(d.completeSSHHosts), true
	case "make":
		return ProviderFunc(d.completeMakeTargets), true
	case "kill":
		return ProviderFunc(d.completeKillSignals), true
	}
	return nil, false
}

func (d *DefaultCompleter) completeEnvVars(ctx context.Context, request *Request) error {
	keys := lo.Map(d.Environ, func(env string, _ int) string {
		key, _, _ := strings.Cut(env, "=")
		return key
	})
	keys = lo.Uniq(keys)
	sort.Strings(keys)

	filterByPrefix(request, keys)
	request.SetWordComplete(true)
	return nil
}

func (d *DefaultCompleter) completeSSHHosts(ctx context.Context, request *Request) error {
	home, err := osUserHomeDir()
	if err != nil {
		return err
	}

	file, err := os.Open(filepath.Join(home, ".ssh", "config"))
	if err != nil {
		return nil
	}
	defer func() {
		_ = file.Close()
	}()

	var hosts []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "Host ") {
			continue
		}
		// Host can have multiple aliases: "Host foo bar"
		for _, host := range strings.Fields(line)[1:] {
			if !strings.ContainsAny(host, "*?") { // Skip wildcards
				hosts = append(hosts, host)
			}
		}
	}

	hosts = lo.Uniq(hosts)
	sort.Strings(hosts)
	filterByPrefix(request, hosts)
	request.SetWordComplete(true)
	return nil
}

func (d *DefaultCompleter) completeMakeTargets(ctx context.Context, request *Request) error {
	for _, name := range []string{"GNUmakefile", "makefile", "Makefile"} {
		targets, err := readMakeTargets(filepath.Join(d.WorkingDir, name))
		if err != nil {
			continue
		}
		filterByPrefix(request, targets)
		request.SetWordComplete(true)
		return nil // Only parse the first found makefile
	}
	return nil
}

func readMakeTargets(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	var targets []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "\t") || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ".") {
			continue
		}
		head, rest, found := strings.Cut(line, ":")
		// "a := b" is an assignment, not a rule
		if !found || strings.HasPrefix(rest, "=") || strings.Contains(head, "=") {
			continue
		}
		// Handle multiple targets "clean install:"
		targets = append(targets, strings.Fields(head)...)
	}

	targets = lo.Uniq(targets)
	sort.Strings(targets)
	return targets, scanner.Err()
}

func (d *DefaultCompleter) completeKillSignals(ctx context.Context, request *Request) error {
	// without a leading dash the user is typing a PID
	if !strings.HasPrefix(request.CursorArgumentPrefix(), "-") {
		return nil
	}
	filterByPrefix(request, killSignals)
	request.SetWordComplete(true)
	return nil
}
