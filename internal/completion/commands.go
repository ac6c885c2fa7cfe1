package completion

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
)

// maxFuzzyMatches bounds the suggestions offered when nothing matches by
// prefix.
const maxFuzzyMatches = 5

// CommandNameCompleter completes the command name, the first argument of a
// line.
type CommandNameCompleter struct {
	// PathEnv is searched for executables, in PATH format.
	PathEnv string
	// Extra holds names that are not executables on PATH, such as builtins
	// and commands with completion specs.
	Extra []string
	// Fuzzy offers close names when no name starts with the prefix.
	Fuzzy bool
}

// Names returns every known command name, sorted and without duplicates.
func (c *CommandNameCompleter) Names() []string {
	names := append([]string{}, c.Extra...)

	for _, dir := range filepath.SplitList(c.PathEnv) {
		if dir == "" {
			continue
		}
		entries, err := osReadDir(dir)
		if err != nil {
			continue // Skip directories we can't read
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if info, err := entry.Info(); err == nil && info.Mode()&0111 == 0 {
				continue
			}
			names = append(names, entry.Name())
		}
	}

	names = lo.Uniq(names)
	sort.Strings(names)
	return names
}

// Complete appends command names starting with the cursor argument prefix.
func (c *CommandNameCompleter) Complete(ctx context.Context, request *Request) error {
	if request.CursorIndex() > 0 {
		return nil
	}

	prefix := request.CursorArgumentPrefix()
	names := c.Names()
	request.SetWordComplete(true)

	before := request.Matches().Len()
	filterByPrefix(request, names)
	if request.Matches().Len() > before || !c.Fuzzy || prefix == "" {
		return nil
	}

	for i, match := range fuzzy.Find(prefix, names) {
		if i == maxFuzzyMatches {
			break
		}
		request.AppendMatch(match.Str)
	}
	return nil
}
