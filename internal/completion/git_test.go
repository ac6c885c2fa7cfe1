package completion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitCompleter(t *testing.T) {
	original := runGit
	t.Cleanup(func() { runGit = original })

	runGit = func(ctx context.Context, dir string, args ...string) ([]byte, error) {
		switch strings.Join(args, " ") {
		case "branch --format=%(refname:short)":
			return []byte("main\nfeature/login\nfix-build\n"), nil
		case "status --porcelain=v2 --branch --untracked-files=all":
			return []byte("# branch.head main\n" +
				"1 .M N... 100644 100644 100644 aaa bbb internal/core/completer.go\n" +
				"1 M. N... 100644 100644 100644 ccc ddd go.mod\n" +
				"? notes.md\n"), nil
		}
		return nil, errors.New("unexpected git call")
	}

	tests := []struct {
		name     string
		line     string
		pos      int
		expected []string
	}{
		{name: "checkout branches", line: "git checkout f", pos: 14, expected: []string{"feature/login", "fix-build"}},
		{name: "switch branches", line: "git switch ", pos: 11, expected: []string{"main", "feature/login", "fix-build"}},
		{name: "add changed files", line: "git add ", pos: 8, expected: []string{"internal/core/completer.go", "notes.md"}},
		{name: "restore tracked changes", line: "git restore ", pos: 12, expected: []string{"internal/core/completer.go", "go.mod"}},
		{name: "rm tracked files by prefix", line: "git rm g", pos: 8, expected: []string{"go.mod"}},
		{name: "unhandled subcommand", line: "git log ", pos: 8, expected: []string{}},
		{name: "subcommand position", line: "git ch", pos: 6, expected: []string{}},
		{name: "other command", line: "hg checkout ", pos: 12, expected: []string{}},
	}

	completer := &GitCompleter{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := NewRequest(tt.line, tt.pos, FullPage, nil)
			require.NoError(t, completer.Complete(context.Background(), request))
			assert.Equal(t, tt.expected, request.Matches().Strings())
		})
	}

	t.Run("git failure", func(t *testing.T) {
		runGit = func(ctx context.Context, dir string, args ...string) ([]byte, error) {
			return nil, errors.New("not a git repository")
		}
		request := NewRequest("git checkout ", 13, FullPage, nil)
		assert.Error(t, completer.Complete(context.Background(), request))
	})
}
