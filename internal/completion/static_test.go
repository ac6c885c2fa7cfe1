package completion

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticCompleter(t *testing.T) {
	completer := NewStaticCompleter()

	tests := []struct {
		name     string
		line     string
		pos      int
		expected []string
	}{
		{name: "git subcommands", line: "git ch", pos: 6, expected: []string{"checkout", "cherry-pick"}},
		{name: "go subcommands", line: "go te", pos: 5, expected: []string{"test"}},
		{name: "unknown command", line: "foo ", pos: 4, expected: []string{}},
		{name: "second argument", line: "git checkout ma", pos: 15, expected: []string{}},
		{name: "command name", line: "gi", pos: 2, expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := NewRequest(tt.line, tt.pos, FullPage, nil)
			require.NoError(t, completer.Complete(context.Background(), request))
			assert.Equal(t, tt.expected, request.Matches().Strings())
		})
	}

	assert.True(t, completer.Has("docker"))
	assert.False(t, completer.Has("foo"))
	assert.Contains(t, completer.Commands(), "kubectl")
}

func TestStaticCompleterRegister(t *testing.T) {
	completer := NewStaticCompleter()
	completer.Register("deploy", []string{"status", "rollback", "status"})

	request := NewRequest("deploy ", 7, FullPage, nil)
	require.NoError(t, completer.Complete(context.Background(), request))
	assert.Equal(t, []string{"rollback", "status"}, request.Matches().Strings())
	assert.True(t, request.WordComplete())
}

func TestStaticCompleterLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "static.yaml")
		content := "terraform:\n  - plan\n  - apply\n  - init\ngit:\n  - pull\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		completer := NewStaticCompleter()
		require.NoError(t, completer.LoadFile(path))

		request := NewRequest("terraform ", 10, FullPage, nil)
		require.NoError(t, completer.Complete(context.Background(), request))
		assert.Equal(t, []string{"apply", "init", "plan"}, request.Matches().Strings())

		// file entries replace the built-in list
		request = NewRequest("git ", 4, FullPage, nil)
		require.NoError(t, completer.Complete(context.Background(), request))
		assert.Equal(t, []string{"pull"}, request.Matches().Strings())
	})

	t.Run("missing file", func(t *testing.T) {
		completer := NewStaticCompleter()
		assert.Error(t, completer.LoadFile(filepath.Join(dir, "missing.yaml")))
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("- just\n- a list\n"), 0644))

		completer := NewStaticCompleter()
		assert.Error(t, completer.LoadFile(path))
	})
}
