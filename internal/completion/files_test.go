package completion

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFileTree(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()

	files := []string{
		"file1.txt",
		"file2.txt",
		"folder1/inside.txt",
		".hidden",
		"with space.txt",
	}
	for _, f := range files {
		path := filepath.Join(tmpDir, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("test"), 0644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "folder2"), 0755))

	return tmpDir
}

func TestFileCompleter(t *testing.T) {
	tmpDir := setupFileTree(t)

	tests := []struct {
		name             string
		line             string
		pos              int
		directoriesOnly  bool
		expected         []string
		wantWordComplete bool
	}{
		{
			name:             "everything visible",
			line:             "cat ",
			pos:              4,
			expected:         []string{"file1.txt", "file2.txt", "folder1/", "folder2/", "with space.txt"},
			wantWordComplete: true,
		},
		{
			name:             "prefix",
			line:             "cat fi",
			pos:              6,
			expected:         []string{"file1.txt", "file2.txt"},
			wantWordComplete: true,
		},
		{
			name:             "hidden files when asked",
			line:             "cat .h",
			pos:              6,
			expected:         []string{".hidden"},
			wantWordComplete: true,
		},
		{
			name:             "inside directory",
			line:             "cat folder1/",
			pos:              12,
			expected:         []string{"folder1/inside.txt"},
			wantWordComplete: true,
		},
		{
			name:             "single directory keeps going",
			line:             "cat folder2",
			pos:              11,
			expected:         []string{"folder2/"},
			wantWordComplete: false,
		},
		{
			name:             "quoted argument with space",
			line:             `cat "with s`,
			pos:              11,
			expected:         []string{"with space.txt"},
			wantWordComplete: true,
		},
		{
			name:             "directories only",
			line:             "cd ",
			pos:              3,
			directoriesOnly:  true,
			expected:         []string{"folder1/", "folder2/"},
			wantWordComplete: true,
		},
		{
			name:             "missing directory",
			line:             "cat nope/",
			pos:              9,
			expected:         []string{},
			wantWordComplete: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &FileCompleter{WorkingDir: tmpDir, DirectoriesOnly: tt.directoriesOnly}
			request := NewRequest(tt.line, tt.pos, FullPage, nil)
			require.NoError(t, completer.Complete(context.Background(), request))
			assert.Equal(t, tt.expected, request.Matches().Strings())
			assert.Equal(t, tt.wantWordComplete, request.WordComplete())
		})
	}
}

func TestFileCompleterPaths(t *testing.T) {
	tmpDir := setupFileTree(t)

	t.Run("absolute path", func(t *testing.T) {
		completer := &FileCompleter{WorkingDir: "/"}
		line := "cat " + tmpDir + "/file1"
		request := NewRequest(line, len([]rune(line)), FullPage, nil)
		require.NoError(t, completer.Complete(context.Background(), request))
		assert.Equal(t, []string{tmpDir + "/file1.txt"}, request.Matches().Strings())
	})

	t.Run("home directory", func(t *testing.T) {
		original := osUserHomeDir
		osUserHomeDir = func() (string, error) { return tmpDir, nil }
		t.Cleanup(func() { osUserHomeDir = original })

		completer := &FileCompleter{WorkingDir: "/"}
		request := NewRequest("cat ~/folder1/in", 16, FullPage, nil)
		require.NoError(t, completer.Complete(context.Background(), request))
		assert.Equal(t, []string{"~/folder1/inside.txt"}, request.Matches().Strings())
	})
}
