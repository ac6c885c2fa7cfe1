package completion

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// Function variables for mocking in tests
var osReadDir = os.ReadDir
var osUserHomeDir = os.UserHomeDir

// FileCompleter completes the cursor argument as a file path.
type FileCompleter struct {
	// WorkingDir resolves relative paths. Empty means the process directory.
	WorkingDir string
	// DirectoriesOnly skips everything that is not a directory.
	DirectoriesOnly bool
}

// Complete appends paths starting with the cursor argument prefix. Directory
// matches carry a trailing separator; a lone directory match is not word
// complete so the user can keep descending.
func (f *FileCompleter) Complete(ctx context.Context, request *Request) error {
	prefix := request.CursorArgumentPrefix()

	// "dir/par" -> "dir/" and "par"
	prefixDir := ""
	filePrefix := prefix
	if idx := strings.LastIndex(prefix, "/"); idx >= 0 {
		prefixDir = prefix[:idx+1]
		filePrefix = prefix[idx+1:]
	}

	dir, err := f.resolveDir(prefixDir)
	if err != nil {
		return err
	}

	entries, err := osReadDir(dir)
	if err != nil {
		// unreadable directories simply have no completions
		request.SetWordComplete(true)
		return nil
	}

	added := 0
	lastIsDir := false
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, filePrefix) {
			continue
		}
		// hidden files only when asked for
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(filePrefix, ".") {
			continue
		}
		isDir := entry.IsDir()
		if f.DirectoriesOnly && !isDir {
			continue
		}

		match := prefixDir + name
		if isDir {
			match += "/"
		}
		request.AppendMatch(match)
		added++
		lastIsDir = isDir
	}

	request.SetWordComplete(!(added == 1 && lastIsDir))
	return nil
}

func (f *FileCompleter) resolveDir(prefixDir string) (string, error) {
	if strings.HasPrefix(prefixDir, "~/") {
		home, err := osUserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, prefixDir[1:]), nil
	}

	if filepath.IsAbs(prefixDir) {
		return prefixDir, nil
	}

	workingDir := f.WorkingDir
	if workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		workingDir = wd
	}
	return filepath.Join(workingDir, prefixDir), nil
}
