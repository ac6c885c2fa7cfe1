package completion

import (
	"context"
	"os/exec"

	"github.com/robottwo/gcomp/internal/git"
)

// Function variable for mocking in tests
var runGit = func(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	return cmd.Output()
}

// GitCompleter handles built-in completion for git subcommand arguments.
// Subcommand names themselves come from the static word lists.
type GitCompleter struct {
	WorkingDir string
}

func (g *GitCompleter) Complete(ctx context.Context, request *Request) error {
	if request.CommandName() != "git" || request.CursorIndex() < 2 {
		return nil
	}

	switch request.ParsedLine().At(1) {
	case "checkout", "switch", "merge", "rebase", "branch":
		return g.completeBranches(ctx, request)
	case "add":
		return g.completeFiles(ctx, request, func(f git.FileStatus) bool {
			return f.Unstaged || f.Untracked || f.Conflict
		})
	case "restore", "reset":
		return g.completeFiles(ctx, request, func(f git.FileStatus) bool {
			return f.Staged || f.Unstaged
		})
	case "rm":
		return g.completeFiles(ctx, request, func(f git.FileStatus) bool {
			return !f.Untracked
		})
	}
	return nil
}

func (g *GitCompleter) completeBranches(ctx context.Context, request *Request) error {
	out, err := runGit(ctx, g.WorkingDir, git.BranchArgs...)
	if err != nil {
		return err
	}

	filterByPrefix(request, git.ParseBranches(out))
	request.SetWordComplete(true)
	return nil
}

func (g *GitCompleter) completeFiles(ctx context.Context, request *Request, keep func(git.FileStatus) bool) error {
	out, err := runGit(ctx, g.WorkingDir, git.StatusArgs...)
	if err != nil {
		return err
	}

	filterByPrefix(request, git.ParseStatus(out).Paths(keep))
	request.SetWordComplete(true)
	return nil
}
