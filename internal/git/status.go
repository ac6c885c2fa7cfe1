package git

import (
	"strings"

	"github.com/samber/lo"
)

// StatusArgs are the git arguments whose output ParseStatus reads.
var StatusArgs = []string{"status", "--porcelain=v2", "--branch", "--untracked-files=all"}

// BranchArgs are the git arguments whose output ParseBranches reads.
var BranchArgs = []string{"branch", "--format=%(refname:short)"}

type FileStatus struct {
	Path      string
	Staged    bool
	Unstaged  bool
	Untracked bool
	Conflict  bool
}

type RepoStatus struct {
	Branch string
	Ahead  int
	Behind int
	Files  []FileStatus
}

// Clean reports whether the working tree has no changes at all.
func (s *RepoStatus) Clean() bool {
	return len(s.Files) == 0
}

// Paths returns the paths of the files accepted by keep, in status order.
func (s *RepoStatus) Paths(keep func(FileStatus) bool) []string {
	return lo.FilterMap(s.Files, func(file FileStatus, _ int) (string, bool) {
		return file.Path, keep(file)
	})
}

// ParseStatus reads the output of git status --porcelain=v2 --branch.
func ParseStatus(out []byte) *RepoStatus {
	status := &RepoStatus{}

	for _, line := range strings.Split(string(out), "\n") {
		if len(line) < 2 {
			continue
		}

		switch line[0] {
		case '#':
			parts := strings.Fields(line)
			if len(parts) < 3 {
				continue
			}
			switch parts[1] {
			case "branch.head":
				status.Branch = parts[2]
			case "branch.ab":
				// # branch.ab +ahead -behind
				if len(parts) >= 4 {
					status.Ahead = parseInt(parts[2])
					status.Behind = parseInt(parts[3])
				}
			}
		case '1':
			// 1 <XY> <sub> <mH> <mI> <mW> <hH> <hI> <path>
			if file, ok := changedFile(line, 9); ok {
				status.Files = append(status.Files, file)
			}
		case '2':
			// 2 <XY> <sub> <mH> <mI> <mW> <hH> <hI> <X><score> <path><tab><origPath>
			if file, ok := changedFile(line, 10); ok {
				file.Path, _, _ = strings.Cut(file.Path, "\t")
				status.Files = append(status.Files, file)
			}
		case 'u':
			// u <XY> <sub> <m1> <m2> <m3> <mW> <h1> <h2> <h3> <path>
			if file, ok := changedFile(line, 11); ok {
				file.Conflict = true
				status.Files = append(status.Files, file)
			}
		case '?':
			status.Files = append(status.Files, FileStatus{Path: line[2:], Untracked: true})
		}
	}

	return status
}

func changedFile(line string, fields int) (FileStatus, bool) {
	parts := strings.SplitN(line, " ", fields)
	if len(parts) < fields || len(parts[1]) != 2 {
		return FileStatus{}, false
	}
	xy := parts[1]
	return FileStatus{
		Path:     parts[fields-1],
		Staged:   xy[0] != '.',
		Unstaged: xy[1] != '.',
	}, true
}

// ParseBranches reads the output of git branch --format=%(refname:short).
func ParseBranches(out []byte) []string {
	return lo.FilterMap(strings.Split(string(out), "\n"), func(line string, _ int) (string, bool) {
		line = strings.TrimSpace(line)
		return line, line != ""
	})
}

func parseInt(s string) int {
	var res int
	for _, r := range s {
		if r < '0' || r > '9' {
			continue
		}
		res = res*10 + int(r-'0')
	}
	return res
}
