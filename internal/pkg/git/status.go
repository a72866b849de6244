package git

import (
	"strconv"
	"strings"
)

// ChangeType represents the kind of change recorded for a path.
type ChangeType int

const (
	ChangeTypeAdded ChangeType = iota
	ChangeTypeModified
	ChangeTypeDeleted
	ChangeTypeRenamed
	ChangeTypeUntracked
)

// String returns the string representation of ChangeType.
func (c ChangeType) String() string {
	switch c {
	case ChangeTypeAdded:
		return "added"
	case ChangeTypeModified:
		return "modified"
	case ChangeTypeDeleted:
		return "deleted"
	case ChangeTypeRenamed:
		return "renamed"
	case ChangeTypeUntracked:
		return "untracked"
	default:
		return "unknown"
	}
}

// StatusEntry is one line of `git status --porcelain`.
type StatusEntry struct {
	Index    byte // X column
	Worktree byte // Y column
	Path     string
	OrigPath string // set for renames and copies
}

// ChangeType classifies the entry. Untracked files are reported separately
// from added ones so callers can decide how to treat them.
func (e StatusEntry) ChangeType() ChangeType {
	switch {
	case e.Index == '?' && e.Worktree == '?':
		return ChangeTypeUntracked
	case e.Index == 'R' || e.Worktree == 'R' || e.Index == 'C':
		return ChangeTypeRenamed
	case e.Index == 'A' || e.Worktree == 'A':
		return ChangeTypeAdded
	case e.Index == 'D' || e.Worktree == 'D':
		return ChangeTypeDeleted
	default:
		return ChangeTypeModified
	}
}

// IsNew reports whether the path did not exist in HEAD.
func (e StatusEntry) IsNew() bool {
	ct := e.ChangeType()
	return ct == ChangeTypeAdded || ct == ChangeTypeUntracked
}

// String renders the entry as a porcelain line.
func (e StatusEntry) String() string {
	path := e.Path
	if e.OrigPath != "" {
		path = e.OrigPath + " -> " + e.Path
	}
	return string([]byte{e.Index, e.Worktree}) + " " + path
}

// ParseStatus parses porcelain v1 output. Malformed lines are skipped.
func ParseStatus(output string) []StatusEntry {
	var entries []StatusEntry
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if len(line) < 4 || line[2] != ' ' {
			continue
		}

		entry := StatusEntry{Index: line[0], Worktree: line[1]}
		path := line[3:]
		if orig, dest, ok := strings.Cut(path, " -> "); ok {
			entry.OrigPath = unquotePath(orig)
			path = dest
		}
		entry.Path = unquotePath(path)
		if entry.Path == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// unquotePath undoes git's C-style quoting of unusual file names.
func unquotePath(p string) string {
	if len(p) >= 2 && p[0] == '"' && p[len(p)-1] == '"' {
		if s, err := strconv.Unquote(p); err == nil {
			return s
		}
	}
	return p
}
