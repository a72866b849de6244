package git

import (
	"path/filepath"
	"strings"
)

// DiffChunk represents one file's segment of git diff output.
type DiffChunk struct {
	FilePath   string
	ChangeType ChangeType
	Additions  int
	Deletions  int
	Content    string
	IsLockFile bool
	IsBinary   bool
	OldPath    string // For renames, the original file path
}

// lockFilePatterns contains lock files whose diffs carry no useful signal.
var lockFilePatterns = []string{
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"go.sum",
	"Cargo.lock",
	"Gemfile.lock",
	"composer.lock",
	"poetry.lock",
	"Pipfile.lock",
}

// isLockFile checks if a file path matches any lock file pattern.
func isLockFile(filePath string) bool {
	baseName := filepath.Base(filePath)
	for _, pattern := range lockFilePatterns {
		if baseName == pattern {
			return true
		}
	}
	return strings.HasSuffix(baseName, ".lock")
}

// SplitDiff splits unified diff text into per-file chunks.
func SplitDiff(diff string) []DiffChunk {
	var chunks []DiffChunk
	for _, fileDiff := range splitByFileDiff(diff) {
		if strings.TrimSpace(fileDiff) == "" {
			continue
		}
		chunks = append(chunks, parseFileDiff(fileDiff))
	}
	return chunks
}

// JoinDiff reassembles chunks into diff text.
func JoinDiff(chunks []DiffChunk) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, strings.TrimRight(c.Content, "\n"))
	}
	return strings.Join(parts, "\n")
}

// splitByFileDiff splits the diff output by file boundaries.
func splitByFileDiff(diffStr string) []string {
	var result []string
	var current strings.Builder
	for _, line := range strings.SplitAfter(diffStr, "\n") {
		if strings.HasPrefix(line, "diff --git ") && current.Len() > 0 {
			result = append(result, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		result = append(result, current.String())
	}
	return result
}

// parseFileDiff parses a single file's diff into a DiffChunk.
func parseFileDiff(fileDiff string) DiffChunk {
	chunk := DiffChunk{
		Content:    fileDiff,
		ChangeType: ChangeTypeModified,
	}

	inHunk := false
	for _, line := range strings.Split(fileDiff, "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git "):
			chunk.FilePath = extractFilePath(line)
		case strings.HasPrefix(line, "@@"):
			inHunk = true
		case inHunk && strings.HasPrefix(line, "+"):
			chunk.Additions++
		case inHunk && strings.HasPrefix(line, "-"):
			chunk.Deletions++
		case inHunk:
		case strings.HasPrefix(line, "new file mode"):
			chunk.ChangeType = ChangeTypeAdded
		case strings.HasPrefix(line, "deleted file mode"):
			chunk.ChangeType = ChangeTypeDeleted
		case strings.HasPrefix(line, "rename from "):
			chunk.OldPath = strings.TrimPrefix(line, "rename from ")
			chunk.ChangeType = ChangeTypeRenamed
		case strings.HasPrefix(line, "rename to "):
			chunk.FilePath = strings.TrimPrefix(line, "rename to ")
		case strings.HasPrefix(line, "Binary files"), strings.HasPrefix(line, "GIT binary patch"):
			chunk.IsBinary = true
		}
	}

	chunk.IsLockFile = isLockFile(chunk.FilePath)
	return chunk
}

// extractFilePath extracts the file path from a diff header line.
// Format: "diff --git a/path/to/file b/path/to/file"
func extractFilePath(line string) string {
	line = strings.TrimPrefix(line, "diff --git ")

	if idx := strings.LastIndex(line, " b/"); idx >= 0 {
		return line[idx+3:]
	}

	if strings.HasPrefix(line, "a/") {
		parts := strings.SplitN(line, " ", 2)
		return strings.TrimPrefix(parts[0], "a/")
	}

	return line
}
