// Package processor prepares diff text for a prompt: lock files are dropped
// and the rest is truncated to the configured size.
package processor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/commitpilot/commitpilot/internal/pkg/git"
)

// TruncationMarker is appended to a truncated diff. It counts toward the limit.
const TruncationMarker = "\n... (truncated)"

// DefaultMaxDiffSize is used when no positive limit is configured.
const DefaultMaxDiffSize = 7000

// ProcessedDiff contains the result of diff processing.
type ProcessedDiff struct {
	Text             string
	Chunks           []git.DiffChunk
	SkippedLockFiles []string
	OriginalSize     int
	Truncated        bool
}

// Summary lists the files that went into the prompt with their line counts.
func (d *ProcessedDiff) Summary() string {
	if len(d.Chunks) == 0 {
		return "No changes"
	}

	var sb strings.Builder
	totalAdditions, totalDeletions := 0, 0
	for _, chunk := range d.Chunks {
		changeSymbol := "M"
		switch chunk.ChangeType {
		case git.ChangeTypeAdded:
			changeSymbol = "A"
		case git.ChangeTypeDeleted:
			changeSymbol = "D"
		case git.ChangeTypeRenamed:
			changeSymbol = "R"
		}
		sb.WriteString(fmt.Sprintf("[%s] %s (+%d/-%d)\n", changeSymbol, chunk.FilePath, chunk.Additions, chunk.Deletions))
		totalAdditions += chunk.Additions
		totalDeletions += chunk.Deletions
	}
	sb.WriteString(fmt.Sprintf("Total: %d files, +%d additions, -%d deletions", len(d.Chunks), totalAdditions, totalDeletions))
	return sb.String()
}

// Processor filters and truncates diffs.
type Processor struct {
	maxSize int
}

// NewProcessor creates a Processor that keeps diffs within maxSize characters.
func NewProcessor(maxSize int) *Processor {
	if maxSize <= 0 {
		maxSize = DefaultMaxDiffSize
	}
	return &Processor{maxSize: maxSize}
}

// MaxSize returns the character limit.
func (p *Processor) MaxSize() int {
	return p.maxSize
}

// Process drops lock-file sections and truncates the remainder. A diff made
// only of lock files is kept as is so the prompt is never empty for it.
func (p *Processor) Process(diff string) *ProcessedDiff {
	result := &ProcessedDiff{OriginalSize: utf8.RuneCountInString(diff)}

	chunks := git.SplitDiff(diff)
	kept, skipped := FilterLockFiles(chunks)

	text := diff
	if len(skipped) > 0 && len(kept) > 0 {
		text = git.JoinDiff(kept)
		result.SkippedLockFiles = skipped
		result.Chunks = kept
	} else {
		result.Chunks = chunks
	}

	result.Text, result.Truncated = Truncate(text, p.maxSize)
	return result
}

// FilterLockFiles separates lock-file chunks from the rest.
func FilterLockFiles(chunks []git.DiffChunk) (kept []git.DiffChunk, skipped []string) {
	kept = make([]git.DiffChunk, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk.IsLockFile {
			skipped = append(skipped, chunk.FilePath)
			continue
		}
		kept = append(kept, chunk)
	}
	return kept, skipped
}

// Truncate limits text to max characters, marker included. The cut is made
// at the last line break that fits; a single overlong line is cut mid-line.
// Text that already fits is returned unchanged.
func Truncate(text string, max int) (string, bool) {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text, false
	}

	runes := []rune(text)
	markerLen := utf8.RuneCountInString(TruncationMarker)
	if max <= markerLen {
		return string(runes[:max]), true
	}

	head := string(runes[:max-markerLen])
	if idx := strings.LastIndex(head, "\n"); idx > 0 {
		head = head[:idx]
	}
	return head + TruncationMarker, true
}
