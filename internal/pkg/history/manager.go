// Package history keeps an opt-in local record of generated commit messages.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/commitpilot/commitpilot/internal/pkg/errors"
)

const (
	// DefaultMaxEntries is the default maximum number of history entries.
	DefaultMaxEntries = 100

	// DefaultFileName is the history file inside the user config directory.
	DefaultFileName = "history.json"
)

// Entry represents a single history entry.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`
	Provider  string    `json:"provider,omitempty"`
	Model     string    `json:"model,omitempty"`
	Branch    string    `json:"branch,omitempty"`
	Files     int       `json:"files"`
	Committed bool      `json:"committed"`
	Pushed    bool      `json:"pushed"`
}

// Manager defines the interface for history management.
type Manager interface {
	Save(entry *Entry) error
	List(limit int) ([]*Entry, error)
	Clear() error
}

// FileManager implements Manager using a JSON file for storage.
type FileManager struct {
	filePath   string
	maxEntries int
	mu         sync.Mutex
}

// DefaultFilePath returns <user config dir>/commitpilot/history.json.
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFileSystemError, "cannot locate user config directory")
	}
	return filepath.Join(dir, "commitpilot", DefaultFileName), nil
}

// NewFileManager creates a new FileManager with the specified file path and max entries.
func NewFileManager(filePath string, maxEntries int) *FileManager {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &FileManager{
		filePath:   filePath,
		maxEntries: maxEntries,
	}
}

// Path returns the history file location.
func (m *FileManager) Path() string {
	return m.filePath
}

// Save appends an entry, filling in ID and timestamp when unset. The oldest
// entries are dropped once maxEntries is exceeded.
func (m *FileManager) Save(entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	entries, err := m.loadEntries()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to load history")
	}

	entries = append(entries, entry)
	if len(entries) > m.maxEntries {
		entries = entries[len(entries)-m.maxEntries:]
	}

	if err := m.saveEntries(entries); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to save history")
	}
	return nil
}

// List returns the most recent entries, newest last. A limit of 0 or less
// returns everything.
func (m *FileManager) List(limit int) ([]*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.loadEntries()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*Entry{}, nil
		}
		return nil, apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to load history")
	}

	if limit <= 0 || len(entries) <= limit {
		return entries, nil
	}
	return entries[len(entries)-limit:], nil
}

// Clear removes all entries from the history file.
func (m *FileManager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.saveEntries([]*Entry{}); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to clear history")
	}
	return nil
}

// loadEntries reads all entries from the history file.
func (m *FileManager) loadEntries() ([]*Entry, error) {
	data, err := os.ReadFile(m.filePath)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	var entries []*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}
	return entries, nil
}

// saveEntries writes entries through a temp file so a crash never leaves a
// half-written history.
func (m *FileManager) saveEntries(entries []*Entry) error {
	dir := filepath.Dir(m.filePath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("failed to set history permissions: %w", err)
	}
	return os.Rename(tmpName, m.filePath)
}
