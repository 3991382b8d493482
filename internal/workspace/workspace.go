// Package workspace manages scoped directories for build runs.
//
// Each orchestrator run owns an ephemeral timestamped root (e.g.
// wheelsmith-20260828-101530) holding the per-requirement temporary build
// directories and the ephemeral wheel cache. The root is removed on Cleanup,
// which bounds the lifetime of everything built only "for this run".
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"log/slog"

	"git.home.luguber.info/inful/wheelsmith/internal/logfields"
)

// Manager handles the lifecycle of a run-scoped workspace directory.
type Manager struct {
	baseDir string
	runDir  string
}

// NewManager creates a workspace manager rooted at baseDir (the system temp
// directory when empty).
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// Create creates the timestamped run directory.
func (m *Manager) Create() error {
	timestamp := time.Now().Format("20060102-150405")
	runDir, err := os.MkdirTemp(m.baseDir, fmt.Sprintf("wheelsmith-%s-", timestamp))
	if err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}

	m.runDir = runDir
	slog.Debug("Created workspace", logfields.Path(runDir))
	return nil
}

// Path returns the run directory path, empty before Create.
func (m *Manager) Path() string { return m.runDir }

// Cleanup removes the run directory and everything under it.
func (m *Manager) Cleanup() error {
	if m.runDir == "" {
		return nil
	}
	if err := os.RemoveAll(m.runDir); err != nil {
		return fmt.Errorf("failed to cleanup workspace: %w", err)
	}
	slog.Debug("Cleaned up workspace", logfields.Path(m.runDir))
	m.runDir = ""
	return nil
}

// CreateSubdir creates a named subdirectory within the run directory.
func (m *Manager) CreateSubdir(name string) (string, error) {
	if m.runDir == "" {
		return "", fmt.Errorf("workspace not created")
	}
	subdir := filepath.Join(m.runDir, name)
	if err := os.MkdirAll(subdir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}
	return subdir, nil
}

// CreateTempSubdir creates a uniquely-named subdirectory with the given
// prefix within the run directory. Used for per-requirement build dirs so
// repeated builds of the same name never collide.
func (m *Manager) CreateTempSubdir(prefix string) (string, error) {
	if m.runDir == "" {
		return "", fmt.Errorf("workspace not created")
	}
	subdir, err := os.MkdirTemp(m.runDir, prefix+"-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp subdirectory: %w", err)
	}
	return subdir, nil
}
