package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_CreateAndCleanup(t *testing.T) {
	tempBase := t.TempDir()
	mgr := NewManager(tempBase)

	if err := mgr.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	wsPath := mgr.Path()
	if wsPath == "" {
		t.Fatal("Path() returned empty string")
	}

	if !strings.Contains(filepath.Base(wsPath), "wheelsmith-") {
		t.Errorf("Expected timestamped directory, got: %s", wsPath)
	}

	if _, err := os.Stat(wsPath); os.IsNotExist(err) {
		t.Errorf("Workspace directory does not exist: %s", wsPath)
	}

	if err := mgr.Cleanup(); err != nil {
		t.Fatalf("Cleanup() failed: %v", err)
	}

	if _, err := os.Stat(wsPath); !os.IsNotExist(err) {
		t.Errorf("Workspace directory still exists after cleanup: %s", wsPath)
	}
}

func TestManager_CleanupBeforeCreate(t *testing.T) {
	mgr := NewManager(t.TempDir())
	if err := mgr.Cleanup(); err != nil {
		t.Fatalf("Cleanup() before Create() should be a no-op, got: %v", err)
	}
}

func TestManager_CreateSubdir(t *testing.T) {
	mgr := NewManager(t.TempDir())

	if _, err := mgr.CreateSubdir("ephem"); err == nil {
		t.Fatal("CreateSubdir() before Create() should fail")
	}

	if err := mgr.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	subdir, err := mgr.CreateSubdir("ephem")
	if err != nil {
		t.Fatalf("CreateSubdir() failed: %v", err)
	}
	if subdir != filepath.Join(mgr.Path(), "ephem") {
		t.Errorf("unexpected subdir path: %s", subdir)
	}
	if _, err := os.Stat(subdir); err != nil {
		t.Errorf("subdir does not exist: %v", err)
	}
}

func TestManager_CreateTempSubdir_Unique(t *testing.T) {
	mgr := NewManager(t.TempDir())
	if err := mgr.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	first, err := mgr.CreateTempSubdir("wheel")
	if err != nil {
		t.Fatalf("CreateTempSubdir() failed: %v", err)
	}
	second, err := mgr.CreateTempSubdir("wheel")
	if err != nil {
		t.Fatalf("CreateTempSubdir() failed: %v", err)
	}

	if first == second {
		t.Errorf("expected unique temp subdirs, got %s twice", first)
	}

	// Cleanup removes the temp subdirs with the run root.
	if err := mgr.Cleanup(); err != nil {
		t.Fatalf("Cleanup() failed: %v", err)
	}
	if _, err := os.Stat(first); !os.IsNotExist(err) {
		t.Errorf("temp subdir survived cleanup: %s", first)
	}
}
