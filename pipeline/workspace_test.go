package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWorkspaceLayout(t *testing.T) {
	base := filepath.Join(t.TempDir(), "work")
	ws, err := NewWorkspace(base)
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}
	defer ws.Close()

	if ws.Root != base {
		t.Errorf("Root = %q, expected %q", ws.Root, base)
	}
	for _, dir := range []string{ws.VideosDir, ws.AudioDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("Expected %s to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("Expected %s to be a directory", dir)
		}
	}
}

func TestWorkspaceTempFallback(t *testing.T) {
	ws, err := NewWorkspace("")
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}
	defer ws.Close()

	if ws.Root == "" {
		t.Fatal("Expected a generated root directory")
	}
	if filepath.Base(ws.Root) == "" || !filepath.IsAbs(ws.Root) {
		t.Errorf("Expected an absolute temp root, got %q", ws.Root)
	}
}

func TestWorkspaceCloseRemovesTree(t *testing.T) {
	ws, err := NewWorkspace(filepath.Join(t.TempDir(), "work"))
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(ws.VideosDir, "chunk.mp4"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	root := ws.Root
	ws.Close()

	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Errorf("Expected workspace tree to be removed, stat err = %v", err)
	}

	// Second close is a no-op.
	ws.Close()
}
