package transcode

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClassifyArtifact(t *testing.T) {
	tests := []struct {
		path string
		want ArtifactClass
	}{
		{"2026-01-15_Front Door.md", ArtifactDurable},
		{"cam1_2026-01-15_14.00.00.mp4", ArtifactTransient},
		{"cam1_2026-01-15_14.00.00.wav", ArtifactTransient},
		{"cam1_2026-01-15_14.00.00.txt", ArtifactTransient},
		{"CAM1.MP4", ArtifactTransient},
		{"notes.json", ArtifactUnknown},
		{"README", ArtifactUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := ClassifyArtifact(tt.path); got != tt.want {
				t.Errorf("ClassifyArtifact(%q) = %v, expected %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestSweepTransient(t *testing.T) {
	dir := t.TempDir()

	files := map[string]bool{ // name -> should survive the sweep
		"chunk.mp4":  false,
		"chunk.wav":  false,
		"chunk.txt":  false,
		"daily.md":   true,
		"other.json": true,
	}
	for name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0755); err != nil {
		t.Fatalf("Failed to create subdirectory: %v", err)
	}

	SweepTransient(dir)

	for name, keep := range files {
		_, err := os.Stat(filepath.Join(dir, name))
		if keep && err != nil {
			t.Errorf("Expected %s to survive the sweep: %v", name, err)
		}
		if !keep && !os.IsNotExist(err) {
			t.Errorf("Expected %s to be swept, stat err = %v", name, err)
		}
	}

	// Directories are never touched.
	if _, err := os.Stat(filepath.Join(dir, "nested")); err != nil {
		t.Errorf("Expected subdirectory to survive: %v", err)
	}
}

func TestSweepTransientMissingDir(t *testing.T) {
	// Must not panic or log spuriously for a directory that never existed.
	SweepTransient(filepath.Join(t.TempDir(), "nope"))
}
