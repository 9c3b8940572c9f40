package transcode

import (
	"log"
	"os"
	"path/filepath"
	"strings"
)

// ArtifactClass separates files the pipeline must keep from files it
// produces along the way and deletes once a chunk completes.
type ArtifactClass int

const (
	// ArtifactDurable files are run output and are never swept.
	ArtifactDurable ArtifactClass = iota
	// ArtifactTransient files are per-chunk intermediates: fetched video,
	// converted audio, transcript text.
	ArtifactTransient
	// ArtifactUnknown files are left alone.
	ArtifactUnknown
)

// ClassifyArtifact decides what the sweep may delete based on extension.
func ClassifyArtifact(path string) ArtifactClass {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md":
		return ArtifactDurable
	case ".mp4", ".wav", ".txt":
		return ArtifactTransient
	default:
		return ArtifactUnknown
	}
}

// SweepTransient removes every transient artifact in dir. Failures are
// logged and never propagated; sweeping is best effort by contract.
func SweepTransient(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[transcode] Failed to read directory %s for sweep: %v", dir, err)
		}
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if ClassifyArtifact(path) != ArtifactTransient {
			continue
		}
		if err := os.Remove(path); err != nil {
			log.Printf("[transcode] Failed to remove artifact %s: %v", path, err)
			continue
		}
		log.Printf("[transcode] Removed artifact: %s", path)
	}
}
