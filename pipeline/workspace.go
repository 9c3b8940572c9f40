package pipeline

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Workspace is the scratch area for one pipeline run. Fetched video lands
// in VideosDir, converted audio and transcript text files in AudioDir.
// Close removes the whole tree; nothing in a workspace outlives the run.
type Workspace struct {
	Root      string
	VideosDir string
	AudioDir  string
}

// NewWorkspace creates a scratch directory tree for a run. When baseDir
// is empty the workspace is created under the system temp directory.
func NewWorkspace(baseDir string) (*Workspace, error) {
	var root string
	var err error
	if baseDir == "" {
		root, err = os.MkdirTemp("", "ubv-transcribe-")
		if err != nil {
			return nil, fmt.Errorf("failed to create workspace: %v", err)
		}
	} else {
		root = baseDir
		if err := os.MkdirAll(root, 0700); err != nil {
			return nil, fmt.Errorf("failed to create workspace %s: %v", root, err)
		}
	}

	ws := &Workspace{
		Root:      root,
		VideosDir: filepath.Join(root, "videos"),
		AudioDir:  filepath.Join(root, "audio"),
	}
	for _, dir := range []string{ws.VideosDir, ws.AudioDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			os.RemoveAll(root)
			return nil, fmt.Errorf("failed to create workspace directory %s: %v", dir, err)
		}
	}

	log.Printf("[pipeline] Workspace: %s", root)
	return ws, nil
}

// Close removes the workspace tree. Safe to call more than once.
func (ws *Workspace) Close() {
	if ws.Root == "" {
		return
	}
	if err := os.RemoveAll(ws.Root); err != nil {
		log.Printf("[pipeline] Failed to remove workspace %s: %v", ws.Root, err)
		return
	}
	log.Printf("[pipeline] Removed workspace: %s", ws.Root)
	ws.Root = ""
}
