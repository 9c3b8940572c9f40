package transcript

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Merge appends a chunk's transcript to the camera's daily document.
// Returns true if the chunk was merged, false if it was skipped because
// the document already contains its marker.
//
// The write is all-or-nothing: the new content is staged in a temporary
// file in the document's directory and atomically renamed over the
// document. An interrupted merge never leaves a partial document.
func Merge(transcriptsRoot, cameraName string, start, end time.Time, transcriptText string) (bool, error) {
	chunkID := ChunkIdentifier(cameraName, start)
	documentPath := DailyDocumentPath(transcriptsRoot, cameraName, start)

	// Re-check the ledger right before writing. The processor already
	// gates on it, but recomputing here keeps Merge safe to call on its
	// own (e.g. backfill tooling).
	if LoadProcessedChunks(documentPath)[chunkID] {
		log.Printf("[transcript] Skipping duplicate chunk for %s (%s)", cameraName, start.Format("2006-01-02 15:04"))
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(documentPath), 0755); err != nil {
		return false, fmt.Errorf("failed to create transcript directory: %v", err)
	}

	_, statErr := os.Stat(documentPath)
	newDocument := os.IsNotExist(statErr)

	if err := writeDocument(documentPath, newDocument, cameraName, chunkID, start, end, transcriptText); err != nil {
		return false, err
	}

	log.Printf("[transcript] Merged chunk for %s (%s - %s) into %s",
		cameraName, start.Format("2006-01-02 15:04"), end.Format("15:04"), documentPath)
	return true, nil
}

// MergeFile reads the transcript text from a file and merges it.
func MergeFile(transcriptsRoot, cameraName string, start, end time.Time, transcriptFile string) (bool, error) {
	data, err := os.ReadFile(transcriptFile)
	if err != nil {
		return false, fmt.Errorf("failed to read transcript file %s: %v", transcriptFile, err)
	}
	return Merge(transcriptsRoot, cameraName, start, end, string(data))
}

// writeDocument stages the updated document in a temp file next to the
// target and renames it into place. The temp file lives in the same
// directory so the rename stays on one filesystem and is atomic.
func writeDocument(documentPath string, newDocument bool, cameraName, chunkID string, start, end time.Time, transcriptText string) (err error) {
	dir := filepath.Dir(documentPath)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(documentPath)+".tmp-")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %v", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
				log.Printf("[transcript] Failed to remove temp file %s: %v", tmpPath, rmErr)
			}
		}
	}()

	// Carry over the existing document contents before appending.
	if !newDocument {
		src, openErr := os.Open(documentPath)
		if openErr != nil {
			err = fmt.Errorf("failed to open existing document: %v", openErr)
			return err
		}
		_, copyErr := io.Copy(tmp, src)
		src.Close()
		if copyErr != nil {
			err = fmt.Errorf("failed to copy existing document: %v", copyErr)
			return err
		}
	}

	var section strings.Builder
	if newDocument {
		dateStr := start.Format("2006-01-02")
		fmt.Fprintf(&section, "# %s - %s\n\n", dateStr, cameraName)
		fmt.Fprintf(&section, "Transcript for camera **%s** on %s.\n\n", cameraName, dateStr)
		section.WriteString("---\n\n")
	}
	section.WriteString(markerLine(chunkID) + "\n\n")
	fmt.Fprintf(&section, "## %s - %s\n\n", start.Format("15:04:05"), end.Format("15:04:05"))
	section.WriteString(strings.TrimSpace(transcriptText))
	section.WriteString("\n\n---\n\n")

	if _, err = tmp.WriteString(section.String()); err != nil {
		err = fmt.Errorf("failed to write document: %v", err)
		return err
	}
	if err = tmp.Sync(); err != nil {
		err = fmt.Errorf("failed to sync document: %v", err)
		return err
	}
	if err = tmp.Close(); err != nil {
		err = fmt.Errorf("failed to close temp file: %v", err)
		return err
	}
	if err = os.Rename(tmpPath, documentPath); err != nil {
		err = fmt.Errorf("failed to replace document: %v", err)
		return err
	}
	return nil
}
