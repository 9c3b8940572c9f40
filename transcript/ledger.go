package transcript

import (
	"bufio"
	"log"
	"os"
	"strings"
	"time"
)

const (
	markerPrefix = "<!-- CHUNK:"
	markerSuffix = "-->"
)

// markerLine renders the machine-readable marker embedded before each
// chunk section. It must round-trip exactly through parseMarker.
func markerLine(chunkID string) string {
	return markerPrefix + " " + chunkID + " " + markerSuffix
}

// parseMarker extracts the chunk identifier from a marker line.
// Returns the identifier and whether the line is a marker at all.
func parseMarker(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, markerPrefix) || !strings.HasSuffix(trimmed, markerSuffix) {
		return "", false
	}
	id := strings.TrimSpace(trimmed[len(markerPrefix) : len(trimmed)-len(markerSuffix)])
	return id, true
}

// LoadProcessedChunks scans a daily document for chunk markers and returns
// the set of chunk identifiers already merged into it.
//
// A missing document means nothing has been processed. Read errors are
// logged and yield an empty set: the pipeline re-processes rather than
// silently losing work.
func LoadProcessedChunks(documentPath string) map[string]bool {
	processed := make(map[string]bool)

	f, err := os.Open(documentPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[transcript] Error loading processed chunks from %s: %v", documentPath, err)
		}
		return processed
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if id, ok := parseMarker(scanner.Text()); ok {
			processed[id] = true
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("[transcript] Error scanning %s: %v", documentPath, err)
		return make(map[string]bool)
	}

	return processed
}

// IsProcessed reports whether the chunk starting at chunkStart for the
// given camera has already been merged into its daily document.
func IsProcessed(transcriptsRoot, cameraName string, chunkStart time.Time) bool {
	documentPath := DailyDocumentPath(transcriptsRoot, cameraName, chunkStart)
	processed := LoadProcessedChunks(documentPath)
	return processed[ChunkIdentifier(cameraName, chunkStart)]
}
