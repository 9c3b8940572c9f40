package transcript

import (
	"fmt"
	"path/filepath"
	"time"
)

// ChunkIdentifier generates the unique identifier for a video chunk.
// The identifier is embedded in the daily document as a marker and is
// the key used to detect already-merged chunks.
//
// Format: <camera_name>_<YYYY-MM-DD>_<HH:MM:SS>
func ChunkIdentifier(cameraName string, start time.Time) string {
	return fmt.Sprintf("%s_%s", cameraName, start.Format("2006-01-02_15:04:05"))
}

// DailyDocumentPath returns the path of the daily transcript markdown file
// for a camera and date: <root>/<year>/<YYYY-MM-DD>_<camera_name>.md
func DailyDocumentPath(transcriptsRoot, cameraName string, date time.Time) string {
	year := date.Format("2006")
	dateStr := date.Format("2006-01-02")
	filename := fmt.Sprintf("%s_%s.md", dateStr, cameraName)
	return filepath.Join(transcriptsRoot, year, filename)
}
