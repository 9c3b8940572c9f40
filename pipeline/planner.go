package pipeline

import (
	"log"
	"time"
)

// TimeRange is a half-open interval [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Chunk is the unit of work: one time interval of footage for one camera.
type Chunk struct {
	CameraID   string
	CameraName string
	Start      time.Time
	End        time.Time
}

// PlanHourlyChunks splits [start, end) into consecutive 1-hour intervals.
// The final interval may be shorter so that the last chunk ends exactly
// at end. An empty or inverted range yields no chunks.
func PlanHourlyChunks(start, end time.Time) []TimeRange {
	if !start.Before(end) {
		log.Println("[pipeline] Start time must be before end time")
		return nil
	}

	var chunks []TimeRange
	current := start
	for current.Before(end) {
		chunkEnd := current.Add(time.Hour)
		if chunkEnd.After(end) {
			chunkEnd = end
		}
		chunks = append(chunks, TimeRange{Start: current, End: chunkEnd})
		current = chunkEnd
	}

	log.Printf("[pipeline] Generated %d hourly chunks from %s to %s",
		len(chunks), start.Format(time.RFC3339), end.Format(time.RFC3339))
	return chunks
}
