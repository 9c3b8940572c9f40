package pipeline

import (
	"log"
	"time"
)

// Camera identifies one camera for scheduling.
type Camera struct {
	ID   string
	Name string
}

// Stats aggregates the outcome of a scheduler run. Skipped chunks count
// as successful: their transcript is already durably merged.
type Stats struct {
	TotalChunks      int
	SuccessfulChunks int
	FailedChunks     int
	CamerasProcessed int
}

// ChunkProcessor resolves a single chunk. Satisfied by *Processor.
type ChunkProcessor interface {
	Process(chunk Chunk) Result
}

// Scheduler drives the processor across cameras and time chunks with
// strictly one chunk in flight at a time. Sequential processing is a
// deliberate constraint: the archive source is rate sensitive, and one
// download stream bounds the load we put on it.
type Scheduler struct {
	processor ChunkProcessor
}

// NewScheduler creates a sequential scheduler around a chunk processor.
func NewScheduler(processor ChunkProcessor) *Scheduler {
	return &Scheduler{processor: processor}
}

// Run processes every (camera, chunk) pair in order and returns the
// aggregate statistics. Failures never abort the run; the scheduler
// always moves on to the next chunk.
func (s *Scheduler) Run(cameras []Camera, start, end time.Time) Stats {
	log.Printf("[scheduler] Starting sequential run for %d camera(s)", len(cameras))
	log.Printf("[scheduler] Date range: %s to %s", start.Format(time.RFC3339), end.Format(time.RFC3339))

	chunks := PlanHourlyChunks(start, end)

	stats := Stats{
		TotalChunks:      len(cameras) * len(chunks),
		CamerasProcessed: len(cameras),
	}

	log.Printf("[scheduler] Processing %d total chunks (%d cameras x %d time intervals)",
		stats.TotalChunks, len(cameras), len(chunks))

	for camIdx, camera := range cameras {
		log.Printf("[scheduler] Processing camera %d/%d: %s (%s)", camIdx+1, len(cameras), camera.Name, camera.ID)

		for _, tr := range chunks {
			result := s.processor.Process(Chunk{
				CameraID:   camera.ID,
				CameraName: camera.Name,
				Start:      tr.Start,
				End:        tr.End,
			})

			if result.Processed() {
				stats.SuccessfulChunks++
			} else {
				stats.FailedChunks++
			}
		}
	}

	logSummary(stats)
	return stats
}

func logSummary(stats Stats) {
	log.Println("============================================================")
	log.Println("RUN SUMMARY")
	log.Println("============================================================")
	log.Printf("Total chunks attempted: %d", stats.TotalChunks)
	log.Printf("Successful chunks: %d", stats.SuccessfulChunks)
	log.Printf("Failed chunks: %d", stats.FailedChunks)
	if stats.TotalChunks > 0 {
		log.Printf("Success rate: %.1f%%", 100*float64(stats.SuccessfulChunks)/float64(stats.TotalChunks))
	} else {
		log.Println("Success rate: N/A (no chunks to process)")
	}
	log.Println("============================================================")
}
