package database

import (
	"time"
)

// RunStatus represents the state of a pipeline run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"   // Run is in progress
	RunStatusCompleted RunStatus = "completed" // Run finished with zero failed chunks
	RunStatusFailed    RunStatus = "failed"    // Run finished with failed chunks
)

// RunRecord represents one scheduler run over a camera/time-range cross product
type RunRecord struct {
	ID               string     `json:"id"`               // Unique run identifier
	StartedAt        time.Time  `json:"startedAt"`        // When the run started
	FinishedAt       *time.Time `json:"finishedAt"`       // When the run finished (nil while running)
	RangeStart       time.Time  `json:"rangeStart"`       // Start of the requested time range
	RangeEnd         time.Time  `json:"rangeEnd"`         // End of the requested time range
	Status           RunStatus  `json:"status"`           // Current status
	TotalChunks      int        `json:"totalChunks"`      // Chunks attempted
	SuccessfulChunks int        `json:"successfulChunks"` // Chunks merged or already present
	FailedChunks     int        `json:"failedChunks"`     // Chunks that exhausted retries
	CamerasProcessed int        `json:"camerasProcessed"` // Cameras covered by the run
}

// ChunkRecord represents the outcome of processing one chunk within a run.
// This is reporting history only; the daily document's embedded markers
// remain the sole idempotency authority.
type ChunkRecord struct {
	RunID        string    `json:"runId"`        // Run this chunk belongs to
	CameraID     string    `json:"cameraId"`     // Camera identifier
	CameraName   string    `json:"cameraName"`   // Camera name
	ChunkStart   time.Time `json:"chunkStart"`   // Start of the chunk interval
	ChunkEnd     time.Time `json:"chunkEnd"`     // End of the chunk interval
	Outcome      string    `json:"outcome"`      // success, skipped or failed
	Attempts     int       `json:"attempts"`     // Attempts made
	ErrorMessage string    `json:"errorMessage"` // Last error for failed chunks
	CreatedAt    time.Time `json:"createdAt"`    // When the chunk was resolved
}

// Database defines the interface for run history operations
type Database interface {
	// Run operations
	CreateRun(run RunRecord) error
	FinishRun(run RunRecord) error
	GetRun(id string) (*RunRecord, error)
	ListRuns(limit, offset int) ([]RunRecord, error)

	// Chunk operations
	RecordChunk(chunk ChunkRecord) error
	ListChunksByRun(runID string) ([]ChunkRecord, error)
	GetChunkCounts() (map[string]int, error)

	// Helper operations
	Close() error
}
