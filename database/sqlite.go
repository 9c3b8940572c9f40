package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDB implements the Database interface using SQLite
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB creates a new SQLite database instance
func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %v", err)
	}

	if err := initTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize tables: %v", err)
	}

	return &SQLiteDB{db: db}, nil
}

// initTables creates the necessary tables if they don't exist
func initTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP,
			range_start TIMESTAMP NOT NULL,
			range_end TIMESTAMP NOT NULL,
			status TEXT NOT NULL,
			total_chunks INTEGER DEFAULT 0,
			successful_chunks INTEGER DEFAULT 0,
			failed_chunks INTEGER DEFAULT 0,
			cameras_processed INTEGER DEFAULT 0
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS chunks (
			run_id TEXT NOT NULL,
			camera_id TEXT NOT NULL,
			camera_name TEXT NOT NULL,
			chunk_start TIMESTAMP NOT NULL,
			chunk_end TIMESTAMP NOT NULL,
			outcome TEXT NOT NULL,
			attempts INTEGER DEFAULT 0,
			error_message TEXT,
			created_at TIMESTAMP NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs (id)
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_chunks_run_id ON chunks (run_id)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_chunks_outcome ON chunks (outcome)
	`)
	return err
}

// CreateRun inserts a new run record
func (s *SQLiteDB) CreateRun(run RunRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO runs (
			id, started_at, finished_at, range_start, range_end, status,
			total_chunks, successful_chunks, failed_chunks, cameras_processed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.StartedAt,
		run.FinishedAt,
		run.RangeStart,
		run.RangeEnd,
		run.Status,
		run.TotalChunks,
		run.SuccessfulChunks,
		run.FailedChunks,
		run.CamerasProcessed,
	)
	if err != nil {
		return fmt.Errorf("failed to create run record: %v", err)
	}
	return nil
}

// FinishRun updates a run record with its final statistics
func (s *SQLiteDB) FinishRun(run RunRecord) error {
	_, err := s.db.Exec(`
		UPDATE runs SET
			finished_at = ?,
			status = ?,
			total_chunks = ?,
			successful_chunks = ?,
			failed_chunks = ?,
			cameras_processed = ?
		WHERE id = ?
	`,
		run.FinishedAt,
		run.Status,
		run.TotalChunks,
		run.SuccessfulChunks,
		run.FailedChunks,
		run.CamerasProcessed,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run record: %v", err)
	}
	return nil
}

// GetRun retrieves a run record by ID
func (s *SQLiteDB) GetRun(id string) (*RunRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, started_at, finished_at, range_start, range_end, status,
			total_chunks, successful_chunks, failed_chunks, cameras_processed
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %v", err)
	}
	return run, nil
}

// ListRuns retrieves run records ordered by start time, newest first
func (s *SQLiteDB) ListRuns(limit, offset int) ([]RunRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, range_start, range_end, status,
			total_chunks, successful_chunks, failed_chunks, cameras_processed
		FROM runs ORDER BY started_at DESC LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %v", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %v", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var run RunRecord
	var finishedAt sql.NullTime
	err := row.Scan(
		&run.ID,
		&run.StartedAt,
		&finishedAt,
		&run.RangeStart,
		&run.RangeEnd,
		&run.Status,
		&run.TotalChunks,
		&run.SuccessfulChunks,
		&run.FailedChunks,
		&run.CamerasProcessed,
	)
	if err != nil {
		return nil, err
	}
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}
	return &run, nil
}

// RecordChunk inserts the outcome of one processed chunk
func (s *SQLiteDB) RecordChunk(chunk ChunkRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO chunks (
			run_id, camera_id, camera_name, chunk_start, chunk_end,
			outcome, attempts, error_message, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		chunk.RunID,
		chunk.CameraID,
		chunk.CameraName,
		chunk.ChunkStart,
		chunk.ChunkEnd,
		chunk.Outcome,
		chunk.Attempts,
		chunk.ErrorMessage,
		chunk.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record chunk: %v", err)
	}
	return nil
}

// ListChunksByRun retrieves all chunk records for a run in insertion order
func (s *SQLiteDB) ListChunksByRun(runID string) ([]ChunkRecord, error) {
	rows, err := s.db.Query(`
		SELECT run_id, camera_id, camera_name, chunk_start, chunk_end,
			outcome, attempts, error_message, created_at
		FROM chunks WHERE run_id = ? ORDER BY created_at ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks: %v", err)
	}
	defer rows.Close()

	var chunks []ChunkRecord
	for rows.Next() {
		var chunk ChunkRecord
		var errorMessage sql.NullString
		err := rows.Scan(
			&chunk.RunID,
			&chunk.CameraID,
			&chunk.CameraName,
			&chunk.ChunkStart,
			&chunk.ChunkEnd,
			&chunk.Outcome,
			&chunk.Attempts,
			&errorMessage,
			&chunk.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %v", err)
		}
		chunk.ErrorMessage = errorMessage.String
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// GetChunkCounts returns the number of chunk records per outcome
func (s *SQLiteDB) GetChunkCounts() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT outcome, COUNT(*) FROM chunks GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("failed to count chunks: %v", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("failed to scan chunk count: %v", err)
		}
		counts[outcome] = count
	}
	return counts, rows.Err()
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
