package database

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testRun(id string, startedAt time.Time) RunRecord {
	return RunRecord{
		ID:         id,
		StartedAt:  startedAt,
		RangeStart: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC),
		Status:     RunStatusRunning,
	}
}

func TestCreateAndGetRun(t *testing.T) {
	db := newTestDB(t)
	started := time.Date(2026, 1, 16, 2, 0, 0, 0, time.UTC)

	if err := db.CreateRun(testRun("run-1", started)); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	run, err := db.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run == nil {
		t.Fatal("Expected run to be found")
	}
	if run.Status != RunStatusRunning {
		t.Errorf("Expected status running, got %s", run.Status)
	}
	if run.FinishedAt != nil {
		t.Errorf("Expected nil finished_at for a running run, got %v", run.FinishedAt)
	}
	if !run.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, expected %v", run.StartedAt, started)
	}
}

func TestGetRunNotFound(t *testing.T) {
	db := newTestDB(t)

	run, err := db.GetRun("missing")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run != nil {
		t.Errorf("Expected nil for missing run, got %+v", run)
	}
}

func TestFinishRun(t *testing.T) {
	db := newTestDB(t)
	started := time.Date(2026, 1, 16, 2, 0, 0, 0, time.UTC)

	run := testRun("run-1", started)
	if err := db.CreateRun(run); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	finished := started.Add(45 * time.Minute)
	run.FinishedAt = &finished
	run.Status = RunStatusCompleted
	run.TotalChunks = 48
	run.SuccessfulChunks = 48
	run.CamerasProcessed = 2
	if err := db.FinishRun(run); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	got, err := db.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Status != RunStatusCompleted {
		t.Errorf("Expected status completed, got %s", got.Status)
	}
	if got.FinishedAt == nil || !got.FinishedAt.Equal(finished) {
		t.Errorf("FinishedAt = %v, expected %v", got.FinishedAt, finished)
	}
	if got.TotalChunks != 48 || got.SuccessfulChunks != 48 {
		t.Errorf("Chunk totals not persisted: %+v", got)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2026, 1, 10, 2, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if err := db.CreateRun(testRun(
			[]string{"run-a", "run-b", "run-c"}[i],
			base.AddDate(0, 0, i),
		)); err != nil {
			t.Fatalf("CreateRun %d failed: %v", i, err)
		}
	}

	runs, err := db.ListRuns(10, 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-c" || runs[2].ID != "run-a" {
		t.Errorf("Runs not ordered newest first: %s, %s, %s", runs[0].ID, runs[1].ID, runs[2].ID)
	}

	limited, err := db.ListRuns(1, 1)
	if err != nil {
		t.Fatalf("ListRuns with offset failed: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "run-b" {
		t.Errorf("Expected only run-b with limit 1 offset 1, got %+v", limited)
	}
}

func TestRecordAndListChunks(t *testing.T) {
	db := newTestDB(t)
	started := time.Date(2026, 1, 16, 2, 0, 0, 0, time.UTC)
	if err := db.CreateRun(testRun("run-1", started)); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	chunkStart := time.Date(2026, 1, 15, 14, 0, 0, 0, time.UTC)
	records := []ChunkRecord{
		{
			RunID: "run-1", CameraID: "cam1", CameraName: "Front Door",
			ChunkStart: chunkStart, ChunkEnd: chunkStart.Add(time.Hour),
			Outcome: "success", Attempts: 1, CreatedAt: started,
		},
		{
			RunID: "run-1", CameraID: "cam1", CameraName: "Front Door",
			ChunkStart: chunkStart.Add(time.Hour), ChunkEnd: chunkStart.Add(2 * time.Hour),
			Outcome: "failed", Attempts: 6, ErrorMessage: "download failed: unreachable",
			CreatedAt: started.Add(time.Minute),
		},
	}
	for i, rec := range records {
		if err := db.RecordChunk(rec); err != nil {
			t.Fatalf("RecordChunk %d failed: %v", i, err)
		}
	}

	chunks, err := db.ListChunksByRun("run-1")
	if err != nil {
		t.Fatalf("ListChunksByRun failed: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Outcome != "success" || chunks[1].Outcome != "failed" {
		t.Errorf("Chunks not in insertion order: %s, %s", chunks[0].Outcome, chunks[1].Outcome)
	}
	if chunks[1].ErrorMessage != "download failed: unreachable" {
		t.Errorf("Error message not persisted: %q", chunks[1].ErrorMessage)
	}
	if chunks[1].Attempts != 6 {
		t.Errorf("Attempts = %d, expected 6", chunks[1].Attempts)
	}
}

func TestGetChunkCounts(t *testing.T) {
	db := newTestDB(t)
	started := time.Date(2026, 1, 16, 2, 0, 0, 0, time.UTC)
	if err := db.CreateRun(testRun("run-1", started)); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	outcomes := []string{"success", "success", "skipped", "failed"}
	for i, outcome := range outcomes {
		chunkStart := started.Add(time.Duration(i) * time.Hour)
		err := db.RecordChunk(ChunkRecord{
			RunID: "run-1", CameraID: "cam1", CameraName: "Front Door",
			ChunkStart: chunkStart, ChunkEnd: chunkStart.Add(time.Hour),
			Outcome: outcome, Attempts: 1, CreatedAt: started,
		})
		if err != nil {
			t.Fatalf("RecordChunk %d failed: %v", i, err)
		}
	}

	counts, err := db.GetChunkCounts()
	if err != nil {
		t.Fatalf("GetChunkCounts failed: %v", err)
	}
	want := map[string]int{"success": 2, "skipped": 1, "failed": 1}
	for outcome, n := range want {
		if counts[outcome] != n {
			t.Errorf("counts[%s] = %d, expected %d", outcome, counts[outcome], n)
		}
	}
}
