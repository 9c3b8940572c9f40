package pipeline

import (
	"testing"
	"time"
)

func TestPlanHourlyChunksEmptyRange(t *testing.T) {
	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
	}{
		{"start equals end", base, base},
		{"start after end", base, base.Add(-time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := PlanHourlyChunks(tt.start, tt.end)
			if len(chunks) != 0 {
				t.Errorf("Expected no chunks, got %d", len(chunks))
			}
		})
	}
}

func TestPlanHourlyChunksFullDay(t *testing.T) {
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	chunks := PlanHourlyChunks(start, end)
	if len(chunks) != 24 {
		t.Fatalf("Expected 24 chunks for a full day, got %d", len(chunks))
	}

	for i, chunk := range chunks {
		if chunk.End.Sub(chunk.Start) != time.Hour {
			t.Errorf("Chunk %d has duration %v, expected 1h", i, chunk.End.Sub(chunk.Start))
		}
	}
}

func TestPlanHourlyChunksCoverage(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     int
	}{
		{"three full hours", 3 * time.Hour, 3},
		{"partial final chunk", 2*time.Hour + 30*time.Minute, 3},
		{"under one hour", 20 * time.Minute, 1},
	}

	start := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			end := start.Add(tt.duration)
			chunks := PlanHourlyChunks(start, end)

			if len(chunks) != tt.want {
				t.Fatalf("Expected %d chunks, got %d", tt.want, len(chunks))
			}

			// Chunks must tile [start, end) exactly: each begins where
			// the previous one ended.
			if !chunks[0].Start.Equal(start) {
				t.Errorf("First chunk starts at %v, expected %v", chunks[0].Start, start)
			}
			for i := 1; i < len(chunks); i++ {
				if !chunks[i].Start.Equal(chunks[i-1].End) {
					t.Errorf("Gap between chunk %d and %d: %v != %v", i-1, i, chunks[i-1].End, chunks[i].Start)
				}
			}
			if !chunks[len(chunks)-1].End.Equal(end) {
				t.Errorf("Last chunk ends at %v, expected %v", chunks[len(chunks)-1].End, end)
			}
		})
	}
}

func TestPlanHourlyChunksDeterministic(t *testing.T) {
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	end := start.Add(5 * time.Hour)

	first := PlanHourlyChunks(start, end)
	second := PlanHourlyChunks(start, end)

	if len(first) != len(second) {
		t.Fatalf("Repeated planning produced different chunk counts: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Start.Equal(second[i].Start) || !first[i].End.Equal(second[i].End) {
			t.Errorf("Chunk %d differs between calls", i)
		}
	}
}
