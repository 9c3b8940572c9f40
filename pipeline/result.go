package pipeline

// Outcome is the terminal state of one chunk's processing.
type Outcome int

const (
	// OutcomeSuccess means the chunk was fetched, converted, transcribed
	// and handed to the merger.
	OutcomeSuccess Outcome = iota
	// OutcomeSkipped means the chunk's marker was already present in the
	// daily document, so no external calls were made.
	OutcomeSkipped
	// OutcomeFailed means every attempt failed.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result describes how a chunk was resolved.
type Result struct {
	Outcome      Outcome
	ArtifactPath string // transcript text path on success, empty otherwise
	Attempts     int    // attempts actually made (0 for skipped chunks)
	Err          error  // last error when Outcome is OutcomeFailed
}

// Processed reports whether the chunk's transcript is durably in place,
// either from this run or a previous one.
func (r Result) Processed() bool {
	return r.Outcome == OutcomeSuccess || r.Outcome == OutcomeSkipped
}
