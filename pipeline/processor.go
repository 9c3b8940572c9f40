package pipeline

import (
	"log"
	"path/filepath"
	"strings"
	"time"

	"ubv-transcribe/transcode"
	"ubv-transcribe/transcript"
)

// Keywords used to detect rate limiting errors
var rateLimitKeywords = []string{"429", "too many requests", "rate limit", "throttle"}

// Fetcher downloads a camera's footage for a time range into destDir and
// returns the path of the video file.
type Fetcher interface {
	DownloadFootage(cameraID string, start, end time.Time, destDir string) (string, error)
}

// Converter turns a video file into a mono 16 kHz 16-bit PCM WAV file.
type Converter interface {
	ConvertToWAV(videoPath, wavPath string) error
}

// Transcriber produces a transcript text file at <outputBase>.txt from a
// WAV file and returns its path.
type Transcriber interface {
	Transcribe(wavPath, outputBase string) (string, error)
}

// ConverterFunc adapts a plain conversion function to the Converter
// interface.
type ConverterFunc func(videoPath, wavPath string) error

func (f ConverterFunc) ConvertToWAV(videoPath, wavPath string) error {
	return f(videoPath, wavPath)
}

// RetryConfig holds the backoff tunables for chunk processing.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns the standard retry/backoff settings.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     5,
		InitialBackoff: time.Second,
		MaxBackoff:     300 * time.Second,
	}
}

// Processor runs one chunk at a time through fetch, convert, transcribe
// and merge, with retry and exponential backoff around the external steps.
type Processor struct {
	fetcher         Fetcher
	converter       Converter
	transcriber     Transcriber
	workspace       *Workspace
	transcriptsRoot string
	retry           RetryConfig

	// sleep is swapped out in tests to record backoff durations.
	sleep func(time.Duration)
}

// NewProcessor creates a chunk processor.
func NewProcessor(fetcher Fetcher, converter Converter, transcriber Transcriber, ws *Workspace, transcriptsRoot string, retry RetryConfig) *Processor {
	return &Processor{
		fetcher:         fetcher,
		converter:       converter,
		transcriber:     transcriber,
		workspace:       ws,
		transcriptsRoot: transcriptsRoot,
		retry:           retry,
		sleep:           time.Sleep,
	}
}

// Process resolves a single chunk. Attempts are numbered 0..MaxRetries
// inclusive; transient failures back off exponentially, with a doubled
// wait when the error looks like rate limiting. Intermediate artifacts
// are swept from the workspace once the chunk completes either way.
func (p *Processor) Process(chunk Chunk) Result {
	if transcript.IsProcessed(p.transcriptsRoot, chunk.CameraName, chunk.Start) {
		log.Printf("[pipeline] Chunk already processed for %s (%s), skipping",
			chunk.CameraName, chunk.Start.Format("2006-01-02 15:04"))
		return Result{Outcome: OutcomeSkipped}
	}

	defer func() {
		transcode.SweepTransient(p.workspace.VideosDir)
		transcode.SweepTransient(p.workspace.AudioDir)
	}()

	backoff := p.retry.InitialBackoff

	for attempt := 0; attempt <= p.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("[pipeline] Processing chunk for %s (%s to %s) - Attempt %d/%d",
				chunk.CameraName, chunk.Start.Format("2006-01-02 15:04"), chunk.End.Format("15:04"),
				attempt+1, p.retry.MaxRetries+1)
		} else {
			log.Printf("[pipeline] Processing chunk for %s (%s to %s)",
				chunk.CameraName, chunk.Start.Format("2006-01-02 15:04"), chunk.End.Format("15:04"))
		}

		transcriptPath, err := p.runAttempt(chunk)
		if err == nil {
			// A merge failure does not fail the chunk: the transcript
			// artifact exists and the next run will retry the merge.
			merged, mergeErr := transcript.MergeFile(p.transcriptsRoot, chunk.CameraName, chunk.Start, chunk.End, transcriptPath)
			if mergeErr != nil {
				log.Printf("[pipeline] Failed to merge transcript for %s (%s): %v",
					chunk.CameraName, chunk.Start.Format("2006-01-02 15:04"), mergeErr)
			} else if !merged {
				log.Printf("[pipeline] Transcript for %s (%s) was already merged",
					chunk.CameraName, chunk.Start.Format("2006-01-02 15:04"))
			}
			return Result{Outcome: OutcomeSuccess, ArtifactPath: transcriptPath, Attempts: attempt + 1}
		}

		if attempt < p.retry.MaxRetries {
			wait := backoff
			if isRateLimitError(err) {
				// Rate limiting gets a longer wait on top of the normal doubling
				wait = backoff * 2
				if wait > p.retry.MaxBackoff {
					wait = p.retry.MaxBackoff
				}
				log.Printf("[pipeline] Rate limit detected for %s chunk (%s). Retrying in %v...",
					chunk.CameraName, chunk.Start.Format("2006-01-02 15:04"), wait)
			} else {
				if wait > p.retry.MaxBackoff {
					wait = p.retry.MaxBackoff
				}
				log.Printf("[pipeline] Error processing chunk for %s: %v. Retrying in %v...",
					chunk.CameraName, err, wait)
			}
			p.sleep(wait)
			backoff *= 2
		} else {
			log.Printf("[pipeline] Failed to process chunk for %s (%s) after %d attempts: %v",
				chunk.CameraName, chunk.Start.Format("2006-01-02 15:04"), p.retry.MaxRetries+1, err)
			return Result{Outcome: OutcomeFailed, Attempts: attempt + 1, Err: err}
		}
	}

	return Result{Outcome: OutcomeFailed, Attempts: p.retry.MaxRetries + 1}
}

// runAttempt performs the external fetch, convert and transcribe steps
// for one attempt and returns the transcript text path.
func (p *Processor) runAttempt(chunk Chunk) (string, error) {
	videoPath, err := p.fetcher.DownloadFootage(chunk.CameraID, chunk.Start, chunk.End, p.workspace.VideosDir)
	if err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	wavPath := filepath.Join(p.workspace.AudioDir, base+".wav")
	if err := p.converter.ConvertToWAV(videoPath, wavPath); err != nil {
		return "", err
	}

	outputBase := filepath.Join(p.workspace.AudioDir, base)
	transcriptPath, err := p.transcriber.Transcribe(wavPath, outputBase)
	if err != nil {
		return "", err
	}

	return transcriptPath, nil
}

// isRateLimitError checks an error's text against the rate limit vocabulary.
func isRateLimitError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, keyword := range rateLimitKeywords {
		if strings.Contains(msg, keyword) {
			return true
		}
	}
	return false
}
