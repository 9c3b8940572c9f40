package transcribe

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"os/exec"
)

// Transcriber shells out to a whisper.cpp style binary to turn WAV audio
// into plain-text transcripts.
type Transcriber struct {
	Binary    string
	ModelPath string
}

// NewTranscriber creates a transcriber for the given binary and model.
func NewTranscriber(binary, modelPath string) *Transcriber {
	return &Transcriber{
		Binary:    binary,
		ModelPath: modelPath,
	}
}

// VerifyInstallation checks that the transcription binary and model file
// exist. Missing pieces are structural failures: the run aborts instead
// of retrying chunk by chunk.
func (t *Transcriber) VerifyInstallation() error {
	if _, err := exec.LookPath(t.Binary); err != nil {
		return fmt.Errorf("transcription binary %q not found on PATH: %v", t.Binary, err)
	}
	if _, err := os.Stat(t.ModelPath); err != nil {
		return fmt.Errorf("transcription model not found at %s: %v", t.ModelPath, err)
	}
	return nil
}

// Transcribe runs the transcription binary against a WAV file and returns
// the path of the transcript text file (<outputBase>.txt).
func (t *Transcriber) Transcribe(wavPath, outputBase string) (string, error) {
	if _, err := os.Stat(wavPath); os.IsNotExist(err) {
		return "", fmt.Errorf("audio file does not exist: %s", wavPath)
	}

	log.Printf("[transcribe] Transcribing audio: %s", wavPath)

	cmd := exec.Command(t.Binary,
		"-m", t.ModelPath,
		"-f", wavPath,
		"-of", outputBase,
		"-otxt",
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("transcription failed for %s: %v: %s", wavPath, err, stderr.String())
	}

	transcriptPath := outputBase + ".txt"
	if _, err := os.Stat(transcriptPath); err != nil {
		return "", fmt.Errorf("transcription completed but %s is missing: %v", transcriptPath, err)
	}

	log.Printf("[transcribe] Transcript written: %s", transcriptPath)
	return transcriptPath, nil
}
