package transcode

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
)

// ConvertToWAV converts a video file to an audio-only WAV file suitable
// for speech-to-text: pcm_s16le, 16 kHz sample rate, mono.
func ConvertToWAV(videoPath, wavPath string) error {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file does not exist: %s", videoPath)
	}

	if err := os.MkdirAll(filepath.Dir(wavPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %v", err)
	}

	log.Printf("[transcode] Converting video to WAV: %s", videoPath)

	cmd := exec.Command("ffmpeg",
		"-i", videoPath,
		"-vn", // Drop the video stream
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-f", "wav",
		"-y", // Overwrite output file if exists
		wavPath)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg conversion failed for %s: %v: %s", videoPath, err, stderr.String())
	}

	log.Printf("[transcode] Successfully converted to WAV: %s", wavPath)
	return nil
}

// VerifyFFmpeg checks that the ffmpeg binary is available on PATH.
// A missing binary is a structural failure and aborts the run up front.
func VerifyFFmpeg() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found on PATH: %v", err)
	}
	return nil
}
