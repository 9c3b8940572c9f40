package storage

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// R2Config holds configuration for S3-compatible transcript archival
// (Cloudflare R2 or any S3 endpoint).
type R2Config struct {
	AccessKey string
	SecretKey string
	AccountID string
	Bucket    string
	Endpoint  string
	Region    string
}

// R2Storage archives merged daily documents to object storage.
type R2Storage struct {
	config   R2Config
	uploader *s3manager.Uploader
}

// NewR2Storage creates a new R2Storage instance
func NewR2Storage(config R2Config) (*R2Storage, error) {
	if config.Region == "" {
		config.Region = "auto"
	}

	// Derive the R2 endpoint from the account ID when not given explicitly
	if config.Endpoint == "" && config.AccountID != "" {
		config.Endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", config.AccountID)
	}

	sess, err := session.NewSession(&aws.Config{
		Credentials:      credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, ""),
		Endpoint:         aws.String(config.Endpoint),
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %v", err)
	}

	// Sequential parts on a single connection: transcript documents are
	// small and the uplink is shared with footage downloads.
	uploader := s3manager.NewUploader(sess, func(u *s3manager.Uploader) {
		u.Concurrency = 1
	})

	return &R2Storage{
		config:   config,
		uploader: uploader,
	}, nil
}

// UploadTranscript uploads a daily document, keyed by its year directory
// and filename: transcripts/<year>/<YYYY-MM-DD>_<camera>.md
func (r *R2Storage) UploadTranscript(localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open transcript %s: %v", localPath, err)
	}
	defer file.Close()

	year := filepath.Base(filepath.Dir(localPath))
	remotePath := filepath.ToSlash(filepath.Join("transcripts", year, filepath.Base(localPath)))

	_, err = r.uploader.Upload(&s3manager.UploadInput{
		Bucket:      aws.String(r.config.Bucket),
		Key:         aws.String(remotePath),
		Body:        file,
		ContentType: aws.String("text/markdown"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload transcript %s: %v", localPath, err)
	}

	log.Printf("[storage] Uploaded transcript to %s", remotePath)
	return remotePath, nil
}

// UploadDay uploads every daily document for one camera-day's year
// directory that matches the date prefix. Used by the archival pass
// after a run completes.
func (r *R2Storage) UploadDay(transcriptsRoot, dateStr string) (int, error) {
	year := dateStr[:4]
	pattern := filepath.Join(transcriptsRoot, year, dateStr+"_*.md")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return 0, fmt.Errorf("failed to glob transcripts: %v", err)
	}

	uploaded := 0
	for _, path := range matches {
		if _, err := r.UploadTranscript(path); err != nil {
			log.Printf("[storage] Archival upload failed for %s: %v", path, err)
			continue
		}
		uploaded++
	}
	return uploaded, nil
}
