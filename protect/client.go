package protect

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Camera describes one camera known to the UniFi Protect controller.
// RecordingStart is the timestamp of the oldest retained footage; the
// zero value means the camera has never recorded.
type Camera struct {
	ID             string
	Name           string
	RecordingStart time.Time
}

// Client talks to a UniFi Protect controller: camera listing and footage
// export for a time range.
type Client struct {
	address    string
	username   string
	password   string
	httpClient *http.Client
	loggedIn   bool
}

// NewClient creates a UniFi Protect client. The address is a host or
// host:port; a scheme prefix is tolerated and stripped. With verifySSL
// false the client accepts the controller's self-signed certificate.
func NewClient(address, username, password string, verifySSL bool) (*Client, error) {
	address = strings.TrimPrefix(strings.TrimPrefix(address, "https://"), "http://")
	address = strings.TrimSuffix(address, "/")

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %v", err)
	}

	transport := &http.Transport{}
	if !verifySSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		address:  address,
		username: username,
		password: password,
		httpClient: &http.Client{
			Jar:       jar,
			Timeout:   10 * time.Minute, // Footage exports for an hour of video can be slow
			Transport: transport,
		},
	}, nil
}

// login authenticates against the controller and stores the session cookie.
func (c *Client) login() error {
	if c.loggedIn {
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal login payload: %v", err)
	}

	resp, err := c.httpClient.Post(
		fmt.Sprintf("https://%s/api/auth/login", c.address),
		"application/json",
		bytes.NewReader(payload),
	)
	if err != nil {
		return fmt.Errorf("login request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("login failed with status %d: %s", resp.StatusCode, string(body))
	}

	c.loggedIn = true
	log.Printf("[protect] Logged in to controller %s", c.address)
	return nil
}

type bootstrapResponse struct {
	Cameras []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Stats struct {
			Video struct {
				RecordingStart int64 `json:"recordingStart"` // epoch millis, 0 = never
			} `json:"video"`
		} `json:"stats"`
	} `json:"cameras"`
}

// ListCameras returns all cameras the controller knows about.
func (c *Client) ListCameras() ([]Camera, error) {
	if err := c.login(); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(fmt.Sprintf("https://%s/proxy/protect/api/bootstrap", c.address))
	if err != nil {
		return nil, fmt.Errorf("bootstrap request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("bootstrap failed with status %d: %s", resp.StatusCode, string(body))
	}

	var bootstrap bootstrapResponse
	if err := json.NewDecoder(resp.Body).Decode(&bootstrap); err != nil {
		return nil, fmt.Errorf("failed to decode bootstrap response: %v", err)
	}

	cameras := make([]Camera, 0, len(bootstrap.Cameras))
	for _, cam := range bootstrap.Cameras {
		camera := Camera{ID: cam.ID, Name: cam.Name}
		if cam.Stats.Video.RecordingStart > 0 {
			camera.RecordingStart = time.UnixMilli(cam.Stats.Video.RecordingStart)
		}
		cameras = append(cameras, camera)
	}

	log.Printf("[protect] Listed %d camera(s)", len(cameras))
	return cameras, nil
}

// DownloadFootage exports a camera's footage for [start, end) into destDir
// and returns the path of the downloaded video file. The output path is
// deterministic for a given camera and start time. HTTP failures carry
// the response text so callers can classify rate limiting.
func (c *Client) DownloadFootage(cameraID string, start, end time.Time, destDir string) (string, error) {
	if err := c.login(); err != nil {
		return "", err
	}

	outPath := filepath.Join(destDir, fmt.Sprintf("%s_%s.mp4", cameraID, start.Format("2006-01-02_15.04.05")))

	params := url.Values{}
	params.Set("camera", cameraID)
	params.Set("start", strconv.FormatInt(start.UnixMilli(), 10))
	params.Set("end", strconv.FormatInt(end.UnixMilli(), 10))

	exportURL := fmt.Sprintf("https://%s/proxy/protect/api/video/export?%s", c.address, params.Encode())

	resp, err := c.httpClient.Get(exportURL)
	if err != nil {
		return "", fmt.Errorf("footage export request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("footage export failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := os.MkdirAll(destDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create download directory: %v", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to create video file: %v", err)
	}

	written, err := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("failed to write video file: %v", err)
	}
	if closeErr != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("failed to close video file: %v", closeErr)
	}

	log.Printf("[protect] Downloaded footage to %s (%.2f MB)", outPath, float64(written)/(1024*1024))
	return outPath, nil
}
