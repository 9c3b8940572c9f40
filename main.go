package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ubv-transcribe/api"
	"ubv-transcribe/config"
	"ubv-transcribe/cron"
	"ubv-transcribe/database"
	"ubv-transcribe/discovery"
	"ubv-transcribe/monitoring"
	"ubv-transcribe/pipeline"
	"ubv-transcribe/protect"
	"ubv-transcribe/storage"
	"ubv-transcribe/transcode"
	"ubv-transcribe/transcribe"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	os.Exit(run())
}

func run() int {
	discoverFlag := flag.Bool("discover-footage", false, "Discover available footage date range across all cameras")
	downloadFlag := flag.Bool("download", false, "Process footage in hourly chunks with retry/backoff")
	startDateFlag := flag.String("start-date", "", "Start date for processing (YYYY-MM-DD, required with -download)")
	endDateFlag := flag.String("end-date", "", "End date for processing (YYYY-MM-DD, required with -download)")
	cameraIDsFlag := flag.String("camera-ids", "", "Comma-separated camera IDs to process (default: all cameras)")
	serveFlag := flag.Bool("serve", false, "Run the status API server and the daily catch-up cron")
	timezoneFlag := flag.String("timezone", "", "Timezone for chunk planning and discovery (e.g. America/New_York)")
	envFileFlag := flag.String("env-file", "", "Path to .env file (default: .env in working directory)")
	flag.Parse()

	if *envFileFlag != "" {
		if err := godotenv.Load(*envFileFlag); err != nil {
			log.Printf("Error loading env file %s: %v", *envFileFlag, err)
			return 1
		}
		log.Printf("Loaded environment from: %s", *envFileFlag)
	} else if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from: .env")
	}

	cfg := config.LoadConfig()
	if *timezoneFlag != "" {
		cfg.Timezone = *timezoneFlag
	}

	if err := cfg.Validate(); err != nil {
		log.Printf("Configuration error: %v", err)
		log.Println("Set the variables in a .env file or the environment. See .env.example for a template.")
		return 1
	}

	if err := config.EnsurePaths(cfg); err != nil {
		log.Printf("Failed to prepare directories: %v", err)
		return 1
	}

	db, err := database.NewSQLiteDB(cfg.DatabasePath)
	if err != nil {
		log.Printf("Failed to initialize database: %v", err)
		return 1
	}
	defer db.Close()

	client, err := protect.NewClient(cfg.ProtectAddress, cfg.ProtectUsername, cfg.ProtectPassword, cfg.VerifySSL)
	if err != nil {
		log.Printf("Failed to create UniFi Protect client: %v", err)
		return 1
	}

	app := &application{cfg: cfg, db: db, client: client}

	switch {
	case *discoverFlag:
		return app.discoverFootage()
	case *downloadFlag:
		return app.download(*startDateFlag, *endDateFlag, *cameraIDsFlag)
	case *serveFlag:
		return app.serve()
	default:
		flag.Usage()
		return 1
	}
}

type application struct {
	cfg    config.Config
	db     database.Database
	client *protect.Client
}

// discoverFootage walks backward from today to report the available
// footage range per camera and overall.
func (a *application) discoverFootage() int {
	cameras, err := a.client.ListCameras()
	if err != nil {
		log.Printf("Error retrieving camera list: %v", err)
		return 1
	}

	result := discovery.DiscoverFootageRange(cameras, a.cfg.Location(), a.cfg.MaxDaysBack)

	log.Println("============================================================")
	log.Println("DISCOVERY RESULTS")
	log.Println("============================================================")
	log.Printf("Total cameras: %d", len(cameras))
	if result.Earliest.IsZero() {
		log.Println("No footage found for any camera")
	} else {
		log.Printf("Earliest footage: %s", result.Earliest.Format("2006-01-02"))
		log.Printf("Latest footage: %s", result.Latest.Format("2006-01-02"))
		log.Printf("Total days with footage: %d", result.DaysWithFootage)
	}
	log.Println("============================================================")
	return 0
}

// download runs the chunked pipeline over a date range.
func (a *application) download(startDate, endDate, cameraIDs string) int {
	if startDate == "" || endDate == "" {
		log.Println("-start-date and -end-date are required with -download")
		log.Println("Example: -download -start-date 2026-01-01 -end-date 2026-01-02")
		return 1
	}

	loc := a.cfg.Location()

	start, err := parseDate(startDate, loc)
	if err != nil {
		log.Printf("Invalid start date %q: expected YYYY-MM-DD", startDate)
		return 1
	}
	endDay, err := parseDate(endDate, loc)
	if err != nil {
		log.Printf("Invalid end date %q: expected YYYY-MM-DD", endDate)
		return 1
	}
	// The end date is inclusive: process through the end of that day
	end := endDay.AddDate(0, 0, 1)

	stats, err := a.runRange(start, end, splitIDs(cameraIDs))
	if err != nil {
		log.Printf("Error during processing: %v", err)
		return 1
	}

	if stats.FailedChunks > 0 {
		log.Printf("Processing completed with %d failed chunks. Check logs for details.", stats.FailedChunks)
		return 1
	}
	log.Println("All chunks processed successfully!")
	return 0
}

// runRange executes one scheduler run over [start, end) and records it
// in the run history database.
func (a *application) runRange(start, end time.Time, cameraIDs []string) (pipeline.Stats, error) {
	// Structural checks up front: a missing binary fails the run, not
	// every chunk in turn.
	if err := transcode.VerifyFFmpeg(); err != nil {
		return pipeline.Stats{}, err
	}
	transcriber := transcribe.NewTranscriber(a.cfg.WhisperBinary, a.cfg.WhisperModel)
	if err := transcriber.VerifyInstallation(); err != nil {
		return pipeline.Stats{}, err
	}

	allCameras, err := a.client.ListCameras()
	if err != nil {
		return pipeline.Stats{}, fmt.Errorf("error retrieving camera list: %v", err)
	}
	cameras := selectCameras(allCameras, cameraIDs)
	if len(cameras) == 0 {
		return pipeline.Stats{}, fmt.Errorf("no cameras to process")
	}

	log.Printf("Will process %d camera(s):", len(cameras))
	for _, cam := range cameras {
		log.Printf("  - %s (ID: %s)", cam.Name, cam.ID)
	}

	ws, err := pipeline.NewWorkspace(a.cfg.WorkDir)
	if err != nil {
		return pipeline.Stats{}, err
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	monitoring.StartMonitoring(ctx, 5*time.Minute)

	retry := pipeline.RetryConfig{
		MaxRetries:     a.cfg.MaxRetries,
		InitialBackoff: a.cfg.InitialBackoff,
		MaxBackoff:     a.cfg.MaxBackoff,
	}
	processor := pipeline.NewProcessor(
		a.client,
		pipeline.ConverterFunc(transcode.ConvertToWAV),
		transcriber,
		ws,
		a.cfg.TranscriptsDir,
		retry,
	)

	runID := uuid.New().String()
	runRecord := database.RunRecord{
		ID:         runID,
		StartedAt:  time.Now(),
		RangeStart: start,
		RangeEnd:   end,
		Status:     database.RunStatusRunning,
	}
	if err := a.db.CreateRun(runRecord); err != nil {
		log.Printf("Failed to create run record: %v", err)
	}

	scheduler := pipeline.NewScheduler(&historyProcessor{
		inner: processor,
		db:    a.db,
		runID: runID,
	})
	stats := scheduler.Run(cameras, start, end)

	now := time.Now()
	runRecord.FinishedAt = &now
	runRecord.TotalChunks = stats.TotalChunks
	runRecord.SuccessfulChunks = stats.SuccessfulChunks
	runRecord.FailedChunks = stats.FailedChunks
	runRecord.CamerasProcessed = stats.CamerasProcessed
	runRecord.Status = database.RunStatusCompleted
	if stats.FailedChunks > 0 {
		runRecord.Status = database.RunStatusFailed
	}
	if err := a.db.FinishRun(runRecord); err != nil {
		log.Printf("Failed to finish run record: %v", err)
	}

	a.archiveTranscripts(start, end)

	return stats, nil
}

// archiveTranscripts uploads the run's daily documents to R2 when
// archival is configured. Failures are logged; the documents on disk
// remain the source of truth.
func (a *application) archiveTranscripts(start, end time.Time) {
	if !a.cfg.R2Enabled {
		return
	}

	r2, err := storage.NewR2Storage(storage.R2Config{
		AccessKey: a.cfg.R2AccessKey,
		SecretKey: a.cfg.R2SecretKey,
		AccountID: a.cfg.R2AccountID,
		Bucket:    a.cfg.R2Bucket,
		Endpoint:  a.cfg.R2Endpoint,
		Region:    a.cfg.R2Region,
	})
	if err != nil {
		log.Printf("Failed to initialize R2 storage: %v", err)
		return
	}

	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		uploaded, err := r2.UploadDay(a.cfg.TranscriptsDir, day.Format("2006-01-02"))
		if err != nil {
			log.Printf("Archival failed for %s: %v", day.Format("2006-01-02"), err)
			continue
		}
		if uploaded > 0 {
			log.Printf("Archived %d transcript(s) for %s", uploaded, day.Format("2006-01-02"))
		}
	}
}

// serve runs the status API and the daily catch-up cron until a signal
// arrives.
func (a *application) serve() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dailyCron := cron.NewDailyTranscribeCron(a.cfg.CronHour, a.cfg.Location(), func(day time.Time) error {
		_, err := a.runRange(day, day.AddDate(0, 0, 1), nil)
		return err
	})
	if err := dailyCron.Start(); err != nil {
		log.Printf("Failed to start daily cron: %v", err)
		return 1
	}
	defer dailyCron.Stop()

	server := api.NewServer(a.cfg, a.db)

	g, _ := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-ctx.Done()
		return ctx.Err()
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Printf("Server error: %v", err)
		return 1
	}
	return 0
}

// historyProcessor records each chunk outcome to the run history
// database around the real processor. History is reporting only; the
// document markers stay the idempotency authority (see transcript
// package).
type historyProcessor struct {
	inner pipeline.ChunkProcessor
	db    database.Database
	runID string
}

func (h *historyProcessor) Process(chunk pipeline.Chunk) pipeline.Result {
	result := h.inner.Process(chunk)

	record := database.ChunkRecord{
		RunID:      h.runID,
		CameraID:   chunk.CameraID,
		CameraName: chunk.CameraName,
		ChunkStart: chunk.Start,
		ChunkEnd:   chunk.End,
		Outcome:    result.Outcome.String(),
		Attempts:   result.Attempts,
		CreatedAt:  time.Now(),
	}
	if result.Err != nil {
		record.ErrorMessage = result.Err.Error()
	}
	if err := h.db.RecordChunk(record); err != nil {
		log.Printf("Failed to record chunk history: %v", err)
	}

	return result
}

func parseDate(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, loc)
}

func splitIDs(value string) []string {
	if value == "" {
		return nil
	}
	var ids []string
	for _, id := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

// selectCameras filters the camera list down to the requested IDs, or
// returns all cameras when no IDs were given.
func selectCameras(all []protect.Camera, ids []string) []pipeline.Camera {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var cameras []pipeline.Camera
	for _, cam := range all {
		if len(ids) > 0 && !wanted[cam.ID] {
			continue
		}
		cameras = append(cameras, pipeline.Camera{ID: cam.ID, Name: cam.Name})
		delete(wanted, cam.ID)
	}

	for id := range wanted {
		log.Printf("Camera ID not found: %s", id)
	}
	return cameras
}
