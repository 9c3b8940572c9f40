package cron

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// DailyTranscribeCron schedules a catch-up pipeline run once a day,
// processing the previous calendar day for all cameras. Chunks that a
// prior run already merged are skipped by the idempotency check, so the
// daily run only does the remaining work.
type DailyTranscribeCron struct {
	cron      *cron.Cron
	hour      int
	location  *time.Location
	runDay    func(day time.Time) error
	isRunning bool
}

// NewDailyTranscribeCron creates the daily cron. runDay is invoked with
// the local midnight of the day to process.
func NewDailyTranscribeCron(hour int, location *time.Location, runDay func(day time.Time) error) *DailyTranscribeCron {
	return &DailyTranscribeCron{
		cron:     cron.New(cron.WithSeconds(), cron.WithLocation(location)),
		hour:     hour,
		location: location,
		runDay:   runDay,
	}
}

// Start begins the daily transcription cron job
func (dtc *DailyTranscribeCron) Start() error {
	if dtc.isRunning {
		log.Println("[DailyTranscribeCron] Cron is already running")
		return nil
	}

	log.Println("[DailyTranscribeCron] Starting daily transcription cron...")

	_, err := dtc.cron.AddFunc(fmt.Sprintf("0 0 %d * * *", dtc.hour), func() {
		dtc.processYesterday()
	})
	if err != nil {
		return err
	}

	dtc.cron.Start()
	dtc.isRunning = true

	log.Printf("[DailyTranscribeCron] Daily transcription scheduled at %02d:00 local time", dtc.hour)
	return nil
}

// Stop stops the cron and waits for a running job to finish
func (dtc *DailyTranscribeCron) Stop() {
	if !dtc.isRunning {
		return
	}

	log.Println("[DailyTranscribeCron] Stopping daily transcription cron...")

	ctx := dtc.cron.Stop()
	select {
	case <-ctx.Done():
		log.Println("[DailyTranscribeCron] Daily transcription cron stopped gracefully")
	case <-time.After(30 * time.Second):
		log.Println("[DailyTranscribeCron] Daily transcription cron stopped with timeout")
	}

	dtc.isRunning = false
}

// NextRun returns the next scheduled run time
func (dtc *DailyTranscribeCron) NextRun() time.Time {
	if !dtc.isRunning {
		return time.Time{}
	}
	entries := dtc.cron.Entries()
	if len(entries) > 0 {
		return entries[0].Next
	}
	return time.Time{}
}

func (dtc *DailyTranscribeCron) processYesterday() {
	startTime := time.Now()

	now := time.Now().In(dtc.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, dtc.location)
	yesterday := today.AddDate(0, 0, -1)

	log.Printf("[DailyTranscribeCron] Starting scheduled run for %s...", yesterday.Format("2006-01-02"))

	if err := dtc.runDay(yesterday); err != nil {
		log.Printf("[DailyTranscribeCron] Error during scheduled run: %v", err)
		return
	}

	log.Printf("[DailyTranscribeCron] Scheduled run completed in %v", time.Since(startTime))
}
