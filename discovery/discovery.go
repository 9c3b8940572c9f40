package discovery

import (
	"log"
	"time"

	"ubv-transcribe/protect"
)

// CameraRange tracks the first and last day a camera had footage.
// Zero times mean no footage was found for the camera.
type CameraRange struct {
	CameraName string
	Earliest   time.Time
	Latest     time.Time
}

// Result summarizes the available footage range across all cameras.
type Result struct {
	Earliest        time.Time // zero when no footage exists at all
	Latest          time.Time
	DaysWithFootage int
	PerCamera       map[string]CameraRange // keyed by camera ID
}

// DiscoverFootageRange walks backward one calendar day at a time from
// today's local midnight until no camera reports footage, bounded by
// maxDaysBack.
//
// Footage presence per day is a proxy check: a camera counts as having
// footage on a day when its recording start precedes the end of that
// day. Retention gaps inside the range are not detected.
func DiscoverFootageRange(cameras []protect.Camera, loc *time.Location, maxDaysBack int) Result {
	log.Println("[discovery] Starting footage discovery...")

	result := Result{PerCamera: make(map[string]CameraRange)}
	for _, cam := range cameras {
		result.PerCamera[cam.ID] = CameraRange{CameraName: cam.Name}
	}

	if len(cameras) == 0 {
		log.Println("[discovery] No cameras found")
		return result
	}

	now := time.Now().In(loc)
	currentDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	result.Latest = currentDate

	log.Printf("[discovery] Starting from: %s", currentDate.Format("2006-01-02"))

	daysChecked := 0
	for daysChecked < maxDaysBack {
		anyFootage := false
		dayEnd := currentDate.AddDate(0, 0, 1)

		for _, cam := range cameras {
			if !hasFootageOn(cam, dayEnd) {
				continue
			}
			anyFootage = true

			cr := result.PerCamera[cam.ID]
			if cr.Latest.IsZero() {
				cr.Latest = currentDate
			}
			cr.Earliest = currentDate
			result.PerCamera[cam.ID] = cr
		}

		if !anyFootage {
			log.Printf("[discovery] No footage found on %s - stopping", currentDate.Format("2006-01-02"))
			break
		}

		result.Earliest = currentDate
		log.Printf("[discovery] Footage found on %s", currentDate.Format("2006-01-02"))

		currentDate = currentDate.AddDate(0, 0, -1)
		daysChecked++
	}

	if daysChecked >= maxDaysBack {
		log.Printf("[discovery] Reached maximum days limit (%d)", maxDaysBack)
	}

	if !result.Earliest.IsZero() {
		result.DaysWithFootage = daysChecked
	}

	logResult(result)
	return result
}

// hasFootageOn applies the recording-start proxy: footage exists for a
// day when the camera started recording before that day ended.
func hasFootageOn(cam protect.Camera, dayEnd time.Time) bool {
	if cam.RecordingStart.IsZero() {
		return false
	}
	return cam.RecordingStart.Before(dayEnd)
}

func logResult(result Result) {
	log.Println("[discovery] Footage discovery complete:")
	if result.Earliest.IsZero() {
		log.Println("[discovery]   No footage found for any camera")
	} else {
		log.Printf("[discovery]   Earliest date: %s", result.Earliest.Format("2006-01-02"))
		log.Printf("[discovery]   Latest date: %s", result.Latest.Format("2006-01-02"))
		log.Printf("[discovery]   Days with footage: %d", result.DaysWithFootage)
	}

	log.Println("[discovery] Per-camera footage ranges:")
	for _, cr := range result.PerCamera {
		if cr.Earliest.IsZero() {
			log.Printf("[discovery]   %s: No footage found", cr.CameraName)
			continue
		}
		log.Printf("[discovery]   %s: %s to %s", cr.CameraName,
			cr.Earliest.Format("2006-01-02"), cr.Latest.Format("2006-01-02"))
	}
}
