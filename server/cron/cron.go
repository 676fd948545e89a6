package cron

import (
	"time"

	"github.com/go-co-op/gocron"
)

const DEFAULT_TIME_ZONE = "UTC"

// NewScheduler returns a scheduler running in timeZone. Unknown or empty zones fall back to UTC.
func NewScheduler(timeZone string) *gocron.Scheduler {
	if timeZone == "" {
		timeZone = DEFAULT_TIME_ZONE
	}

	location, err := time.LoadLocation(timeZone)
	if err != nil {
		location = time.UTC
	}

	scheduler := gocron.NewScheduler(location)
	scheduler.TagsUnique()

	return scheduler
}
