package cron

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"snapcap/logger"
	storysvc "snapcap/module/story/service"
)

// Start schedules the background maintenance jobs. Returns the scheduler so
// main can shut it down.
func Start() (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	// stories are ephemeral: queries hide expired ones, this removes them
	_, err = s.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			n, err := storysvc.SweepExpired(ctx)
			if err != nil {
				logger.Warnf("[cron] story sweep: %v", err)
				return
			}
			if n > 0 {
				logger.Infof("[cron] swept %d expired stories", n)
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	s.Start()
	return s, nil
}
