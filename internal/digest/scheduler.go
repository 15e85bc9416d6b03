package digest

import (
	"context"
	"log"
	"time"
)

// Scheduler drives the daily digest run for active users.
type Scheduler struct {
	service Service
	hour    int
}

func NewScheduler(service Service, hour int) *Scheduler {
	return &Scheduler{service: service, hour: hour}
}

func (s *Scheduler) Start(ctx context.Context) {
	go s.runDaily(ctx, s.hour, 0, s.service.GenerateDailyDigests)
}

func (s *Scheduler) runDaily(ctx context.Context, hour, minute int, task func(context.Context) error) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if now.After(next) {
			next = next.Add(24 * time.Hour)
		}

		timer := time.NewTimer(next.Sub(now))

		select {
		case <-timer.C:
			if err := task(ctx); err != nil {
				log.Printf("Scheduled digest run failed: %v", err)
			}
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}
