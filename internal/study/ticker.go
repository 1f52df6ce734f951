package study

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
)

// Ticker runs a callback at a fixed interval until stopped.
type Ticker interface {
	Start(interval time.Duration, fn func()) error
	Stop()
}

// CronTicker schedules the callback with gocron.
type CronTicker struct {
	scheduler *gocron.Scheduler
}

func NewCronTicker() Ticker {
	return &CronTicker{}
}

func (t *CronTicker) Start(interval time.Duration, fn func()) error {
	t.Stop()
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()
	if _, err := scheduler.Every(interval).WaitForSchedule().Do(fn); err != nil {
		return fmt.Errorf("scheduler.Do() > %w", err)
	}
	scheduler.StartAsync()
	t.scheduler = scheduler
	return nil
}

func (t *CronTicker) Stop() {
	if t.scheduler == nil {
		return
	}
	t.scheduler.Stop()
	t.scheduler = nil
}
