// internal/grouping/scheduler.go

package grouping

import (
    "context"
    "log"
    "time"
)

// Scheduler runs group formation periodically
type Scheduler struct {
    runner   *Runner
    interval time.Duration
}

func NewScheduler(runner *Runner, interval time.Duration) *Scheduler {
    return &Scheduler{runner: runner, interval: interval}
}

// Start launches the loop; it stops when ctx is cancelled
func (s *Scheduler) Start(ctx context.Context) {
    go s.runEvery(ctx, s.interval, func(ctx context.Context) error {
        _, err := s.runner.Run(ctx)
        return err
    })
}

func (s *Scheduler) runEvery(ctx context.Context, interval time.Duration, task func(context.Context) error) {
    ticker := time.NewTicker(interval)
    defer ticker.Stop()

    for {
        select {
        case <-ticker.C:
            if err := task(ctx); err != nil {
                log.Printf("Scheduled group formation failed: %v", err)
            }
        case <-ctx.Done():
            log.Println("Group formation scheduler stopped")
            return
        }
    }
}
