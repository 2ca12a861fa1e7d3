package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Schedule adds every cron-triggered job to c. Each run gets a fresh event named after
// the job.
func (r *Registry) Schedule(ctx context.Context, c *cron.Cron) error {
	for _, j := range r.List() {
		if j.Trigger.Cron == "" {
			continue
		}
		name := j.Name
		_, err := c.AddFunc(j.Trigger.Cron, func() {
			if _, err := r.Invoke(ctx, name, Event{Name: "cron/" + name}); err != nil {
				log.Printf("ERROR: Scheduled job %s failed: %v", name, err)
			}
		})
		if err != nil {
			return fmt.Errorf("scheduling %s (%s): %w", name, j.Trigger.Cron, err)
		}
		log.Printf("INFO: Scheduled job %s at %q", name, j.Trigger.Cron)
	}
	return nil
}
