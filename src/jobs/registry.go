package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"
)

var (
	ErrDuplicateJob = errors.New("job already registered")
	ErrUnknownJob   = errors.New("unknown job")
)

// Event is a named payload that triggers every job subscribed to its name.
type Event struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Trigger says when a job runs: on an event, on a cron schedule, or both.
type Trigger struct {
	Event string `json:"event,omitempty"`
	Cron  string `json:"cron,omitempty"`
}

type Func func(ctx context.Context, ev Event) (any, error)

type Job struct {
	Name    string  `json:"name"`
	Trigger Trigger `json:"trigger"`
	Run     Func    `json:"-"`
}

// Registry holds the application's jobs, each under a unique name.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]Job

	// MaxAttempts bounds how often a failing job is run per invocation.
	MaxAttempts int
	// Backoff is the wait before the given retry attempt (1-based).
	Backoff func(attempt int) time.Duration
}

func NewRegistry() *Registry {
	return &Registry{
		jobs:        make(map[string]Job),
		MaxAttempts: 2,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(1<<attempt) * time.Second
		},
	}
}

func (r *Registry) Register(j Job) error {
	if j.Name == "" || j.Run == nil {
		return fmt.Errorf("job needs a name and a function")
	}
	if j.Trigger.Event == "" && j.Trigger.Cron == "" {
		return fmt.Errorf("job %s has no trigger", j.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[j.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, j.Name)
	}
	r.jobs[j.Name] = j
	return nil
}

// List returns the registered jobs ordered by name.
func (r *Registry) List() []Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	jobs := make([]Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].Name < jobs[k].Name })
	return jobs
}

func (r *Registry) Get(name string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[name]
	return j, ok
}

// Invoke runs the named job, retrying failures with backoff up to MaxAttempts.
func (r *Registry) Invoke(ctx context.Context, name string, ev Event) (any, error) {
	j, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 && r.Backoff != nil {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.Backoff(attempt - 1)):
			}
		}

		start := time.Now()
		result, err := j.Run(ctx, ev)
		if err == nil {
			log.Printf("INFO: Job %s finished in %s", name, time.Since(start).Round(time.Millisecond))
			return result, nil
		}
		lastErr = err
		log.Printf("ERROR: Job %s attempt %d/%d failed: %v", name, attempt, attempts, err)
	}
	return nil, fmt.Errorf("job %s: %w", name, lastErr)
}

// Dispatch runs every job subscribed to ev.Name and returns their results by job name.
func (r *Registry) Dispatch(ctx context.Context, ev Event) (map[string]any, error) {
	var names []string
	for _, j := range r.List() {
		if j.Trigger.Event == ev.Name {
			names = append(names, j.Name)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no job subscribed to event %q", ev.Name)
	}

	results := make(map[string]any, len(names))
	var errs []error
	for _, name := range names {
		res, err := r.Invoke(ctx, name, ev)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results[name] = res
	}
	return results, errors.Join(errs...)
}
