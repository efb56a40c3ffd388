package tasks

import "time"

// Config holds configuration for the background enrichment queue.
//
// The queue's only workload is catalog lookups, which share a 1 req/s rate
// limiter, so the defaults favor one patient worker over parallelism: extra
// workers would just queue up behind the limiter.
type Config struct {
	// Workers is the number of concurrent task workers. Default: 1
	Workers int

	// MaxRetries is the default maximum retry attempts for failed tasks. Default: 3
	MaxRetries int

	// RetryDelay is the default backoff between retries. Catalog hiccups are
	// usually transient rate limiting, so back off a full minute. Default: 1m
	RetryDelay time.Duration

	// TaskTimeout is the default timeout for task execution. Default: 5m
	TaskTimeout time.Duration

	// ReleaseAfter is when stuck tasks are released back to the queue. It
	// must comfortably exceed the longest-running task: a full sweep at one
	// lookup per second over a 50-book batch runs for minutes, and the sweep
	// queue allows up to an hour. Default: 90m
	ReleaseAfter time.Duration

	// CleanupInterval is how often to clean up completed tasks. Default: 1h
	CleanupInterval time.Duration

	// RetentionDuration is how long to keep completed tasks. Default: 24h
	RetentionDuration time.Duration
}

// DefaultConfig returns a Config tuned for rate-limited catalog sweeps.
func DefaultConfig() Config {
	return Config{
		Workers:           1,
		MaxRetries:        3,
		RetryDelay:        1 * time.Minute,
		TaskTimeout:       5 * time.Minute,
		ReleaseAfter:      90 * time.Minute,
		CleanupInterval:   1 * time.Hour,
		RetentionDuration: 24 * time.Hour,
	}
}
