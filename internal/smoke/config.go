// Package smoke drives a running shopapi server through every CRUD route
// concurrently and verifies each response against what was sent.
package smoke

import (
	"sync/atomic"
	"time"
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Products int           // Number of products to push through the lifecycle
	Users    int           // Number of users to push through the lifecycle
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // HTTP request timeout
	Verbose  bool          // Log every failed check
}

// Counters tallies the outcome of each lifecycle step for one resource.
type Counters struct {
	Created  atomic.Int64
	Fetched  atomic.Int64
	Updated  atomic.Int64
	Deleted  atomic.Int64
	Missing  atomic.Int64 // GET after DELETE answered 404
	Failed   atomic.Int64
	Mismatch atomic.Int64
}

// Stats holds run statistics.
type Stats struct {
	Products  Counters
	Users     Counters
	Listed    int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Failures returns the number of failed or mismatched checks across both resources.
func (s *Stats) Failures() int64 {
	return s.Products.Failed.Load() + s.Products.Mismatch.Load() +
		s.Users.Failed.Load() + s.Users.Mismatch.Load()
}
