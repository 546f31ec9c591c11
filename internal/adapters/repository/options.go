package repository

import (
	"time"

	"github.com/okian/shopapi/pkg/logger"
)

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithLogger sets the logger used for query failures and lifecycle events.
func WithLogger(l logger.Logger) Option {
	return func(s *SQLiteStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxOpenConns bounds the connection pool.
func WithMaxOpenConns(n int) Option {
	return func(s *SQLiteStore) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}

// WithBusyTimeout sets how long SQLite waits for a lock before returning SQLITE_BUSY.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *SQLiteStore) {
		if d >= 0 {
			s.busyTimeout = d
		}
	}
}

// WithBcryptCost hashes user passwords with bcrypt at the given cost before they are stored.
// A cost of 0 stores passwords as received.
func WithBcryptCost(cost int) Option {
	return func(s *SQLiteStore) {
		if cost >= 0 {
			s.bcryptCost = cost
		}
	}
}
