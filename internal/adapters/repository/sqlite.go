package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/okian/shopapi/internal/domain/model"
	"github.com/okian/shopapi/pkg/logger"
	"github.com/okian/shopapi/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultMaxOpenConns = 1
	defaultBusyTimeout  = 5 * time.Second
	driverName          = "sqlite3"
)

// Column names follow the camelCase names already present in deployed app.sqlite files.
const schema = `
CREATE TABLE IF NOT EXISTS product (
	id INTEGER NOT NULL PRIMARY KEY,
	title VARCHAR(40),
	description VARCHAR(144),
	photo VARCHAR(2000),
	price FLOAT,
	sale VARCHAR(3),
	"availableProduct" INTEGER
);
CREATE TABLE IF NOT EXISTS "user" (
	id INTEGER NOT NULL PRIMARY KEY,
	email VARCHAR(100) UNIQUE,
	"firstName" VARCHAR(40),
	"lastName" VARCHAR(40),
	password VARCHAR(60),
	"cardNumber" INTEGER UNIQUE,
	"cardCRV" INTEGER,
	"cardAddress" VARCHAR(60),
	"cardName" VARCHAR(80)
);`

// SQLiteStore implements Store on a single SQLite file.
type SQLiteStore struct {
	db           *sql.DB
	path         string
	maxOpenConns int
	busyTimeout  time.Duration
	bcryptCost   int
	logger       logger.Logger
}

var _ Store = (*SQLiteStore)(nil)

// rowQuerier is satisfied by both *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens (creating if needed) the SQLite file at path and ensures both tables exist.
func Open(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		path:         path,
		maxOpenConns: defaultMaxOpenConns,
		busyTimeout:  defaultBusyTimeout,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d", path, s.busyTimeout.Milliseconds())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(s.maxOpenConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	s.db = db

	s.logger.Info(ctx, "database ready",
		logger.String("path", path),
		logger.Int("maxOpenConns", s.maxOpenConns),
		logger.Duration("busyTimeout", s.busyTimeout),
		logger.Any("hashPasswords", s.bcryptCost > 0),
	)
	return s, nil
}

// Ping checks that the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Count returns the number of rows stored for resource.
func (s *SQLiteStore) Count(ctx context.Context, resource string) (n int, err error) {
	defer s.observe(ctx, "count", resource, time.Now(), &err)

	var query string
	switch resource {
	case model.ResourceProduct:
		query = `SELECT COUNT(*) FROM product`
	case model.ResourceUser:
		query = `SELECT COUNT(*) FROM "user"`
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownResource, resource)
	}
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", resource, err)
	}
	return n, nil
}

// observe records latency for every operation and logs and counts unexpected failures.
// Not-found is an expected outcome and is not counted as an error.
func (s *SQLiteStore) observe(ctx context.Context, op, resource string, start time.Time, errp *error) {
	elapsed := time.Since(start)
	metrics.RecordRepositoryQuery(op, resource, float64(elapsed.Microseconds())/1000)

	err := *errp
	if err == nil || errors.Is(err, ErrNotFound) {
		return
	}
	metrics.RecordRepositoryError(op, resource)
	if errors.Is(err, ErrConflict) || errors.Is(err, ErrInvalidInput) {
		s.logger.Debug(ctx, "repository operation rejected",
			logger.String("operation", op),
			logger.String("resource", resource),
			logger.Error(err),
		)
		return
	}
	s.logger.Error(ctx, "repository operation failed",
		logger.String("operation", op),
		logger.String("resource", resource),
		logger.Duration("elapsed", elapsed),
		logger.Error(err),
	)
}

// classify maps driver errors onto repository sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var se sqlite3.Error
	if errors.As(err, &se) && (se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return fmt.Errorf("%w: %s", ErrConflict, se.Error())
	}
	return err
}

// rollback is deferred by write transactions; it is a no-op after Commit.
func rollback(tx *sql.Tx) {
	_ = tx.Rollback()
}
