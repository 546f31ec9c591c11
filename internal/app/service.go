// Package service provides the composition root that owns the store and
// implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/shopapi/internal/adapters/repository"
	"github.com/okian/shopapi/internal/domain/model"
	"github.com/okian/shopapi/pkg/logger"
	"github.com/okian/shopapi/pkg/metrics"
)

// ErrNotStarted is returned by store operations before Start or after Stop.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies on top of a repository.Store.
type Service struct {
	mu sync.RWMutex

	store repository.Store

	// Configuration
	databasePath string
	maxOpenConns int
	busyTimeout  time.Duration
	bcryptCost   int

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDatabasePath sets the SQLite file opened by Start.
func WithDatabasePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.databasePath = path
		}
	}
}

// WithMaxOpenConns sets the connection pool size.
func WithMaxOpenConns(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}

// WithBusyTimeout sets how long SQLite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// WithBcryptCost enables password hashing at cost. Zero stores passwords as given.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

// WithStore uses an already opened store instead of opening databasePath.
// The service takes ownership and closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		databasePath: "app.sqlite",
		maxOpenConns: 1,
		busyTimeout:  5 * time.Second,
		logger:       nil, // replaced in Start
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the store.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting shop service...", logger.String("databasePath", s.databasePath))

	if s.store == nil {
		store, err := repository.Open(ctx, s.databasePath,
			repository.WithLogger(s.logger.Named("repository")),
			repository.WithMaxOpenConns(s.maxOpenConns),
			repository.WithBusyTimeout(s.busyTimeout),
			repository.WithBcryptCost(s.bcryptCost),
		)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.store = store
	}

	s.started = true
	s.refreshRows(ctx, model.ResourceProduct)
	s.refreshRows(ctx, model.ResourceUser)

	s.logger.Info(ctx, "shop service started")
	return nil
}

// Stop closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping shop service...")

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error(context.Background(), "failed to close store", logger.Error(err))
		}
		s.store = nil
	}

	s.started = false
	s.logger.Info(context.Background(), "shop service stopped")
}

func (s *Service) current() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started || s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// refreshRows updates the row gauge for resource. Callers hold s.mu or run after Start.
func (s *Service) refreshRows(ctx context.Context, resource string) {
	if s.store == nil {
		return
	}
	n, err := s.store.Count(ctx, resource)
	if err != nil {
		s.logger.Warn(ctx, "failed to count rows", logger.String("resource", resource), logger.Error(err))
		return
	}
	metrics.UpdateResourceRows(resource, n)
}

// CreateProduct inserts a product.
func (s *Service) CreateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	store, err := s.current()
	if err != nil {
		return model.Product{}, err
	}
	out, err := store.CreateProduct(ctx, p)
	if err == nil {
		s.rowsChanged(ctx, model.ResourceProduct)
	}
	return out, err
}

// ListProducts returns every product.
func (s *Service) ListProducts(ctx context.Context) ([]model.Product, error) {
	store, err := s.current()
	if err != nil {
		return nil, err
	}
	return store.ListProducts(ctx)
}

// GetProduct returns one product.
func (s *Service) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	store, err := s.current()
	if err != nil {
		return model.Product{}, err
	}
	return store.GetProduct(ctx, id)
}

// UpdateProduct overwrites a product.
func (s *Service) UpdateProduct(ctx context.Context, id int64, p model.Product) (model.Product, error) {
	store, err := s.current()
	if err != nil {
		return model.Product{}, err
	}
	return store.UpdateProduct(ctx, id, p)
}

// DeleteProduct removes a product and returns it.
func (s *Service) DeleteProduct(ctx context.Context, id int64) (model.Product, error) {
	store, err := s.current()
	if err != nil {
		return model.Product{}, err
	}
	out, err := store.DeleteProduct(ctx, id)
	if err == nil {
		s.rowsChanged(ctx, model.ResourceProduct)
	}
	return out, err
}

// CreateUser inserts a user.
func (s *Service) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	store, err := s.current()
	if err != nil {
		return model.User{}, err
	}
	out, err := store.CreateUser(ctx, u)
	if err == nil {
		s.rowsChanged(ctx, model.ResourceUser)
	}
	return out, err
}

// ListUsers returns every user.
func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	store, err := s.current()
	if err != nil {
		return nil, err
	}
	return store.ListUsers(ctx)
}

// GetUser returns one user.
func (s *Service) GetUser(ctx context.Context, id int64) (model.User, error) {
	store, err := s.current()
	if err != nil {
		return model.User{}, err
	}
	return store.GetUser(ctx, id)
}

// UpdateUser overwrites a user.
func (s *Service) UpdateUser(ctx context.Context, id int64, u model.User) (model.User, error) {
	store, err := s.current()
	if err != nil {
		return model.User{}, err
	}
	return store.UpdateUser(ctx, id, u)
}

// DeleteUser removes a user and returns it.
func (s *Service) DeleteUser(ctx context.Context, id int64) (model.User, error) {
	store, err := s.current()
	if err != nil {
		return model.User{}, err
	}
	out, err := store.DeleteUser(ctx, id)
	if err == nil {
		s.rowsChanged(ctx, model.ResourceUser)
	}
	return out, err
}

func (s *Service) rowsChanged(ctx context.Context, resource string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.refreshRows(ctx, resource)
}

// Ping checks that the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	store, err := s.current()
	if err != nil {
		return err
	}
	return store.Ping(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":       s.started,
		"databasePath":  s.databasePath,
		"maxOpenConns":  s.maxOpenConns,
		"hashPasswords": s.bcryptCost > 0,
	}

	if !s.started {
		return stats, nil
	}

	for key, resource := range map[string]string{"products": model.ResourceProduct, "users": model.ResourceUser} {
		n, err := s.store.Count(ctx, resource)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", resource, err)
		}
		stats[key] = n
		metrics.UpdateResourceRows(resource, n)
	}

	return stats, nil
}
