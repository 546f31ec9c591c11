package smoke

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/okian/shopapi/internal/domain/model"
	"github.com/okian/shopapi/pkg/logger"
)

// ErrChecksFailed is returned when any lifecycle check did not pass.
var ErrChecksFailed = errors.New("smoke checks failed")

// resource describes how one table is addressed over HTTP.
type resource[T any] struct {
	name     string
	create   string // POST path
	list     string // GET path for all rows
	item     string // prefix for /{id} routes
	id       func(T) int64
	withID   func(T, int64) T
	mutate   func(T) T
	equal    func(want, got T) bool
	counters *Counters
}

func productResource(stats *Stats) resource[model.Product] {
	return resource[model.Product]{
		name:   model.ResourceProduct,
		create: "/product",
		list:   "/products",
		item:   "/product/",
		id:     func(p model.Product) int64 { return p.ID },
		withID: func(p model.Product, id int64) model.Product {
			p.ID = id
			return p
		},
		mutate:   mutateProduct,
		equal:    func(want, got model.Product) bool { return want == got },
		counters: &stats.Products,
	}
}

func userResource(stats *Stats) resource[model.User] {
	return resource[model.User]{
		name:   model.ResourceUser,
		create: "/user",
		list:   "/users",
		item:   "/user/",
		id:     func(u model.User) int64 { return u.ID },
		withID: func(u model.User, id int64) model.User {
			u.ID = id
			return u
		},
		mutate:   mutateUser,
		equal:    sameUser,
		counters: &stats.Users,
	}
}

// sameUser ignores the password: the server may store a bcrypt hash instead.
func sameUser(want, got model.User) bool {
	want.Password = got.Password
	return want == got
}

// Run executes the complete smoke test and returns its statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting shopapi smoke test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("products", config.Products),
		logger.Int("users", config.Users),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
	)

	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Run both lifecycles
	products := productResource(stats)
	listedProducts := runLifecycle(ctx, client, config, products, generateProducts(config.Products))

	users := userResource(stats)
	listedUsers := runLifecycle(ctx, client, config, users, generateUsers(config.Users))

	stats.Listed = listedProducts + listedUsers
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(ctx, stats)

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("smoke test interrupted: %w", err)
	}
	if n := stats.Failures(); n > 0 {
		return stats, fmt.Errorf("%w: %d", ErrChecksFailed, n)
	}

	log.Info(ctx, "smoke test completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	logger.Get().Info(ctx, "checking service health")

	status, err := client.do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", status)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// runLifecycle creates every item, checks they are listed, then reads,
// updates and deletes each one. It returns how many created rows were listed.
func runLifecycle[T any](ctx context.Context, client *HTTPClient, config *Config, res resource[T], items []T) int {
	var (
		mu      sync.Mutex
		created []T
	)

	forEach(ctx, config.Workers, len(items), func(i int) {
		var got T
		status, err := client.do(ctx, http.MethodPost, res.create, items[i], &got)
		if !check(ctx, config, res, "create", status, err) {
			return
		}
		if res.id(got) <= 0 || !res.equal(res.withID(items[i], res.id(got)), got) {
			mismatch(ctx, config, res, "create", res.id(got))
			return
		}
		res.counters.Created.Add(1)
		mu.Lock()
		created = append(created, got)
		mu.Unlock()
	})

	listed := verifyListed(ctx, client, config, res, created)

	forEach(ctx, config.Workers, len(created), func(i int) {
		want := created[i]
		path := res.item + strconv.FormatInt(res.id(want), 10)

		var got T
		status, err := client.do(ctx, http.MethodGet, path, nil, &got)
		if !check(ctx, config, res, "get", status, err) {
			return
		}
		if !res.equal(want, got) {
			mismatch(ctx, config, res, "get", res.id(want))
			return
		}
		res.counters.Fetched.Add(1)

		updated := res.mutate(want)
		status, err = client.do(ctx, http.MethodPut, path, updated, &got)
		if !check(ctx, config, res, "update", status, err) {
			return
		}
		if !res.equal(updated, got) {
			mismatch(ctx, config, res, "update", res.id(want))
			return
		}
		res.counters.Updated.Add(1)

		status, err = client.do(ctx, http.MethodDelete, path, nil, &got)
		if !check(ctx, config, res, "delete", status, err) {
			return
		}
		if !res.equal(updated, got) {
			mismatch(ctx, config, res, "delete", res.id(want))
			return
		}
		res.counters.Deleted.Add(1)

		status, err = client.do(ctx, http.MethodGet, path, nil, nil)
		if err != nil || status != http.StatusNotFound {
			mismatch(ctx, config, res, "get after delete", res.id(want))
			return
		}
		res.counters.Missing.Add(1)
	})

	return listed
}

// verifyListed checks that every created row appears in the list route.
func verifyListed[T any](ctx context.Context, client *HTTPClient, config *Config, res resource[T], created []T) int {
	var all []T
	status, err := client.do(ctx, http.MethodGet, res.list, nil, &all)
	if !check(ctx, config, res, "list", status, err) {
		return 0
	}

	byID := make(map[int64]T, len(all))
	for _, row := range all {
		byID[res.id(row)] = row
	}

	listed := 0
	for _, want := range created {
		if got, ok := byID[res.id(want)]; ok && res.equal(want, got) {
			listed++
			continue
		}
		mismatch(ctx, config, res, "list", res.id(want))
	}
	return listed
}

// check records a failed request and reports whether the step may continue.
func check[T any](ctx context.Context, config *Config, res resource[T], step string, status int, err error) bool {
	if err == nil && status == http.StatusOK {
		return true
	}
	res.counters.Failed.Add(1)
	if config.Verbose {
		logger.Get().Warn(ctx, "request failed",
			logger.String("resource", res.name),
			logger.String("step", step),
			logger.Int("status", status),
			logger.Error(err),
		)
	}
	return false
}

func mismatch[T any](ctx context.Context, config *Config, res resource[T], step string, id int64) {
	res.counters.Mismatch.Add(1)
	if config.Verbose {
		logger.Get().Warn(ctx, "unexpected response",
			logger.String("resource", res.name),
			logger.String("step", step),
			logger.Int64("id", id),
		)
	}
}

// forEach runs fn for 0..n-1 on up to workers goroutines, stopping early when ctx ends.
func forEach(ctx context.Context, workers, n int, fn func(i int)) {
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan int, workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for w := 0; w < min(workers, n); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				fn(i)
			}
		}()
	}

	func() {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	wg.Wait()
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var opsPerSecond float64
	ops := stats.Products.Created.Load() + stats.Products.Updated.Load() + stats.Products.Deleted.Load() +
		stats.Users.Created.Load() + stats.Users.Updated.Load() + stats.Users.Deleted.Load()
	if stats.Duration > 0 {
		opsPerSecond = float64(ops) / stats.Duration.Seconds()
	}

	for name, c := range map[string]*Counters{model.ResourceProduct: &stats.Products, model.ResourceUser: &stats.Users} {
		logger.Get().Info(ctx, "resource statistics",
			logger.String("resource", name),
			logger.Int64("created", c.Created.Load()),
			logger.Int64("fetched", c.Fetched.Load()),
			logger.Int64("updated", c.Updated.Load()),
			logger.Int64("deleted", c.Deleted.Load()),
			logger.Int64("goneAfterDelete", c.Missing.Load()),
			logger.Int64("failed", c.Failed.Load()),
			logger.Int64("mismatched", c.Mismatch.Load()),
		)
	}
	logger.Get().Info(ctx, "final statistics",
		logger.Int("listed", stats.Listed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("writesPerSecond", opsPerSecond),
		logger.Int64("failures", stats.Failures()),
	)
}
