package configstore

import (
	"context"
	"sync"
	"time"

	"github.com/ironvale/configcore/internal/infrastructure/logging"
)

// ProviderBuilder returns the ordered bootstrap providers for one identity.
// The factory calls it once per constructed store, so per-identity file
// paths (per-user, per-service overlays) resolve correctly.
type ProviderBuilder func(id Identity) []Provider

// FactoryOptions configures every store a Factory constructs.
type FactoryOptions struct {
	// Environment is stamped on every store's identity.
	Environment string

	// Providers builds the bootstrap chain for each new store. Required.
	Providers ProviderBuilder

	CacheEnabled      bool
	CacheTTL          time.Duration
	ValidationEnabled bool
	CriticalKeys      []string

	Logger *logging.Logger
}

// Factory memoizes ConfigurationStore instances across three independent
// buckets: one global store, a map keyed by user id, and a map keyed by
// service name. Combined user+service stores live in the user bucket under
// a "user:service" key.
//
// Isolation is structural: differently-keyed stores share no locks and no
// mutable state — each reloads the process-wide defaults independently.
// Construction failures (missing critical keys) are returned to the caller
// and not memoized, so a later request retries.
type Factory struct {
	opts FactoryOptions

	mu       sync.Mutex
	global   *Store
	users    map[string]*Store
	services map[string]*Store
}

// NewFactory creates a factory. No store is constructed until requested.
func NewFactory(opts FactoryOptions) *Factory {
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	return &Factory{
		opts:     opts,
		users:    make(map[string]*Store),
		services: make(map[string]*Store),
	}
}

// Global returns the process-wide store, constructing it on first request.
func (f *Factory) Global(ctx context.Context) (*Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.global != nil {
		return f.global, nil
	}
	s, err := f.newStore(ctx, Identity{Environment: f.opts.Environment})
	if err != nil {
		return nil, err
	}
	f.global = s
	return s, nil
}

// ForUser returns the store bound to userID, constructing it on first
// request. Every later call with the same id returns the identical
// instance.
func (f *Factory) ForUser(ctx context.Context, userID string) (*Store, error) {
	return f.userBucket(ctx, userID, Identity{
		User:        userID,
		Environment: f.opts.Environment,
	})
}

// ForService returns the store bound to a service name.
func (f *Factory) ForService(ctx context.Context, service string) (*Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if s, ok := f.services[service]; ok {
		return s, nil
	}
	s, err := f.newStore(ctx, Identity{
		Service:     service,
		Environment: f.opts.Environment,
	})
	if err != nil {
		return nil, err
	}
	f.services[service] = s
	return s, nil
}

// ForUserService returns the store bound to a user/service pair. These
// live in the user bucket under a "user:service" key.
func (f *Factory) ForUserService(ctx context.Context, userID, service string) (*Store, error) {
	return f.userBucket(ctx, userID+":"+service, Identity{
		User:        userID,
		Service:     service,
		Environment: f.opts.Environment,
	})
}

func (f *Factory) userBucket(ctx context.Context, key string, id Identity) (*Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if s, ok := f.users[key]; ok {
		return s, nil
	}
	s, err := f.newStore(ctx, id)
	if err != nil {
		return nil, err
	}
	f.users[key] = s
	return s, nil
}

func (f *Factory) newStore(ctx context.Context, id Identity) (*Store, error) {
	var providers []Provider
	if f.opts.Providers != nil {
		providers = f.opts.Providers(id)
	}
	return New(ctx, Options{
		Identity:          id,
		Providers:         providers,
		CacheEnabled:      f.opts.CacheEnabled,
		CacheTTL:          f.opts.CacheTTL,
		ValidationEnabled: f.opts.ValidationEnabled,
		CriticalKeys:      f.opts.CriticalKeys,
		Logger:            f.opts.Logger,
	})
}

// ManagerCount reports how many live stores each bucket holds.
func (f *Factory) ManagerCount() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()

	global := 0
	if f.global != nil {
		global = 1
	}
	return map[string]int{
		"global":  global,
		"user":    len(f.users),
		"service": len(f.services),
	}
}

// ClearAllCaches purges the read cache of every live store.
func (f *Factory) ClearAllCaches() {
	f.mu.Lock()
	stores := make([]*Store, 0, 1+len(f.users)+len(f.services))
	if f.global != nil {
		stores = append(stores, f.global)
	}
	for _, s := range f.users {
		stores = append(stores, s)
	}
	for _, s := range f.services {
		stores = append(stores, s)
	}
	f.mu.Unlock()

	for _, s := range stores {
		s.ClearCache()
	}
}
