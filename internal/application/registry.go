package application

import (
	"errors"
	"sync"

	"microcms-mcp-server/internal/domain"
	"microcms-mcp-server/internal/infrastructure"
)

// ConfigLoader produces the application configuration. It is called at most
// once per successful initialization; failures are not cached, so a later
// call may retry.
type ConfigLoader func() (*domain.AppConfig, error)

// ServiceRegistry owns the configured services and one lazily-initialized
// ClientBundle per service. It is the single routing authority: handlers
// obtain clients exclusively through Resolve, which applies the
// single-vs-multi-service policy.
//
// The registry is an explicit object injected into handlers rather than
// package state, so independent registries can coexist in tests.
type ServiceRegistry struct {
	mu          sync.Mutex
	loader      ConfigLoader
	initialized bool
	config      *domain.AppConfig
	bundles     map[string]*infrastructure.ClientBundle
	order       []string
	defaultID   string
}

// NewServiceRegistry creates a registry that loads configuration through
// the given loader on first use.
func NewServiceRegistry(loader ConfigLoader) *ServiceRegistry {
	return &ServiceRegistry{
		loader:  loader,
		bundles: make(map[string]*infrastructure.ClientBundle),
	}
}

// Initialize loads configuration and builds a client bundle for every
// declared service. It is idempotent: concurrent first callers serialize on
// the registry lock and observe the same completed initialization; later
// calls return the cached configuration without re-reading external state.
// Building bundles performs no network I/O.
func (r *ServiceRegistry) Initialize() (*domain.AppConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initializeLocked()
}

func (r *ServiceRegistry) initializeLocked() (*domain.AppConfig, error) {
	if r.initialized {
		return r.config, nil
	}

	config, err := r.loader()
	if err != nil {
		var confErr *domain.ConfigurationError
		if !errors.As(err, &confErr) {
			err = &domain.ConfigurationError{Reason: "failed to load configuration", Err: err}
		}
		return nil, err
	}

	services := config.Services()
	bundles := make(map[string]*infrastructure.ClientBundle, len(services))
	order := make([]string, 0, len(services))
	for _, svc := range services {
		bundles[svc.ID] = infrastructure.NewClientBundle(svc)
		order = append(order, svc.ID)
	}

	r.config = config
	r.bundles = bundles
	r.order = order
	r.defaultID = config.Default().ID
	r.initialized = true

	return config, nil
}

// Config returns the loaded configuration, or NotInitializedError when
// Initialize has not completed. Resolve initializes lazily, so this error
// only reaches callers that bypass the router.
func (r *ServiceRegistry) Config() (*domain.AppConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initialized {
		return nil, &domain.NotInitializedError{}
	}
	return r.config, nil
}

// ServiceIDs returns the registered service ids in declaration order.
func (r *ServiceRegistry) ServiceIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// HasService reports whether the given id is registered.
func (r *ServiceRegistry) HasService(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.bundles[id]
	return ok
}

// Resolve maps an optional caller-supplied service id to a client bundle,
// initializing the registry first if needed.
//
// An empty serviceID falls back to the default service in single-service
// mode; in multi-service mode it is an AmbiguousServiceError, never a
// silent default, so a caller cannot accidentally write to the wrong
// tenant. An id that matches no configured service is an
// UnknownServiceError. Both errors enumerate the registered ids so the
// caller can self-correct.
//
// The returned bundle is shared and must not be mutated.
func (r *ServiceRegistry) Resolve(serviceID string) (*infrastructure.ClientBundle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	config, err := r.initializeLocked()
	if err != nil {
		return nil, err
	}

	if serviceID == "" {
		if config.Mode() == domain.MultiService {
			ids := make([]string, len(r.order))
			copy(ids, r.order)
			return nil, &domain.AmbiguousServiceError{ServiceIDs: ids}
		}
		serviceID = r.defaultID
	}

	bundle, ok := r.bundles[serviceID]
	if !ok {
		ids := make([]string, len(r.order))
		copy(ids, r.order)
		return nil, &domain.UnknownServiceError{ServiceID: serviceID, Configured: ids}
	}
	return bundle, nil
}
