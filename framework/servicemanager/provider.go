package servicemanager

import "sync"

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups related registrations so an application can wire its
// object graph in declarative units.
//
// Every provider must implement at minimum Register().
// Boot() is called after ALL providers have been registered, making it safe
// to resolve other bindings inside Boot().
//
//	type AppServiceProvider struct{ servicemanager.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *servicemanager.ServiceManager) error {
//	    return app.AddFactory("logger", func(ctx servicemanager.Container, _ string, _ map[string]any) (any, error) {
//	        cfg, err := servicemanager.Resolve[*config.Config](ctx, "config")
//	        if err != nil {
//	            return nil, err
//	        }
//	        return logging.New(cfg), nil
//	    })
//	}
type ServiceProvider interface {
	// Register binds services into the manager.
	// Do NOT resolve other bindings here — use Boot() for that.
	Register(app *ServiceManager) error

	// Boot is called after all providers are registered.
	// Safe to resolve and use any binding here.
	Boot(app *ServiceManager) error

	// Provides returns the service names this provider registers.
	// Used for deferred (lazy) provider loading.
	// Return nil / empty slice if the provider is always eager.
	Provides() []string

	// IsDeferred returns true if this provider should be loaded lazily —
	// only when one of its Provides() names is first resolved.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides no-op implementations
// of Boot(), Provides(), and IsDeferred().
// Embed it in your provider and only override what you need.
//
//	type MyProvider struct{ servicemanager.BaseProvider }
//	func (p *MyProvider) Register(app *servicemanager.ServiceManager) error { ... }
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *ServiceManager) error { return nil }
func (p *BaseProvider) Provides() []string           { return nil }
func (p *BaseProvider) IsDeferred() bool             { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred (lazy) providers. Register and Boot are bootstrap
// machinery driven from one goroutine; deferred loading, however, fires on
// first resolution and may be hit from any goroutine, so the registry state
// is guarded by a mutex.
type ProviderRegistry struct {
	app *ServiceManager

	mu         sync.Mutex
	eager      []ServiceProvider
	deferred   map[string]ServiceProvider // service name → provider
	booted     bool
	registered map[ServiceProvider]bool
	loaded     map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *ServiceManager) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		deferred:   make(map[string]ServiceProvider),
		registered: make(map[ServiceProvider]bool),
		loaded:     make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register() method (unless deferred).
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return nil
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		for _, name := range provider.Provides() {
			r.deferred[name] = provider
		}
		r.mu.Unlock()
		return r.interceptDeferred(provider)
	}
	r.mu.Unlock()

	if err := provider.Register(r.app); err != nil {
		return err
	}

	r.mu.Lock()
	r.loaded[provider] = true
	r.eager = append(r.eager, provider)
	booted := r.booted
	r.mu.Unlock()

	// If already booted, boot this provider immediately
	if booted {
		return provider.Boot(r.app)
	}
	return nil
}

// interceptDeferred registers a stand-in factory for each deferred name.
// The first resolution triggers real registration (and boot, if the registry
// has booted), then runs the real factory in place of the stand-in — the
// surrounding delegator/initializer pipeline applies exactly once.
func (r *ProviderRegistry) interceptDeferred(provider ServiceProvider) error {
	for _, name := range provider.Provides() {
		svc := name // capture
		err := r.app.AddFactory(svc, func(ctx Container, requested string, options map[string]any) (any, error) {
			if err := r.load(provider); err != nil {
				return nil, err
			}
			r.app.mu.RLock()
			real, ok := r.app.factories[svc]
			r.app.mu.RUnlock()
			if !ok {
				return nil, &ServiceNotFoundError{Name: svc}
			}
			return real(ctx, requested, options)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// load performs the real registration of a deferred provider, once. The
// lock is held across Register so a racing resolver that observes the
// provider as loaded also finds the real factory in place; Register must
// not resolve bindings, so no re-entry is possible. Boot may resolve, so
// it runs after the lock is released.
func (r *ProviderRegistry) load(provider ServiceProvider) error {
	r.mu.Lock()
	if r.loaded[provider] {
		r.mu.Unlock()
		return nil
	}
	r.loaded[provider] = true
	for _, name := range provider.Provides() {
		delete(r.deferred, name)
	}
	err := provider.Register(r.app)
	booted := r.booted
	r.mu.Unlock()

	if err != nil {
		return err
	}
	if booted {
		return provider.Boot(r.app)
	}
	return nil
}

// Boot calls Boot() on all eager providers.
// Must be called after ALL providers have been registered.
func (r *ProviderRegistry) Boot() error {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return nil
	}
	r.booted = true
	providers := append([]ServiceProvider(nil), r.eager...)
	r.mu.Unlock()

	for _, provider := range providers {
		if err := provider.Boot(r.app); err != nil {
			return err
		}
	}
	return nil
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Providers returns all registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.eager...)
}
