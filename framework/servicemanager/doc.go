// Package servicemanager provides a runtime service-resolution container:
// given a symbolic name it determines a concrete instance through a chain of
// configurable rules, optionally caches the result, and reports absence
// without error.
//
// # Overview
//
// Applications wire their object graphs through declarative configuration
// rather than explicit construction code. A name resolves through, in order:
// a pre-registered instance, a direct factory (explicit or invokable), and
// finally the abstract-factory chain. The built value passes through the
// name's delegator chain and the global initializers before it is returned,
// and — for option-free requests on shared names — cached for the lifetime
// of the manager.
//
// # Registration
//
//	m := servicemanager.New()
//
//	// Pre-built value
//	m.AddService("config", cfg)
//
//	// Factory — receives the creation context, the canonical name and
//	// the per-call options (nil for plain Get calls)
//	m.AddFactory("mailer", func(ctx servicemanager.Container, name string, _ map[string]any) (any, error) {
//	    cfg, err := servicemanager.Resolve[*Config](ctx, "config")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return NewMailer(cfg), nil
//	})
//
//	// Invokable — constructible from a type's zero value
//	m.AddInvokable("request-id", &RequestID{})
//
//	// Alias — chains are fine, cycles are a ConfigurationError
//	m.AddAlias("mail", "mailer")
//
// # Resolving
//
//	// Existence check: no construction, no error for "not found"
//	ok := m.Has("mailer")
//
//	// Shared path: repeated Gets return the identical instance
//	raw, err := m.Get("mailer")
//
//	// Always-fresh path: bypasses the shared-instance cache
//	fresh, err := m.Build("mailer", map[string]any{"transport": "sendmail"})
//
//	// Generic helper — no type assertion required
//	mailer, err := servicemanager.Resolve[*Mailer](m, "mailer")
//
// # Abstract factories
//
// An abstract factory is a fallback resolver consulted when no direct
// binding exists. The chain is walked in registration order and the first
// CanCreate match wins. Has consults CanCreate too (fresh on every call,
// since the predicate may be stateful) but never builds.
//
// # Delegators
//
// A delegator decorates a factory's output. It receives a continuation that
// produces the previous stage's result and may mutate or replace it:
//
//	m.AddDelegator("mailer", func(ctx servicemanager.Container, name string, build func() (any, error)) (any, error) {
//	    inner, err := build()
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &LoggingMailer{Inner: inner.(*Mailer)}, nil
//	})
//
// The first delegator registered wraps the base factory directly; the last
// registered runs outermost.
//
// # Sharing
//
// Sharing is on by default: the first option-free Get for a name caches the
// instance, later Gets return it. Build, and any call carrying options,
// bypasses the cache in both directions. SetShared overrides the policy per
// name, SetSharedByDefault flips the default, Forget invalidates one entry.
//
// # Plugin managers
//
// A PluginManager is a manager specialized to one kind of service: a
// Validator (typically InstanceOf[SomeInterface]()) vets every built
// instance, and rejections surface as InvalidServiceError. Its creation
// context normally points at the parent application container so plugin
// factories can resolve application services.
//
// # Service providers
//
//	type AppServiceProvider struct{ servicemanager.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *servicemanager.ServiceManager) error {
//	    return app.AddFactory("mailer", newMailer)
//	}
//
//	registry := servicemanager.NewProviderRegistry(m)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
//
// Deferred providers (IsDeferred true + Provides listing their names) are
// registered lazily on the first resolution of a provided name.
//
// # Concurrency
//
// Index structures are guarded by a single read-write lock; no lock is held
// across a collaborator call, so factories are free to resolve further
// dependencies. Concurrent first-time builds of the same shared name may
// both run the factory, but only the first stored result is ever visible;
// the losing goroutine receives the stored instance. Registration while
// serving is possible but is a single-writer affair — configure first,
// resolve after.
package servicemanager
