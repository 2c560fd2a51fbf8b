package servicemanager

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// ── ServiceManager ────────────────────────────────────────────────────────────

// ServiceManager is the runtime service-resolution container.
//
// Given a symbolic name it determines a concrete instance through a chain of
// rules — pre-registered instance, direct factory, invokable type, abstract
// factory — optionally decorated by delegators and cached as a shared
// instance. It answers two questions: "does this name resolve?" (Has) and
// "produce the instance for this name" (Get / Build).
//
// All index structures are guarded by one RWMutex; no lock is held across a
// factory, abstract-factory, delegator or initializer call. Two goroutines
// racing to build the same uncached name may both run the factory, but only
// the first stored result wins — the loser's instance is discarded and the
// stored one returned, so a single live instance is ever visible per name.
type ServiceManager struct {
	mu sync.RWMutex

	// name → pre-registered or cached shared instance
	services map[string]any

	// canonical name → factory (explicit registrations and invokables)
	factories map[string]FactoryFunc

	// alias → target name (possibly itself an alias)
	aliases map[string]string

	// fallback resolvers, consulted in registration order
	abstracts []AbstractFactory

	// canonical name → decorators, first registered innermost
	delegators map[string][]DelegatorFunc

	// post-build hooks applied to every new instance
	initializers []InitializerFunc

	// ambient type registry: names creatable by zero-value construction
	// when autoInvokables is on. Never consulted by Has.
	types map[string]FactoryFunc

	// per-name sharing overrides; fallback is sharedByDefault
	shared          map[string]bool
	sharedByDefault bool

	autoInvokables bool
	allowOverride  bool

	validator Validator

	// creation context handed to all collaborators; defaults to the
	// manager itself, a nested manager points it at its parent
	ctx Container
}

// New creates an empty manager with default policies: sharing on,
// auto-invokable resolution on, override allowed.
func New() *ServiceManager {
	m := &ServiceManager{
		services:        make(map[string]any),
		factories:       make(map[string]FactoryFunc),
		aliases:         make(map[string]string),
		delegators:      make(map[string][]DelegatorFunc),
		types:           make(map[string]FactoryFunc),
		shared:          make(map[string]bool),
		sharedByDefault: true,
		autoInvokables:  true,
		allowOverride:   true,
	}
	m.ctx = m
	// The manager is resolvable from itself, so factories can take the
	// container as an ordinary dependency.
	m.services["servicemanager"] = m
	return m
}

// ── Registration ──────────────────────────────────────────────────────────────

// AddService registers a pre-built instance under name. It is returned as-is
// by Get, bypassing factories, delegators and initializers.
func (m *ServiceManager) AddService(name string, instance any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkOverride(name); err != nil {
		return err
	}
	m.services[name] = instance
	return nil
}

// AddFactory registers a factory for name.
//
//	m.AddFactory("mailer", func(ctx servicemanager.Container, name string, _ map[string]any) (any, error) {
//	    cfg, err := servicemanager.Resolve[*config.Config](ctx, "config")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return mail.NewSMTP(cfg.Mail), nil
//	})
func (m *ServiceManager) AddFactory(name string, factory FactoryFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkOverride(name); err != nil {
		return err
	}
	delete(m.services, name)
	m.factories[name] = factory
	return nil
}

// AddInvokable registers name as constructible from the zero value of
// prototype's type. The synthesized factory is a discoverable binding:
// Has(name) reports true.
//
//	m.AddInvokable("request-id", &RequestID{})
func (m *ServiceManager) AddInvokable(name string, prototype any) error {
	factory, err := zeroFactory(prototype)
	if err != nil {
		return err
	}
	return m.AddFactory(name, factory)
}

// RegisterType makes name creatable by zero-value construction of
// prototype's type without registering a discoverable binding: Has(name)
// stays false, Get(name) succeeds while the auto-invokable policy is on.
func (m *ServiceManager) RegisterType(name string, prototype any) error {
	factory, err := zeroFactory(prototype)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types[name] = factory
	return nil
}

// AddAlias registers alias as an alternative name for target. Chains are
// allowed (an alias may point at another alias); cycles are detected at
// resolution time and fail with a ConfigurationError.
func (m *ServiceManager) AddAlias(alias, target string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if alias == target {
		return &ConfigurationError{Name: alias, Reason: "alias points at itself"}
	}
	if err := m.checkOverride(alias); err != nil {
		return err
	}
	m.aliases[alias] = target
	return nil
}

// AddAbstractFactory appends a fallback resolver. Registering the same
// instance twice is a no-op; order of first registration is consulting order.
// Factories of non-comparable dynamic types have no identity to deduplicate
// on and are always appended.
func (m *ServiceManager) AddAbstractFactory(af AbstractFactory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.abstracts {
		if sameAbstractFactory(existing, af) {
			return
		}
	}
	m.abstracts = append(m.abstracts, af)
}

// sameAbstractFactory reports identity between two registered factories
// without tripping the runtime on uncomparable dynamic types.
func sameAbstractFactory(a, b AbstractFactory) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta != nil && !ta.Comparable() {
		return false
	}
	return a == b
}

// AddDelegator appends a decorator for name. The first delegator registered
// wraps the base factory directly; each later one wraps the previous, so the
// last registered runs outermost.
func (m *ServiceManager) AddDelegator(name string, d DelegatorFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delegators[name] = append(m.delegators[name], d)
}

// AddInitializer appends a hook run against every freshly built instance,
// after delegators, in registration order.
func (m *ServiceManager) AddInitializer(init InitializerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initializers = append(m.initializers, init)
}

// SetShared overrides the sharing policy for a single name.
func (m *ServiceManager) SetShared(name string, shared bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shared[name] = shared
}

// checkOverride enforces the override policy (must hold mu).
func (m *ServiceManager) checkOverride(name string) error {
	if m.allowOverride {
		return nil
	}
	_, hasService := m.services[name]
	_, hasFactory := m.factories[name]
	_, hasAlias := m.aliases[name]
	if hasService || hasFactory || hasAlias {
		return &ConfigurationError{Name: name, Reason: "already registered and override is not allowed"}
	}
	return nil
}

// ── Policies ──────────────────────────────────────────────────────────────────

// SetSharedByDefault sets the fallback sharing policy for names without a
// SetShared override. Default true.
func (m *ServiceManager) SetSharedByDefault(shared bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sharedByDefault = shared
}

// SetAllowOverride controls whether registrations may replace existing ones.
// Default true; production deployments typically lock the manager down after
// configuration.
func (m *ServiceManager) SetAllowOverride(allow bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowOverride = allow
}

// SetAutoInvokables controls whether Get/Build may fall back to the ambient
// type registry (RegisterType). Default true.
func (m *ServiceManager) SetAutoInvokables(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoInvokables = enabled
}

// SetValidator installs the acceptance predicate applied to every freshly
// built instance, after initializers. A nil validator accepts everything.
func (m *ServiceManager) SetValidator(v Validator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validator = v
}

// SetCreationContext points the manager's creation context at ctx. All
// factories, abstract factories, delegators and initializers receive ctx
// instead of the manager itself, letting a nested manager delegate
// construction to a parent container.
func (m *ServiceManager) SetCreationContext(ctx Container) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctx = ctx
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Has reports whether name resolves to a pre-registered instance, a factory,
// or an abstract factory willing to create it. It never builds anything,
// never caches its answer, and re-evaluates CanCreate on every call. Names
// creatable only through the ambient type registry are not reported.
func (m *ServiceManager) Has(name string) bool {
	canonical, err := m.canonicalName(name)
	if err != nil {
		return false
	}

	m.mu.RLock()
	_, isService := m.services[canonical]
	_, isFactory := m.factories[canonical]
	abstracts := append([]AbstractFactory(nil), m.abstracts...)
	ctx := m.ctx
	m.mu.RUnlock()

	if isService || isFactory {
		return true
	}
	for _, af := range abstracts {
		if af.CanCreate(ctx, canonical) {
			return true
		}
	}
	return false
}

// Get resolves name, returning the shared instance where sharing applies.
// Repeated option-free Gets for a shared name return the identical instance.
func (m *ServiceManager) Get(name string) (any, error) {
	canonical, err := m.canonicalName(name)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	instance, cached := m.services[canonical]
	m.mu.RUnlock()
	if cached {
		return instance, nil
	}

	instance, err = m.doCreate(name, canonical, nil)
	if err != nil {
		return nil, err
	}

	if m.isShared(canonical) {
		m.mu.Lock()
		if prior, ok := m.services[canonical]; ok {
			// Lost a concurrent build race; the stored instance wins.
			m.mu.Unlock()
			return prior, nil
		}
		m.services[canonical] = instance
		m.mu.Unlock()
	}
	return instance, nil
}

// Build resolves name to a fresh instance. The shared-instance cache is
// neither consulted nor populated, whatever the sharing policy says, so two
// Builds with equal options still return distinct instances. Pre-registered
// instances have no factory and cannot be built.
func (m *ServiceManager) Build(name string, options map[string]any) (any, error) {
	canonical, err := m.canonicalName(name)
	if err != nil {
		return nil, err
	}
	return m.doCreate(name, canonical, options)
}

// doCreate runs the factory lookup, build, decorate, initialize, validate
// pipeline. requested is the name the caller asked for (used in errors),
// canonical the alias-resolved name handed to collaborators.
func (m *ServiceManager) doCreate(requested, canonical string, options map[string]any) (any, error) {
	m.mu.RLock()
	factory, found := m.factories[canonical]
	if !found && m.autoInvokables {
		factory, found = m.types[canonical]
	}
	abstracts := append([]AbstractFactory(nil), m.abstracts...)
	delegators := append([]DelegatorFunc(nil), m.delegators[canonical]...)
	initializers := append([]InitializerFunc(nil), m.initializers...)
	validator := m.validator
	ctx := m.ctx
	m.mu.RUnlock()

	if !found {
		for _, af := range abstracts {
			if af.CanCreate(ctx, canonical) {
				factory = af.Create
				found = true
				break
			}
		}
	}
	if !found {
		return nil, &ServiceNotFoundError{Name: requested}
	}

	build := func() (any, error) {
		return factory(ctx, canonical, options)
	}
	for _, d := range delegators {
		inner := build
		delegate := d
		build = func() (any, error) {
			return delegate(ctx, canonical, inner)
		}
	}

	instance, err := build()
	if err != nil {
		return nil, err
	}

	for _, init := range initializers {
		if err := init(ctx, instance); err != nil {
			return nil, err
		}
	}

	if validator != nil && !validator(instance) {
		return nil, &InvalidServiceError{Name: requested, Instance: instance}
	}
	return instance, nil
}

// isShared answers the sharing policy for a canonical name.
func (m *ServiceManager) isShared(canonical string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.shared[canonical]; ok {
		return v
	}
	return m.sharedByDefault
}

// canonicalName follows alias edges until a non-alias name is reached. A
// visited set bounds the walk: revisiting a name means the alias graph has a
// cycle, which is a configuration mistake, not a retry condition.
func (m *ServiceManager) canonicalName(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	current := name
	var visited map[string]struct{}
	var hops []string
	for {
		target, ok := m.aliases[current]
		if !ok {
			return current, nil
		}
		if visited == nil {
			visited = make(map[string]struct{})
		}
		if _, seen := visited[current]; seen {
			return "", &ConfigurationError{
				Name:   name,
				Reason: fmt.Sprintf("alias cycle: %s -> %s", strings.Join(hops, " -> "), current),
			}
		}
		visited[current] = struct{}{}
		hops = append(hops, current)
		current = target
	}
}

// ── Maintenance ───────────────────────────────────────────────────────────────

// Forget drops the cached shared instance for name (alias-resolved when
// possible). The factory stays registered, so the next Get rebuilds. Dropping
// a pre-registered instance also works — it is the same index.
func (m *ServiceManager) Forget(name string) {
	canonical, err := m.canonicalName(name)
	if err != nil {
		canonical = name
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.services, canonical)
}

// Names returns the discoverable service names: registered instances and
// factories, not alias keys or ambient types. Order is unspecified.
func (m *ServiceManager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.factories)+len(m.services))
	for k := range m.factories {
		out = append(out, k)
	}
	for k := range m.services {
		if _, already := m.factories[k]; !already {
			out = append(out, k)
		}
	}
	return out
}
