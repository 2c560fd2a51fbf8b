package servicemanager

// Config is the declarative registration form: an external configuration
// loader assembles one (or merges several) and applies it in a single call.
// Zero-value fields are simply skipped, so partial configs compose.
type Config struct {
	// Services are pre-built instances, registered verbatim.
	Services map[string]any

	// Factories map service names to their factories.
	Factories map[string]FactoryFunc

	// Invokables map service names to zero-argument-constructible
	// prototypes; each becomes a discoverable synthesized factory.
	Invokables map[string]any

	// Aliases map alternative names to targets; chains are allowed.
	Aliases map[string]string

	// AbstractFactories are fallback resolvers, consulted in slice order.
	AbstractFactories []AbstractFactory

	// Delegators map service names to decorator chains, innermost first.
	Delegators map[string][]DelegatorFunc

	// Initializers run against every freshly built instance.
	Initializers []InitializerFunc

	// Shared holds per-name sharing overrides.
	Shared map[string]bool

	// SharedByDefault, when non-nil, replaces the default sharing policy.
	SharedByDefault *bool

	// AllowOverride, when non-nil, replaces the override policy. It is
	// applied last, so a config can both register and lock down.
	AllowOverride *bool
}

// Configure applies the config to m. SharedByDefault is applied first and
// AllowOverride last, so a config can both register and lock down; the first
// registration error aborts.
func (c Config) Configure(m *ServiceManager) error {
	if c.SharedByDefault != nil {
		m.SetSharedByDefault(*c.SharedByDefault)
	}
	for name, instance := range c.Services {
		if err := m.AddService(name, instance); err != nil {
			return err
		}
	}
	for name, factory := range c.Factories {
		if err := m.AddFactory(name, factory); err != nil {
			return err
		}
	}
	for name, prototype := range c.Invokables {
		if err := m.AddInvokable(name, prototype); err != nil {
			return err
		}
	}
	for alias, target := range c.Aliases {
		if err := m.AddAlias(alias, target); err != nil {
			return err
		}
	}
	for _, af := range c.AbstractFactories {
		m.AddAbstractFactory(af)
	}
	for name, chain := range c.Delegators {
		for _, d := range chain {
			m.AddDelegator(name, d)
		}
	}
	for _, init := range c.Initializers {
		m.AddInitializer(init)
	}
	for name, shared := range c.Shared {
		m.SetShared(name, shared)
	}
	if c.AllowOverride != nil {
		m.SetAllowOverride(*c.AllowOverride)
	}
	return nil
}

// NewWithConfig creates a manager and applies cfg.
func NewWithConfig(cfg Config) (*ServiceManager, error) {
	m := New()
	if err := cfg.Configure(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Bool is a convenience for the pointer policy fields.
//
//	cfg := servicemanager.Config{SharedByDefault: servicemanager.Bool(false)}
func Bool(v bool) *bool { return &v }
