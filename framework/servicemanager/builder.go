package servicemanager

// Builder implements a fluent assembly API over Config, for wiring done in
// code rather than loaded from configuration.
//
//	m, err := servicemanager.NewBuilder().
//	    WithService("config", cfg).
//	    WithFactory("mailer", newMailer).
//	    WithAlias("mail", "mailer").
//	    Build()
type Builder struct {
	cfg Config
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithService registers a pre-built instance.
func (b *Builder) WithService(name string, instance any) *Builder {
	if b.cfg.Services == nil {
		b.cfg.Services = make(map[string]any)
	}
	b.cfg.Services[name] = instance
	return b
}

// WithFactory registers a factory.
func (b *Builder) WithFactory(name string, factory FactoryFunc) *Builder {
	if b.cfg.Factories == nil {
		b.cfg.Factories = make(map[string]FactoryFunc)
	}
	b.cfg.Factories[name] = factory
	return b
}

// WithInvokable registers a zero-argument-constructible prototype.
func (b *Builder) WithInvokable(name string, prototype any) *Builder {
	if b.cfg.Invokables == nil {
		b.cfg.Invokables = make(map[string]any)
	}
	b.cfg.Invokables[name] = prototype
	return b
}

// WithAlias registers an alternative name for target.
func (b *Builder) WithAlias(alias, target string) *Builder {
	if b.cfg.Aliases == nil {
		b.cfg.Aliases = make(map[string]string)
	}
	b.cfg.Aliases[alias] = target
	return b
}

// WithAbstractFactory appends a fallback resolver.
func (b *Builder) WithAbstractFactory(af AbstractFactory) *Builder {
	b.cfg.AbstractFactories = append(b.cfg.AbstractFactories, af)
	return b
}

// WithDelegator appends a decorator for name.
func (b *Builder) WithDelegator(name string, d DelegatorFunc) *Builder {
	if b.cfg.Delegators == nil {
		b.cfg.Delegators = make(map[string][]DelegatorFunc)
	}
	b.cfg.Delegators[name] = append(b.cfg.Delegators[name], d)
	return b
}

// WithInitializer appends a post-build hook.
func (b *Builder) WithInitializer(init InitializerFunc) *Builder {
	b.cfg.Initializers = append(b.cfg.Initializers, init)
	return b
}

// WithShared sets the per-name sharing override.
func (b *Builder) WithShared(name string, shared bool) *Builder {
	if b.cfg.Shared == nil {
		b.cfg.Shared = make(map[string]bool)
	}
	b.cfg.Shared[name] = shared
	return b
}

// SharedByDefault sets the fallback sharing policy.
func (b *Builder) SharedByDefault(shared bool) *Builder {
	b.cfg.SharedByDefault = Bool(shared)
	return b
}

// AllowOverride sets the override policy, applied after registrations.
func (b *Builder) AllowOverride(allow bool) *Builder {
	b.cfg.AllowOverride = Bool(allow)
	return b
}

// Config returns the accumulated config without building a manager.
func (b *Builder) Config() Config {
	return b.cfg
}

// Build creates a manager from the accumulated config.
func (b *Builder) Build() (*ServiceManager, error) {
	return NewWithConfig(b.cfg)
}
