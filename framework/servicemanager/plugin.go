package servicemanager

// PluginManager is a ServiceManager specialized to one kind of service: every
// instance it produces must pass its Validator before it is returned or
// cached. What counts as valid is per deployment — typically an interface
// check, see InstanceOf.
//
// A plugin manager usually lives inside a larger application container; pass
// that container as parent so plugin factories resolve their dependencies
// from it. With a nil parent the plugin manager is its own creation context.
type PluginManager struct {
	*ServiceManager
}

// NewPluginManager creates a plugin manager validating instances with v.
func NewPluginManager(parent Container, v Validator) *PluginManager {
	m := New()
	m.SetValidator(v)
	if parent != nil {
		m.SetCreationContext(parent)
	}
	return &PluginManager{ServiceManager: m}
}

// NewPluginManagerWithConfig creates a plugin manager and applies cfg.
func NewPluginManagerWithConfig(parent Container, v Validator, cfg Config) (*PluginManager, error) {
	pm := NewPluginManager(parent, v)
	if err := cfg.Configure(pm.ServiceManager); err != nil {
		return nil, err
	}
	return pm, nil
}
