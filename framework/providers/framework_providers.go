package providers

import (
	"github.com/km-arc/go-servicemanager/framework/config"
	"github.com/km-arc/go-servicemanager/framework/routing"
	"github.com/km-arc/go-servicemanager/framework/servicemanager"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the application configuration from .env and
// binds it into the manager as "config". During Boot it applies the
// container policy knobs from the loaded config, so a deployment can flip
// sharing, auto-invokables and the override lock from the environment.
//
// Bound names:
//   - "config"        → *config.Config
//   - "configuration" → alias of "config"
type ConfigServiceProvider struct {
	servicemanager.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *servicemanager.ServiceManager) error {
	envFiles := p.EnvFiles
	err := app.AddFactory("config", func(servicemanager.Container, string, map[string]any) (any, error) {
		return config.Load(envFiles...), nil
	})
	if err != nil {
		return err
	}
	return app.AddAlias("configuration", "config")
}

func (p *ConfigServiceProvider) Boot(app *servicemanager.ServiceManager) error {
	cfg, err := servicemanager.Resolve[*config.Config](app, "config")
	if err != nil {
		return err
	}
	app.SetSharedByDefault(cfg.Container.SharedByDefault)
	app.SetAutoInvokables(cfg.Container.AutoInvokables)
	// Applied last so the provider's own registrations are not rejected.
	app.SetAllowOverride(cfg.Container.AllowOverride)
	return nil
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router.
//
// Bound names:
//   - "router" → *routing.Router
type RoutingServiceProvider struct {
	servicemanager.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *servicemanager.ServiceManager) error {
	return app.AddFactory("router", func(servicemanager.Container, string, map[string]any) (any, error) {
		return routing.New(), nil
	})
}
