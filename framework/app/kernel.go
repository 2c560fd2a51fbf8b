package app

import (
	"fmt"
	"log"
	"net/http"

	"github.com/km-arc/go-servicemanager/framework/config"
	"github.com/km-arc/go-servicemanager/framework/providers"
	"github.com/km-arc/go-servicemanager/framework/routing"
	"github.com/km-arc/go-servicemanager/framework/servicemanager"
)

// Application is the top-level application container.
// It embeds the ServiceManager and ProviderRegistry so user code can call
// app.AddFactory(), app.Get(), app.Register() directly.
type Application struct {
	*servicemanager.ServiceManager
	Providers *servicemanager.ProviderRegistry
}

// New creates and bootstraps the application.
func New(envFiles ...string) *Application {
	m := servicemanager.New()
	registry := servicemanager.NewProviderRegistry(m)

	app := &Application{
		ServiceManager: m,
		Providers:      registry,
	}

	// Framework core providers; config first so later providers can read it.
	app.Register(&providers.ConfigServiceProvider{EnvFiles: envFiles})
	app.Register(&providers.RoutingServiceProvider{})

	return app
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider servicemanager.ServiceProvider) {
	if err := a.Providers.Register(provider); err != nil {
		log.Fatalf("provider registration failed: %v", err)
	}
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() {
	if err := a.Providers.Boot(); err != nil {
		log.Fatalf("boot failed: %v", err)
	}
}

// Config resolves *config.Config from the manager.
func (a *Application) Config() *config.Config {
	return servicemanager.MustResolve[*config.Config](a.ServiceManager, "config")
}

// Router resolves *routing.Router from the manager.
func (a *Application) Router() *routing.Router {
	return servicemanager.MustResolve[*routing.Router](a.ServiceManager, "router")
}

// Run boots the application (if needed) and starts the HTTP server.
func (a *Application) Run() {
	if !a.Providers.Booted() {
		a.Boot()
	}
	cfg := a.Config()
	router := a.Router()
	addr := ":" + cfg.App.Port
	fmt.Printf("%s running on http://localhost%s  [%s]\n",
		cfg.App.Name, addr, cfg.App.Env)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config().App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config().App.Debug }
func (a *Application) Version() string     { return "0.1.0" }
