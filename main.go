package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/km-arc/go-servicemanager/framework/app"
	gohttp "github.com/km-arc/go-servicemanager/framework/http"
	"github.com/km-arc/go-servicemanager/framework/routing"
	"github.com/km-arc/go-servicemanager/framework/servicemanager"
)

// Greeter is the demo service resolved over HTTP.
type Greeter struct {
	Prefix string
}

func (g *Greeter) Greet(name string) string {
	return g.Prefix + ", " + name + "!"
}

// reportStore is resolvable through the abstract factory below for any
// "report." name.
type reportStore struct {
	Topic string
}

// reportFactory creates a reportStore for every name under "report.".
type reportFactory struct{}

func (f *reportFactory) CanCreate(_ servicemanager.Container, name string) bool {
	return strings.HasPrefix(name, "report.")
}

func (f *reportFactory) Create(_ servicemanager.Container, name string, _ map[string]any) (any, error) {
	return &reportStore{Topic: strings.TrimPrefix(name, "report.")}, nil
}

// AppServiceProvider wires the demo services.
type AppServiceProvider struct {
	servicemanager.BaseProvider
}

func (p *AppServiceProvider) Register(m *servicemanager.ServiceManager) error {
	if err := m.AddService("started-at", time.Now()); err != nil {
		return err
	}

	if err := m.AddFactory("greeter", func(servicemanager.Container, string, map[string]any) (any, error) {
		return &Greeter{Prefix: "Hello"}, nil
	}); err != nil {
		return err
	}
	if err := m.AddAlias("hello", "greeter"); err != nil {
		return err
	}

	// Uppercase the greeting of every resolved greeter.
	m.AddDelegator("greeter", func(_ servicemanager.Container, _ string, build func() (any, error)) (any, error) {
		inner, err := build()
		if err != nil {
			return nil, err
		}
		g := inner.(*Greeter)
		g.Prefix = strings.ToUpper(g.Prefix)
		return g, nil
	})

	m.AddAbstractFactory(&reportFactory{})

	// Creatable via Get but never listed: scratch buffers are cheap.
	return m.RegisterType("scratch", &strings.Builder{})
}

func main() {
	application := app.New() // loads .env automatically
	application.Register(&AppServiceProvider{})
	application.Boot()

	r := application.Router()

	r.Prefix("/services", func(api *routing.Router) {

		// GET /services — the discoverable names
		api.Get("/", func(w http.ResponseWriter, req *http.Request) {
			res := gohttp.NewResponse(w)
			res.Success(application.Names())
		})

		// GET /services/{name} — look up and resolve one name
		api.Get("/{name}", func(w http.ResponseWriter, req *http.Request) {
			res := gohttp.NewResponse(w)
			name := routing.Param(req, "name")

			known := application.Has(name)
			instance, err := application.Get(name)
			if err != nil {
				if servicemanager.IsNotFound(err) {
					res.NotFound(err.Error())
					return
				}
				res.Error(http.StatusInternalServerError, err.Error())
				return
			}
			res.Success(map[string]any{
				"name":  name,
				"known": known,
				"type":  fmt.Sprintf("%T", instance),
			})
		})

		// POST /services/{name}/build — always-fresh resolution
		api.Post("/{name}/build", func(w http.ResponseWriter, req *http.Request) {
			res := gohttp.NewResponse(w)
			name := routing.Param(req, "name")

			instance, err := application.Build(name, map[string]any{"fresh": true})
			if err != nil {
				if servicemanager.IsNotFound(err) {
					res.NotFound(err.Error())
					return
				}
				res.Error(http.StatusInternalServerError, err.Error())
				return
			}
			res.Created(map[string]any{
				"name": name,
				"type": fmt.Sprintf("%T", instance),
			})
		})
	})

	application.Run()
}
