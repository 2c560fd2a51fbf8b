package servicemanager_test

import (
	"bytes"
	"testing"

	"github.com/km-arc/go-servicemanager/framework/servicemanager"
)

// ── Declarative Config ────────────────────────────────────────────────────────

func TestConfig_Configure_AllSections(t *testing.T) {
	var initialized int
	m, err := servicemanager.NewWithConfig(servicemanager.Config{
		Services: map[string]any{"answer": 42},
		Factories: map[string]servicemanager.FactoryFunc{
			"word": baseStringFactory("x"),
		},
		Invokables: map[string]any{"buf": &bytes.Buffer{}},
		Aliases:    map[string]string{"w": "word"},
		Delegators: map[string][]servicemanager.DelegatorFunc{
			"word": {appendDelegator("-a"), appendDelegator("-b")},
		},
		Initializers: []servicemanager.InitializerFunc{
			func(servicemanager.Container, any) error { initialized++; return nil },
		},
		Shared: map[string]bool{"word": false},
	})
	if err != nil {
		t.Fatal(err)
	}

	if v, _ := m.Get("answer"); v != 42 {
		t.Errorf("service: got %v", v)
	}
	if v, _ := m.Get("w"); v != "x-a-b" {
		t.Errorf("factory via alias with delegators: got %v", v)
	}
	if !m.Has("buf") {
		t.Error("invokable should be discoverable")
	}

	// Shared=false for "word": a second Get decorates again.
	if v, _ := m.Get("word"); v != "x-a-b" {
		t.Errorf("non-shared resolution: got %v", v)
	}
	if initialized < 2 {
		t.Errorf("initializers should run per build, ran %d times", initialized)
	}
}

func TestConfig_SharedByDefaultOff(t *testing.T) {
	factory, _ := widgetFactory()
	m, err := servicemanager.NewWithConfig(servicemanager.Config{
		Factories:       map[string]servicemanager.FactoryFunc{"widget": factory},
		SharedByDefault: servicemanager.Bool(false),
	})
	if err != nil {
		t.Fatal(err)
	}

	a, _ := m.Get("widget")
	b, _ := m.Get("widget")
	if a == b {
		t.Error("SharedByDefault=false should disable caching")
	}
}

func TestConfig_AllowOverrideFalse_LocksManager(t *testing.T) {
	m, err := servicemanager.NewWithConfig(servicemanager.Config{
		Factories:     map[string]servicemanager.FactoryFunc{"svc": baseStringFactory("v")},
		AllowOverride: servicemanager.Bool(false),
	})
	if err != nil {
		t.Fatal(err)
	}

	err = m.AddFactory("svc", baseStringFactory("other"))
	if !servicemanager.IsConfigurationError(err) {
		t.Fatalf("re-registering a locked name should be a ConfigurationError, got %v", err)
	}
	if err := m.AddFactory("brand-new", baseStringFactory("n")); err != nil {
		t.Errorf("new names stay registrable, got %v", err)
	}
}

func TestAllowOverride_ReplacementDropsCachedInstance(t *testing.T) {
	m := servicemanager.New()
	if err := m.AddFactory("svc", baseStringFactory("old")); err != nil {
		t.Fatal(err)
	}
	if v, _ := m.Get("svc"); v != "old" {
		t.Fatalf("got %v", v)
	}

	if err := m.AddFactory("svc", baseStringFactory("new")); err != nil {
		t.Fatal(err)
	}
	if v, _ := m.Get("svc"); v != "new" {
		t.Errorf("replacing a factory should rebuild with the new one, got %v", v)
	}
}

func TestNewWithConfig_RegistrationErrorSurfaces(t *testing.T) {
	_, err := servicemanager.NewWithConfig(servicemanager.Config{
		Aliases: map[string]string{"loop": "loop"},
	})
	if !servicemanager.IsConfigurationError(err) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

// ── Builder ───────────────────────────────────────────────────────────────────

func TestBuilder_BuildsWorkingManager(t *testing.T) {
	af := &prefixFactory{prefix: "gen."}
	m, err := servicemanager.NewBuilder().
		WithService("answer", 42).
		WithFactory("word", baseStringFactory("x")).
		WithInvokable("buf", &bytes.Buffer{}).
		WithAlias("w", "word").
		WithAbstractFactory(af).
		WithDelegator("word", appendDelegator("!")).
		WithShared("word", true).
		SharedByDefault(true).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	if v, _ := m.Get("w"); v != "x!" {
		t.Errorf("got %v", v)
	}
	if !m.Has("gen.report") {
		t.Error("abstract factory from builder should be active")
	}
	if v, _ := m.Get("answer"); v != 42 {
		t.Errorf("got %v", v)
	}
}

func TestBuilder_AllowOverrideAppliedLast(t *testing.T) {
	m, err := servicemanager.NewBuilder().
		WithFactory("svc", baseStringFactory("v")).
		AllowOverride(false).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	if err := m.AddFactory("svc", baseStringFactory("x")); !servicemanager.IsConfigurationError(err) {
		t.Fatalf("builder lock-down should hold, got %v", err)
	}
}

func TestBuilder_ConfigAccessor(t *testing.T) {
	b := servicemanager.NewBuilder().WithService("a", 1).WithAlias("b", "a")
	cfg := b.Config()
	if cfg.Services["a"] != 1 || cfg.Aliases["b"] != "a" {
		t.Error("Config() should expose the accumulated configuration")
	}
}
