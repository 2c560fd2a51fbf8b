package servicemanager_test

import (
	"fmt"
	"testing"

	"github.com/km-arc/go-servicemanager/framework/servicemanager"
)

// ── stubs ─────────────────────────────────────────────────────────────────────

// namedJob satisfies fmt.Stringer; plainValue does not.
type namedJob struct{ name string }

func (j *namedJob) String() string { return j.name }

type plainValue struct{}

// ── Validation ────────────────────────────────────────────────────────────────

func TestPluginManager_AcceptsValidInstances(t *testing.T) {
	pm := servicemanager.NewPluginManager(nil, servicemanager.InstanceOf[fmt.Stringer]())
	if err := pm.AddFactory("job", func(servicemanager.Container, string, map[string]any) (any, error) {
		return &namedJob{name: "nightly"}, nil
	}); err != nil {
		t.Fatal(err)
	}

	got, err := pm.Get("job")
	if err != nil {
		t.Fatal(err)
	}
	if got.(fmt.Stringer).String() != "nightly" {
		t.Errorf("got %v", got)
	}
}

func TestPluginManager_RejectsInvalidInstances(t *testing.T) {
	pm := servicemanager.NewPluginManager(nil, servicemanager.InstanceOf[fmt.Stringer]())
	calls := 0
	if err := pm.AddFactory("bogus", func(servicemanager.Container, string, map[string]any) (any, error) {
		calls++
		return &plainValue{}, nil
	}); err != nil {
		t.Fatal(err)
	}

	_, err := pm.Get("bogus")
	if !servicemanager.IsInvalidService(err) {
		t.Fatalf("expected InvalidServiceError, got %v", err)
	}

	// Rejected instances are discarded, never cached.
	_, err = pm.Get("bogus")
	if !servicemanager.IsInvalidService(err) {
		t.Fatal("second Get should fail identically")
	}
	if calls != 2 {
		t.Errorf("factory should re-run per attempt, ran %d times", calls)
	}
}

func TestPluginManager_ValidatorRunsAfterDelegators(t *testing.T) {
	// The delegator replaces the invalid base value with a valid one; the
	// validator must judge the decorated result.
	pm := servicemanager.NewPluginManager(nil, servicemanager.InstanceOf[fmt.Stringer]())
	if err := pm.AddFactory("job", func(servicemanager.Container, string, map[string]any) (any, error) {
		return &plainValue{}, nil
	}); err != nil {
		t.Fatal(err)
	}
	pm.AddDelegator("job", func(_ servicemanager.Container, _ string, build func() (any, error)) (any, error) {
		if _, err := build(); err != nil {
			return nil, err
		}
		return &namedJob{name: "upgraded"}, nil
	})

	got, err := pm.Get("job")
	if err != nil {
		t.Fatalf("decorated instance should pass validation, got %v", err)
	}
	if got.(fmt.Stringer).String() != "upgraded" {
		t.Errorf("got %v", got)
	}
}

func TestPluginManager_ParentIsCreationContext(t *testing.T) {
	parent := servicemanager.New()
	if err := parent.AddService("prefix", "job-"); err != nil {
		t.Fatal(err)
	}

	pm := servicemanager.NewPluginManager(parent, servicemanager.InstanceOf[fmt.Stringer]())
	if err := pm.AddFactory("worker", func(ctx servicemanager.Container, _ string, _ map[string]any) (any, error) {
		prefix, err := ctx.Get("prefix")
		if err != nil {
			return nil, err
		}
		return &namedJob{name: prefix.(string) + "worker"}, nil
	}); err != nil {
		t.Fatal(err)
	}

	got, err := pm.Get("worker")
	if err != nil {
		t.Fatal(err)
	}
	if got.(fmt.Stringer).String() != "job-worker" {
		t.Errorf("plugin factories should resolve from the parent, got %v", got)
	}
}

func TestNewPluginManagerWithConfig(t *testing.T) {
	pm, err := servicemanager.NewPluginManagerWithConfig(nil,
		servicemanager.InstanceOf[fmt.Stringer](),
		servicemanager.Config{
			Factories: map[string]servicemanager.FactoryFunc{
				"job": func(servicemanager.Container, string, map[string]any) (any, error) {
					return &namedJob{name: "configured"}, nil
				},
			},
			Aliases: map[string]string{"j": "job"},
		})
	if err != nil {
		t.Fatal(err)
	}

	got, err := pm.Get("j")
	if err != nil {
		t.Fatal(err)
	}
	if got.(fmt.Stringer).String() != "configured" {
		t.Errorf("got %v", got)
	}
}

func TestSetValidator_NilAcceptsEverything(t *testing.T) {
	m := servicemanager.New()
	if err := m.AddService("anything", &plainValue{}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get("anything"); err != nil {
		t.Errorf("no validator means no rejection, got %v", err)
	}
}
