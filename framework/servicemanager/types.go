package servicemanager

import (
	"fmt"
	"reflect"
)

// ── Collaborator capabilities ─────────────────────────────────────────────────

// Container is the resolution surface handed to factories, abstract
// factories, delegators and initializers. It is normally the outermost
// container (the creation context), not necessarily the manager that
// received the original Get call — a nested manager delegates construction
// to its parent by pointing its creation context at it.
type Container interface {
	// Has reports whether name resolves, without building anything.
	Has(name string) bool

	// Get resolves name, returning the shared instance where sharing applies.
	Get(name string) (any, error)

	// Build resolves name to a fresh instance, never consulting or
	// populating the shared-instance cache.
	Build(name string, options map[string]any) (any, error)
}

// FactoryFunc builds a service instance. ctx is the creation context, name
// the canonical service name being built, options the per-call options
// (nil for plain Get calls).
type FactoryFunc func(ctx Container, name string, options map[string]any) (any, error)

// AbstractFactory is a fallback resolver consulted, in registration order,
// for names with no direct factory or instance. CanCreate must be cheap and
// side-effect free: it is re-evaluated on every Has and every resolution.
type AbstractFactory interface {
	CanCreate(ctx Container, name string) bool
	Create(ctx Container, name string, options map[string]any) (any, error)
}

// DelegatorFunc decorates a factory's output. build produces the previous
// stage's result (base factory, or the next-inner delegator); the delegator
// normally invokes it exactly once and may mutate or replace the instance.
// The first delegator registered for a name is applied innermost, the last
// one outermost.
type DelegatorFunc func(ctx Container, name string, build func() (any, error)) (any, error)

// InitializerFunc runs against every freshly built instance after
// decoration. A non-nil error aborts the resolution and the instance is
// never cached.
type InitializerFunc func(ctx Container, instance any) error

// Validator is the pluggable acceptance predicate a plugin manager applies
// to built instances. It is consumed as a plain yes/no capability; what
// "valid" means is the deployment's business.
type Validator func(instance any) bool

// InstanceOf returns a Validator accepting only instances assignable to T.
//
//	pm := servicemanager.NewPluginManager(app, servicemanager.InstanceOf[http.Handler]())
func InstanceOf[T any]() Validator {
	return func(instance any) bool {
		_, ok := instance.(T)
		return ok
	}
}

// ── Reflect helpers ───────────────────────────────────────────────────────────

// TypeKey returns the package-qualified type name of v, useful as a stable
// service name when registering types rather than hand-picked strings.
//
//	key := servicemanager.TypeKey((*UserRepository)(nil))  // "main.UserRepository"
//	m.RegisterType(key, (*UserRepository)(nil))
func TypeKey(v any) string {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.PkgPath() + "." + t.Name()
}

// zeroFactory synthesizes a FactoryFunc that constructs a fresh zero value
// of prototype's type: pointer prototypes yield a pointer to a new zero
// element, value prototypes yield the zero value itself.
func zeroFactory(prototype any) (FactoryFunc, error) {
	t := reflect.TypeOf(prototype)
	if t == nil {
		return nil, fmt.Errorf("servicemanager: cannot derive a type from an untyped nil prototype")
	}
	return func(Container, string, map[string]any) (any, error) {
		if t.Kind() == reflect.Ptr {
			return reflect.New(t.Elem()).Interface(), nil
		}
		return reflect.New(t).Elem().Interface(), nil
	}, nil
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve resolves name from m and type-asserts the result.
//
//	repo, err := servicemanager.Resolve[*UserRepository](m, "users")
func Resolve[T any](m Container, name string) (T, error) {
	instance, err := m.Get(name)
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("servicemanager: [%s] resolved to %T, want %T", name, instance, zero)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on failure. Intended for bootstrap
// code where a missing binding is a programming error.
func MustResolve[T any](m Container, name string) T {
	typed, err := Resolve[T](m, name)
	if err != nil {
		panic(err)
	}
	return typed
}
