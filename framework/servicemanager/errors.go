package servicemanager

import (
	"errors"
	"fmt"
)

// The engine adds exactly three failure modes around factory invocation;
// factory-internal errors propagate unchanged.

// ServiceNotFoundError is returned by Get/Build when no instance, factory or
// abstract factory resolves a name. It carries the originally requested name,
// not the canonical one, so the message matches caller intent. Has never
// produces it.
type ServiceNotFoundError struct {
	Name string
}

func (e *ServiceNotFoundError) Error() string {
	return fmt.Sprintf("servicemanager: no service or factory registered for [%s]", e.Name)
}

// InvalidServiceError is returned when a built instance is rejected by the
// configured Validator. The instance is discarded and never cached.
type InvalidServiceError struct {
	Name     string
	Instance any
}

func (e *InvalidServiceError) Error() string {
	return fmt.Sprintf("servicemanager: [%s] built an invalid service of type %T", e.Name, e.Instance)
}

// ConfigurationError reports a structural mistake in the registered
// configuration — an alias cycle, or a registration denied by the override
// policy. It is fatal to the call and never worth retrying.
type ConfigurationError struct {
	Name   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("servicemanager: configuration error for [%s]: %s", e.Name, e.Reason)
}

// ── Predicates ────────────────────────────────────────────────────────────────

// IsNotFound reports whether err is (or wraps) a ServiceNotFoundError.
func IsNotFound(err error) bool {
	var e *ServiceNotFoundError
	return errors.As(err, &e)
}

// IsInvalidService reports whether err is (or wraps) an InvalidServiceError.
func IsInvalidService(err error) bool {
	var e *InvalidServiceError
	return errors.As(err, &e)
}

// IsConfigurationError reports whether err is (or wraps) a ConfigurationError.
func IsConfigurationError(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}
