package flowfly

import (
	"fmt"
)

// ConfigError reports an invalid setup parameter. It is only ever returned
// before the first event is generated.
type ConfigError struct {
	Param  string
	Reason string
}

func (err *ConfigError) Error() string {
	return fmt.Sprintf("Invalid '%s' value: %s.", err.Param, err.Reason)
}

// Configf is a convenience constructor for a *ConfigError.
func Configf(param, format string, args ...interface{}) error {
	return &ConfigError{Param: param, Reason: fmt.Sprintf(format, args...)}
}

// DomainError reports a sampling density which cannot be sampled from:
// negative or non-finite somewhere in its support, or with an empty support.
// Runs must stop when they see one.
type DomainError struct {
	Density  string
	X, Value float64
	Reason   string
}

func (err *DomainError) Error() string {
	if err.Reason != "" {
		return fmt.Sprintf("Density '%s' %s.", err.Density, err.Reason)
	}
	return fmt.Sprintf(
		"Density '%s' evaluates to %g at x = %g.", err.Density, err.Value, err.X,
	)
}
