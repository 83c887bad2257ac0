package model

import "fmt"

// ValidationError reports malformed or missing input data. It is fatal and
// aborts the run before any optimization starts.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "data validation: " + e.Msg
}

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConfigError reports invalid configuration: bad tier ratios, unknown
// scenario names, weights outside allowed ranges. Fatal before optimization.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "configuration: " + e.Msg
}

// NewConfigError builds a ConfigError from a format string.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// InfeasibleError means the integer program has no feasible solution. It is
// fatal for the current style/scenario pair only; the batch driver catches
// it and continues with the remaining pairs.
type InfeasibleError struct {
	Style    string
	Scenario string
	Stage    string
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("infeasible model: style=%s scenario=%s stage=%s", e.Style, e.Scenario, e.Stage)
}
