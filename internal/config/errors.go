package config

import "fmt"

// ConfigurationError represents malformed or incomplete credentials. It is
// fatal at startup and never retried.
type ConfigurationError struct {
	msg string
}

func (e ConfigurationError) Error() string {
	return e.msg
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(format string, args ...interface{}) error {
	return ConfigurationError{msg: fmt.Sprintf(format, args...)}
}
