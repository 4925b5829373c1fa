package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvString reads an environment variable, reporting whether it was set to a
// non-empty value.
func EnvString(name string) (string, bool) {
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// EnvInt reads an integer environment variable. The bool reports whether the
// variable was set; a set but unparsable value is an error.
func EnvInt(name string) (int, bool, error) {
	value, ok := EnvString(name)
	if !ok {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be an integer: %w", name, err)
	}
	return parsed, true, nil
}

// EnvBool reads a boolean environment variable in strconv.ParseBool syntax.
func EnvBool(name string) (bool, bool, error) {
	value, ok := EnvString(name)
	if !ok {
		return false, false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, false, fmt.Errorf("%s must be a boolean: %w", name, err)
	}
	return parsed, true, nil
}

// EnvDuration reads a duration environment variable in time.ParseDuration
// syntax, for example "500ms" or "2s".
func EnvDuration(name string) (time.Duration, bool, error) {
	value, ok := EnvString(name)
	if !ok {
		return 0, false, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be a duration: %w", name, err)
	}
	return parsed, true, nil
}
