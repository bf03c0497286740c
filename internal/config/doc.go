// Package config loads the application configuration from environment
// variables (SICK_ prefix) with an optional YAML file underneath. The
// environment always wins; struct tags carry defaults and validation
// rules enforced via go-playground/validator.
package config
