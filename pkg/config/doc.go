// Package config loads the contact service configuration from a YAML file
// with environment variable overrides for secrets, applying defaults and
// validating the settings the service cannot start without.
package config
