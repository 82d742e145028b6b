// Package config provides server configuration for SnapBrowse.
//
// This package defines the server configuration structure and validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation (root names and paths, addresses, limits)
//   - sanitize.go: Log sanitization (hide sensitive values)
//
// Configuration is loaded via internal/infra/confloader from a JSON or YAML
// file plus SNAPBROWSE_* environment variables. Keys are split on "/" rather
// than "." so snapshot root names may contain dots.
//
// A ServerConfig is read once at startup and never mutated afterwards.
package config
