// Package confloader provides configuration loading mechanism.
//
// This package implements a flexible configuration loader that supports
// multiple sources and formats using koanf as the underlying library.
//
// Features:
//
//   - Multiple Sources: Files, environment variables, maps
//   - Multiple Formats: JSON and YAML, selected by file extension
//   - Watch Support: Change notification for config files
//   - Type Safety: Unmarshaling into typed structs
//
// Priority (highest to lowest):
//
//  1. Environment variables
//  2. Configuration files
//  3. Values already present in the target struct
//
// Keys are split on a configurable delimiter. The default is "."; callers whose
// map keys may contain dots (for example user-chosen names) should pick another.
package confloader
