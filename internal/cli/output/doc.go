// Package output provides output formatting for snapbrowse-cli.
//
// Results are printed as an aligned table (the default), JSON or YAML.
// Types that want a table layout implement Tabular; anything else falls
// back to JSON in table mode.
package output
