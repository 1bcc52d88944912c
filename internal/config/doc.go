// Package config holds the application configuration of doc-scanner.
//
// Values are resolved in increasing order of precedence:
//
//  1. Built-in defaults (NewConfig).
//  2. A YAML file: the path given with --config, or doc-scanner.yaml in the
//     working directory or in $XDG_CONFIG_HOME/doc-scanner.
//  3. Environment variables prefixed with DOC_SCANNER_, for example
//     DOC_SCANNER_MIN_AREA or DOC_SCANNER_LOG_LEVEL.
//  4. Command-line flags that were explicitly set.
//
// The Config is built once at startup and passed down explicitly; nothing
// in this package is global.
package config
