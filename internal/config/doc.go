// Package config loads and validates scriber's TOML configuration.
//
// Configuration is resolved from an explicit path, then
// ~/.config/scriber/config.toml, then a project-local scriber.toml. A
// missing file is not an error; defaults apply. All path fields are
// expanded (including ~) and normalized before validation so the rest of
// the system can treat them as absolute.
package config
