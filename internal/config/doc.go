// Package config loads and validates noticeboard's TOML configuration.
//
// Configuration resolution order: an explicit --config path, then
// ~/.config/noticeboard/config.toml, then a noticeboard.toml in the working
// directory. Missing files fall back to defaults so the CLI works out of
// the box. All path fields are tilde-expanded and made absolute during
// Load.
package config
