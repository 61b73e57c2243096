// Package config loads and validates clipkeep's TOML configuration.
//
// Configuration is read from ~/.config/clipkeep/config.toml by default; a
// missing file yields defaults. Policy constants live here: the session
// retention TTL and the media payload size threshold are configuration, not
// derived values.
package config
