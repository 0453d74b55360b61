// Package config handles configuration loading for digistav-admin.
//
// # Overview
//
// Configuration is loaded from a YAML or TOML file with environment variable
// expansion, then overridden by DIGISTAV_* environment variables. Every
// field has a default, so running without a config file works.
//
// # Configuration File
//
// Lookup order:
//
//  1. Path given with --config (must exist)
//  2. Path from DIGISTAV_CONFIG (must exist)
//  3. $XDG_CONFIG_HOME/digistav/admin.yaml, or ~/.config/digistav/admin.yaml
//     (may be missing)
//
// Files ending in .toml are parsed as TOML; anything else as YAML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	session:
//	  token: "${DIGISTAV_TOKEN}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string.
//
// # Environment Overrides
//
// These variables win over the file:
//
//	DIGISTAV_BASE_URL     backend.base_url
//	DIGISTAV_TIMEOUT      backend.timeout
//	DIGISTAV_SESSION_DB   session.path
//	DIGISTAV_TOKEN        session.token
//	DIGISTAV_LOG_LEVEL    logging.level
//	DIGISTAV_LOG_FORMAT   logging.format
//
// # Configuration Sections
//
// Backend:
//
//	backend:
//	  base_url: "https://builder-authbackend-yne2.onrender.com"
//	  timeout: "30s"
//
// Session (cookies persist here between runs):
//
//	session:
//	  path: "~/.local/share/digistav/session.db"
//	  cookie_name: "token"
//	  token: "${DIGISTAV_TOKEN}"   # seeds the session cookie when set
//
// Console:
//
//	console:
//	  skip_empty_update: false    # refuse user updates that change nothing
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
//	cfg, err := config.Resolve(flagPath)
//	if err != nil {
//	    return fmt.Errorf("loading config: %w", err)
//	}
package config
