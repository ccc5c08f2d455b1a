// Package config implements TOML configuration loading, validation, and
// platform path resolution for gdrive-mirror. It applies a four-layer
// override chain: defaults -> config file -> environment -> CLI flags.
package config

// Config is the top-level configuration structure parsed from a TOML file.
type Config struct {
	Auth    AuthConfig    `toml:"auth"`
	Mirror  MirrorConfig  `toml:"mirror"`
	Logging LoggingConfig `toml:"logging"`
}

// AuthConfig holds the OAuth2 client credentials and token location.
// The client ID and secret identify this application to Google; the token
// file holds the per-user grant obtained by `gdrive-mirror login`.
type AuthConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	TokenPath    string `toml:"token_path"`
}

// MirrorConfig controls what gets mirrored.
type MirrorConfig struct {
	// RootFolderID is the Drive folder the mirror starts from.
	// The pseudo-id "root" denotes the top of the user's Drive.
	RootFolderID string `toml:"root_folder_id"`
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Resolved is the effective configuration after the override chain has been
// applied. All paths are absolute and all defaults filled in.
type Resolved struct {
	ClientID     string
	ClientSecret string
	TokenPath    string
	RootFolderID string
	LogLevel     string
}
