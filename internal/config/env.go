package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variable names for overrides.
const (
	EnvConfig       = "GDRIVE_MIRROR_CONFIG"
	EnvClientID     = "GDRIVE_MIRROR_CLIENT_ID"
	EnvClientSecret = "GDRIVE_MIRROR_CLIENT_SECRET" //nolint:gosec // env var name, not a credential
	EnvTokenPath    = "GDRIVE_MIRROR_TOKEN_PATH"
	EnvRootFolder   = "GDRIVE_MIRROR_ROOT_FOLDER"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath   string // GDRIVE_MIRROR_CONFIG: override config file path
	ClientID     string // GDRIVE_MIRROR_CLIENT_ID: OAuth client ID
	ClientSecret string // GDRIVE_MIRROR_CLIENT_SECRET: OAuth client secret
	TokenPath    string // GDRIVE_MIRROR_TOKEN_PATH: token file override
	RootFolderID string // GDRIVE_MIRROR_ROOT_FOLDER: mirror start folder
}

// ReadEnvOverrides reads environment variables and returns any overrides
// found. A .env file in the working directory is loaded first, best-effort;
// real environment variables win over .env entries (godotenv never
// overwrites existing variables).
func ReadEnvOverrides() EnvOverrides {
	_ = godotenv.Load()

	return EnvOverrides{
		ConfigPath:   os.Getenv(EnvConfig),
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
		TokenPath:    os.Getenv(EnvTokenPath),
		RootFolderID: os.Getenv(EnvRootFolder),
	}
}
