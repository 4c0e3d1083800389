package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	baseURLVar    = "BASE_URL"
	storageVar    = "STORAGE"
	envVar        = "ENV"
	defaultEnv    = "DEV"
	defaultStore  = "file"
	defaultURLVar = "http://localhost:8080"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Soundboard")
}

// GetBaseURL returns the public base URL the dashboard is served from. In
// production it also anchors the OAuth redirect URI.
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, defaultURLVar)
}

func (EnvVars) GetEnv() string {
	env := os.Getenv(envVar)
	if env == "" {
		return defaultEnv
	}
	return env
}

// GetStorageBackend selects the durable token store: "file" or "keyring".
func (EnvVars) GetStorageBackend() string {
	return GetEnv(storageVar, defaultStore)
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
