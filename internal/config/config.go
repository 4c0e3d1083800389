package config

type Config interface {
	EnvConfig
	SpotifyConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetEnv() string
	GetStorageBackend() string
}

type mainConfig struct {
	EnvVars
	Spotify
}

func New() Config {
	return mainConfig{}
}
