package config

import "github.com/spf13/viper"

type Config struct {
	// Project scopes every runtime resource: container names, managed
	// volume and network names, and the ownership labels.
	Project    string        `mapstructure:"project"`
	Descriptor string        `mapstructure:"descriptor"`
	EnvFile    string        `mapstructure:"env_file"`
	Secrets    SecretsConfig `mapstructure:"secrets"`
}

type SecretsConfig struct {
	// Dir overrides SECRETS_DIR when checking credential files. Empty
	// means the value interpolated into the descriptor wins.
	Dir   string   `mapstructure:"dir"`
	Files []string `mapstructure:"files"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Project:    "lego",
		Descriptor: "deploy/docker-compose.yml",
		EnvFile:    ".env",
	}
	cfg.Secrets.Files = []string{"service.json", "credentials.json"}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
