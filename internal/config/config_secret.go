package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SecretConfig matches the layout of the optional secrets file:
//
//	binance:
//	  api_key: ...
//	  api_secret: ...
type SecretConfig struct {
	Binance struct {
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
	} `yaml:"binance"`
}

func LoadSecretConfig(path string) (*SecretConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret config: %w", err)
	}

	var cfg SecretConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse secret config: %w", err)
	}

	return &cfg, nil
}
