package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Admin  AdminConfig  `yaml:"admin"`
}

// ServerConfig is the chat listener: the TCP port clients speak the line
// protocol on.
type ServerConfig struct {
	Name string `yaml:"name"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// AdminConfig is the HTTP side: health, stats, and the WebSocket gateway.
type AdminConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CHATD_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("CHATD_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("CHATD_ADMIN_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Admin.Port = port
		}
	}
}

func (c *Config) validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Admin.Port < 0 || c.Admin.Port > 65535 {
		return fmt.Errorf("admin.port out of range: %d", c.Admin.Port)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Server.Name == "" {
		c.Server.Name = "chatd"
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 12345
	}
	if c.Admin.Host == "" {
		c.Admin.Host = "0.0.0.0"
	}
	if c.Admin.Port == 0 {
		c.Admin.Port = 8080
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) AdminAddr() string {
	return fmt.Sprintf("%s:%d", c.Admin.Host, c.Admin.Port)
}
