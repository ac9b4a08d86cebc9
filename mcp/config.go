package mcp

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/configloader"
	"github.com/go-playground/validator/v10"
)

// Config lists the MCP servers a client can launch, keyed by server
// name. The file format follows the common mcpServers convention.
type Config struct {
	Servers map[string]*ServerConfig `json:"mcpServers" yaml:"mcpServers" validate:"required,dive,required"`
}

// ServerConfig describes how to launch one server process.
type ServerConfig struct {
	Command string            `json:"command" yaml:"command" validate:"required"`
	Args    []string          `json:"args,omitempty" yaml:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
}

// LoadConfig reads and validates a server config file, expanding
// environment variables in values.
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	err := configloader.UnmarshalAndExpand(file, cfg)
	if err != nil {
		return nil, err
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, errors.WithMessagef(err, "invalid config %s", file)
	}
	return cfg, nil
}

// Server returns the named server config.
func (c *Config) Server(name string) (*ServerConfig, error) {
	srv := c.Servers[name]
	if srv == nil {
		return nil, errors.Newf("server %q is not configured", name)
	}
	return srv, nil
}
