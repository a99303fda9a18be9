package server

import (
	"fmt"
	"time"
)

// Config defines configuration options for the HTTP server.
type Config struct {
	// HideErrorDetails hides error trace and details in responses.
	HideErrorDetails bool `yaml:"hide_error_details"`

	// Host address to bind the server to.
	Host string `yaml:"host" default:"0.0.0.0"`

	// Port number to listen on.
	Port int `yaml:"port" validate:"required" default:"8080"`

	// ReadTimeout is a maximum duration for reading the entire request.
	ReadTimeout time.Duration `yaml:"read_timeout" validate:"required" default:"10s"`

	// WriteTimeout is a maximum duration before timing out writes of the response.
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"required" default:"90s"`

	// IdleTimeout is a maximum amount of time to wait for the next request.
	IdleTimeout time.Duration `yaml:"idle_timeout" validate:"required" default:"120s"`

	// HandleTimeout bounds a single request. It must cover the full conversion
	// polling budget plus the source and result transfers.
	HandleTimeout time.Duration `yaml:"handle_timeout" validate:"required" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`

	// BodyLimit is the maximum request body size in bytes.
	BodyLimit int `yaml:"body_limit" validate:"required" default:"4194304"`

	// CORSAllowOrigins is a comma separated origin list. "*" echoes the request origin.
	CORSAllowOrigins string `yaml:"cors_allow_origins" default:"*"`
}

// Address returns the server's listen address in the form "host:port".
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
