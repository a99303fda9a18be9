package tracing

import "time"

const reconnectionPeriod = 5 * time.Second

// Config defines the OTLP exporter settings.
type Config struct {
	// Disable installs a no-op tracer provider.
	Disable bool `yaml:"disable"`

	ExporterHost string `yaml:"exporter_host" validate:"required_if=Disable false"`
	ExporterPort int    `yaml:"exporter_port" default:"4317"`

	// SampleRate is the fraction of root traces sampled.
	SampleRate float64 `yaml:"sample_rate" default:"1" validate:"gte=0,lte=1"`

	// Tags are added as resource attributes to every span.
	Tags map[string]string `yaml:"tags"`
}
