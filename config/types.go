package config

import (
	"time"

	"github.com/knadh/koanf/v2"
)

// Config represents the reqbricks configuration: HTTP client defaults,
// parameter translation settings and logging preferences.
// The koanf instance it was loaded from stays attached for access to keys
// not modelled by the struct.
type Config struct {
	Client    ClientConfig    `koanf:"client" json:"client" yaml:"client" mapstructure:"client"`
	Translate TranslateConfig `koanf:"translate" json:"translate" yaml:"translate" mapstructure:"translate"`
	Log       LogConfig       `koanf:"log" json:"log" yaml:"log" mapstructure:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry" json:"telemetry" yaml:"telemetry" mapstructure:"telemetry"`

	k *koanf.Koanf `json:"-" yaml:"-" mapstructure:"-"`
}

// ClientConfig holds the defaults applied to every outbound request.
type ClientConfig struct {
	Timeout   time.Duration     `koanf:"timeout" json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	UserAgent string            `koanf:"useragent" json:"useragent" yaml:"useragent" mapstructure:"useragent" validate:"omitempty,printascii"`
	Headers   map[string]string `koanf:"headers" json:"headers" yaml:"headers" mapstructure:"headers" validate:"omitempty,dive,keys,required,printascii,endkeys,printascii"`
	Trace     TraceConfig       `koanf:"trace" json:"trace" yaml:"trace" mapstructure:"trace"`
	Auth      AuthConfig        `koanf:"auth" json:"auth" yaml:"auth" mapstructure:"auth"`
}

// TraceConfig controls trace propagation on outbound requests.
type TraceConfig struct {
	// Header carries the request trace ID; empty disables it.
	Header string `koanf:"header" json:"header" yaml:"header" mapstructure:"header" validate:"omitempty,printascii"`
	// W3C injects a traceparent header from the active span.
	W3C bool `koanf:"w3c" json:"w3c" yaml:"w3c" mapstructure:"w3c"`
}

// AuthConfig holds client-level basic auth credentials.
type AuthConfig struct {
	Username string `koanf:"username" json:"username" yaml:"username" mapstructure:"username"`
	Password string `koanf:"password" json:"-" yaml:"password" mapstructure:"password" validate:"required_with=Username"`
}

// TranslateConfig holds request object translation settings.
type TranslateConfig struct {
	// Workers bounds concurrent field conversion; 0 selects GOMAXPROCS.
	Workers int `koanf:"workers" json:"workers" yaml:"workers" mapstructure:"workers" validate:"gte=0,lte=1024"`
	// KeepBlank keeps optional blank parameters as empty strings.
	KeepBlank bool `koanf:"keepblank" json:"keepblank" yaml:"keepblank" mapstructure:"keepblank"`
	// Tag is the struct tag key holding parameter descriptors.
	Tag string `koanf:"tag" json:"tag" yaml:"tag" mapstructure:"tag" validate:"required,printascii"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty" mapstructure:"pretty"`
}

// TelemetryConfig selects the OpenTelemetry exporters the client reports spans and metrics to.
type TelemetryConfig struct {
	Enabled bool   `koanf:"enabled" json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Service string `koanf:"service" json:"service" yaml:"service" mapstructure:"service" validate:"required_if=Enabled true"`
	Version string `koanf:"version" json:"version" yaml:"version" mapstructure:"version"`
	// Endpoint is "stdout" or an OTLP collector address.
	Endpoint   string            `koanf:"endpoint" json:"endpoint" yaml:"endpoint" mapstructure:"endpoint" validate:"required"`
	Protocol   string            `koanf:"protocol" json:"protocol" yaml:"protocol" mapstructure:"protocol" validate:"oneof=http grpc"`
	Insecure   bool              `koanf:"insecure" json:"insecure" yaml:"insecure" mapstructure:"insecure"`
	Headers    map[string]string `koanf:"headers" json:"-" yaml:"headers" mapstructure:"headers"`
	SampleRate float64           `koanf:"samplerate" json:"samplerate" yaml:"samplerate" mapstructure:"samplerate" validate:"gte=0,lte=1"`
	// Interval between metric exports.
	Interval time.Duration `koanf:"interval" json:"interval" yaml:"interval" mapstructure:"interval" validate:"gte=0"`
}

// HasAuth reports whether client-level basic auth is configured.
func (c *ClientConfig) HasAuth() bool {
	return c.Auth.Username != ""
}
