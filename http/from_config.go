package http

import (
	"github.com/reqbricks/reqbricks/config"
	"github.com/reqbricks/reqbricks/logger"
	"github.com/reqbricks/reqbricks/request"
)

// NewBuilderFromConfig seeds a Builder with the client and translate
// sections of cfg. Further options can be chained before Build.
func NewBuilderFromConfig(cfg *config.Config, log logger.Logger) *Builder {
	b := NewBuilder(log)
	if cfg == nil {
		return b
	}

	cc := cfg.Client
	b.WithTimeout(cc.Timeout).
		WithUserAgent(cc.UserAgent).
		WithTraceHeader(cc.Trace.Header).
		WithW3CTraceContext(cc.Trace.W3C)
	for name, value := range cc.Headers {
		b.WithDefaultHeader(name, value)
	}
	if cc.HasAuth() {
		b.WithBasicAuth(cc.Auth.Username, cc.Auth.Password)
	}

	return b.WithTranslator(TranslatorFromConfig(cfg))
}

// FromConfig builds a Client from cfg.
func FromConfig(cfg *config.Config, log logger.Logger) Client {
	return NewBuilderFromConfig(cfg, log).Build()
}

// TranslatorFromConfig builds the request translator described by the translate section of cfg.
func TranslatorFromConfig(cfg *config.Config) *request.Translator {
	if cfg == nil {
		return request.NewTranslator()
	}

	tc := cfg.Translate
	opts := []request.Option{
		request.WithWorkers(tc.Workers),
		request.WithTagName(tc.Tag),
	}
	if tc.KeepBlank {
		opts = append(opts, request.WithFilter(request.KeepAll))
	}
	return request.NewTranslator(opts...)
}
