package parser

import (
	"fmt"
	"strings"

	"extractos/internal/domain"
	"extractos/internal/port"
)

// ProviderFactory creates an ExtractionClient from a request-scoped API config.
type ProviderFactory func(cfg domain.APIConfig, timeoutSecs int) (port.ExtractionClient, error)

// registry of provider factories, populated by init() in each provider package
// or explicitly via RegisterProvider.
var providers = map[domain.Provider]ProviderFactory{}

// RegisterProvider registers an extraction client factory by provider name.
func RegisterProvider(name domain.Provider, factory ProviderFactory) {
	providers[name] = factory
}

// NewClient validates the config and creates an ExtractionClient using the
// registered factory for its provider.
func NewClient(cfg domain.APIConfig, timeoutSecs int) (port.ExtractionClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	name := domain.Provider(strings.ToLower(string(cfg.Provider)))
	factory, ok := providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, cfg.Provider)
	}
	return factory(cfg, timeoutSecs)
}
