package completion

import (
	"fmt"
	"net/http"
	"strings"

	"concierge-be/pkg/llm/factory"
)

// Options configures backend selection.
type Options struct {
	Kind            Kind
	ServerURL       string
	Credential      string
	Provider        string
	ProviderBaseURL string
	Model           string
	HTTPClient      *http.Client
}

// ResolveKind picks the backend for opts: an explicit Kind wins, then a server URL,
// then a credential (or a provider that needs none), and demo otherwise.
func ResolveKind(opts Options) Kind {
	if opts.Kind != "" {
		return opts.Kind
	}
	if opts.ServerURL != "" {
		return KindServer
	}
	if opts.Credential != "" || strings.EqualFold(opts.Provider, factory.ProviderOllama) {
		return KindDirect
	}
	return KindDemo
}

// NewClient returns the backend chosen by ResolveKind.
func NewClient(opts Options) (Client, error) {
	switch kind := ResolveKind(opts); kind {
	case KindServer:
		if opts.ServerURL == "" {
			return nil, fmt.Errorf("server backend requires a server url")
		}
		return NewServerBackend(opts.ServerURL, opts.Credential, opts.HTTPClient), nil
	case KindDirect:
		if opts.Credential == "" && !strings.EqualFold(opts.Provider, factory.ProviderOllama) {
			return nil, fmt.Errorf("direct backend requires a credential")
		}
		provider, err := factory.NewLLMProvider(opts.Provider, opts.Model, opts.ProviderBaseURL, opts.Credential, opts.HTTPClient)
		if err != nil {
			return nil, err
		}
		return NewDirectBackend(provider), nil
	case KindDemo:
		return DemoBackend{}, nil
	default:
		return nil, fmt.Errorf("unknown completion backend %q", kind)
	}
}
