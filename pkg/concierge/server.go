package concierge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ProbePath answers whether a base URL hosts a completion server.
const ProbePath = "/is-concierge-server"

type ProbeResponse struct {
	IsConciergeServer bool `json:"isConciergeServer"`
}

// Builder creates widgets bound to a server that passed ValidateServer.
type Builder struct {
	serverURL string
	opts      []Option
}

// ValidateServer probes serverURL once. Only a server answering the probe with
// isConciergeServer=true yields a Builder; opts apply to every widget it builds.
func ValidateServer(ctx context.Context, serverURL string, opts ...Option) (*Builder, error) {
	serverURL = strings.TrimRight(strings.TrimSpace(serverURL), "/")

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	client := o.httpClient
	if client == nil {
		client = &http.Client{}
	}

	if err := probe(ctx, client, serverURL); err != nil {
		return nil, fmt.Errorf("failed to validate concierge server: %w", err)
	}
	return &Builder{serverURL: serverURL, opts: opts}, nil
}

func probe(ctx context.Context, client *http.Client, serverURL string) error {
	if serverURL == "" {
		return fmt.Errorf("server url is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serverURL+ProbePath, nil)
	if err != nil {
		return fmt.Errorf("create probe request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("probe returned status %d", resp.StatusCode)
	}

	var res ProbeResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return fmt.Errorf("decode probe response: %w", err)
	}
	if !res.IsConciergeServer {
		return fmt.Errorf("%s is not a concierge server", serverURL)
	}
	return nil
}

func (b *Builder) ServerURL() string {
	return b.serverURL
}

// New builds a widget whose turns go to the validated server. Options given
// here are applied after the builder's own.
func (b *Builder) New(ctx context.Context, cfg Config, host Host, opts ...Option) (*Widget, error) {
	all := append(append([]Option(nil), b.opts...), opts...)
	return build(ctx, cfg, host, b.serverURL, all)
}
