package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"concierge-be/internal/pkg/logger"
)

const module = "SourceIngestor"

// Cache stores successfully ingested sources by resolved URL.
type Cache interface {
	Get(ctx context.Context, url string) (Ingested, bool)
	Set(ctx context.Context, item Ingested)
}

type Option func(*Ingestor)

// WithHTTPClient replaces the default client. A nil client is ignored.
func WithHTTPClient(client *http.Client) Option {
	return func(in *Ingestor) {
		if client != nil {
			in.client = client
		}
	}
}

// WithPage tells the ingestor which document hosts the widget.
func WithPage(page *Page) Option {
	return func(in *Ingestor) {
		in.page = page
	}
}

func WithCache(cache Cache) Option {
	return func(in *Ingestor) {
		in.cache = cache
	}
}

func WithLogger(log logger.ILogger) Option {
	return func(in *Ingestor) {
		in.logger = log
	}
}

// Ingestor loads configured sources into Ingested records.
type Ingestor struct {
	client *http.Client
	page   *Page
	cache  Cache
	logger logger.ILogger
}

func NewIngestor(opts ...Option) *Ingestor {
	in := &Ingestor{
		client: &http.Client{},
		logger: logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(in)
	}
	if in.logger == nil {
		in.logger = logger.NewNopLogger()
	}
	return in
}

// Ingest loads specs one after another in declared order. A source that fails is
// logged and left out; it never stops the remaining sources from loading.
func (in *Ingestor) Ingest(ctx context.Context, specs []Spec) []Ingested {
	results := make([]Ingested, 0, len(specs))

	for i, spec := range specs {
		switch spec.Kind {
		case KindWeb:
			if len(spec.Paths) == 0 {
				if item, err := in.loadWeb(ctx, spec.URL); err == nil {
					results = append(results, item)
				} else {
					in.skip(i, spec.URL, err)
				}
				continue
			}
			for _, p := range spec.Paths {
				resolved := JoinPath(spec.URL, p)
				if item, err := in.loadWeb(ctx, resolved); err == nil {
					results = append(results, item)
				} else {
					in.skip(i, resolved, err)
				}
			}
		case KindJSON:
			if item, err := in.loadJSON(ctx, spec.URL); err == nil {
				results = append(results, item)
			} else {
				in.skip(i, spec.URL, err)
			}
		default:
			in.skip(i, spec.URL, fmt.Errorf("unknown source type %q", spec.Kind))
		}
	}

	in.logger.Info(module, "Ingestion finished", map[string]interface{}{
		"declared": len(specs),
		"ingested": len(results),
	})
	return results
}

func (in *Ingestor) skip(index int, rawURL string, err error) {
	in.logger.Warn(module, "Skipping source", map[string]interface{}{
		"index": index,
		"url":   rawURL,
		"error": err.Error(),
	})
}

func (in *Ingestor) loadWeb(ctx context.Context, rawURL string) (Ingested, error) {
	resolved, err := in.resolve(rawURL)
	if err != nil {
		return Ingested{}, err
	}

	if in.page != nil && SamePage(resolved, in.page.URL) {
		in.logger.Debug(module, "Reading source from current page", map[string]interface{}{"url": resolved})
		return Ingested{
			Kind:        KindWeb,
			URL:         resolved,
			Title:       in.page.Title,
			Description: in.page.Description,
			Text:        collapseNewlines(in.page.Text),
		}, nil
	}

	if item, ok := in.cached(ctx, resolved, KindWeb); ok {
		return item, nil
	}

	body, err := in.get(ctx, resolved)
	if err != nil {
		return Ingested{}, err
	}

	doc, err := parseDocument(bytes.NewReader(body))
	if err != nil {
		return Ingested{}, fmt.Errorf("parse html: %w", err)
	}

	item := Ingested{
		Kind:        KindWeb,
		URL:         resolved,
		Title:       doc.title,
		Description: doc.description,
		Text:        doc.text,
	}
	in.store(ctx, item)
	return item, nil
}

func (in *Ingestor) loadJSON(ctx context.Context, rawURL string) (Ingested, error) {
	resolved, err := in.resolve(rawURL)
	if err != nil {
		return Ingested{}, err
	}

	if item, ok := in.cached(ctx, resolved, KindJSON); ok {
		return item, nil
	}

	body, err := in.get(ctx, resolved)
	if err != nil {
		return Ingested{}, err
	}

	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return Ingested{}, fmt.Errorf("parse json: invalid document")
	}

	item := Ingested{
		Kind: KindJSON,
		URL:  resolved,
		Data: json.RawMessage(trimmed),
	}
	in.store(ctx, item)
	return item, nil
}

func (in *Ingestor) cached(ctx context.Context, resolved string, kind Kind) (Ingested, bool) {
	if in.cache == nil {
		return Ingested{}, false
	}
	item, ok := in.cache.Get(ctx, resolved)
	if !ok || item.Kind != kind {
		return Ingested{}, false
	}
	return item, true
}

func (in *Ingestor) store(ctx context.Context, item Ingested) {
	if in.cache != nil {
		in.cache.Set(ctx, item)
	}
}

func (in *Ingestor) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := in.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return body, nil
}

// resolve makes rawURL absolute, using the current page as base for relative URLs.
func (in *Ingestor) resolve(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	if in.page == nil || in.page.URL == "" {
		return "", fmt.Errorf("relative url %q without a current page", rawURL)
	}
	base, err := url.Parse(in.page.URL)
	if err != nil {
		return "", fmt.Errorf("parse page url: %w", err)
	}
	return base.ResolveReference(u).String(), nil
}

// JoinPath joins base and p with exactly one slash.
func JoinPath(base, p string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(p, "/")
}

// SamePage reports whether a and b address the same document: scheme, host, path
// (trailing slash ignored) and query must match; fragments are ignored.
func SamePage(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return strings.EqualFold(ua.Scheme, ub.Scheme) &&
		strings.EqualFold(ua.Host, ub.Host) &&
		strings.TrimRight(ua.EscapedPath(), "/") == strings.TrimRight(ub.EscapedPath(), "/") &&
		ua.RawQuery == ub.RawQuery
}
