package source

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind tags the two supported knowledge source variants.
type Kind string

const (
	KindWeb  Kind = "web"
	KindJSON Kind = "json"
)

func (k Kind) Valid() bool {
	return k == KindWeb || k == KindJSON
}

// Spec is one configured knowledge source. Paths is only meaningful for web sources:
// each entry is resolved against URL and ingested as its own page.
type Spec struct {
	Kind  Kind     `json:"type" yaml:"type"`
	URL   string   `json:"url" yaml:"url"`
	Paths []string `json:"paths,omitempty" yaml:"paths,omitempty"`
}

func Web(url string, paths ...string) Spec {
	return Spec{Kind: KindWeb, URL: url, Paths: paths}
}

func JSON(url string) Spec {
	return Spec{Kind: KindJSON, URL: url}
}

func (s *Spec) UnmarshalJSON(data []byte) error {
	type rawSpec Spec
	var raw rawSpec
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	raw.Kind = Kind(strings.ToLower(string(raw.Kind)))
	if !raw.Kind.Valid() {
		return fmt.Errorf("unknown source type %q", raw.Kind)
	}
	*s = Spec(raw)
	return nil
}

// Ingested is the normalized result of loading one Spec (or one of its paths).
// Web sources fill Title, Description and Text; JSON sources fill Data with the
// response body exactly as received.
type Ingested struct {
	Kind        Kind            `json:"kind"`
	URL         string          `json:"url"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	Text        string          `json:"text,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// Page is a snapshot of the document currently hosting the widget. Web sources that
// point at this page are read from the snapshot instead of being fetched.
type Page struct {
	URL         string `json:"url" validate:"omitempty,url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Text        string `json:"text"`
}

// collapseNewlines replaces every newline with a single space and trims the result.
func collapseNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(s)
}
