package concierge

import (
	"os"
	"path/filepath"
	"testing"

	"concierge-be/pkg/completion"
	"concierge-be/pkg/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Merge(t *testing.T) {
	t.Run("empty config takes every default", func(t *testing.T) {
		got := Config{}.Merge()
		d := DefaultConfig()

		assert.Equal(t, "friendly", got.Tone)
		assert.Empty(t, got.Name)
		assert.NotNil(t, got.Sources)
		assert.NotNil(t, got.Categories)
		assert.Equal(t, d.Avatar, got.Avatar)
		assert.True(t, got.IsFullScreen())
		assert.Equal(t, d.Colors, got.Colors)
	})

	t.Run("caller fields win", func(t *testing.T) {
		off := false
		got := Config{
			Name:       "Ava",
			Tone:       "formal",
			FullScreen: &off,
			Colors:     ColorConfig{ChatBg: "#fff"},
		}.Merge()

		assert.Equal(t, "Ava", got.Name)
		assert.Equal(t, "formal", got.Tone)
		assert.False(t, got.IsFullScreen())
		assert.Equal(t, "#fff", got.Colors.ChatBg)
		assert.Equal(t, "#2563eb", got.Colors.ButtonBg)
	})

	t.Run("slices are copied", func(t *testing.T) {
		sources := []source.Spec{source.Web("https://a.com")}
		got := Config{Sources: sources}.Merge()

		sources[0].URL = "https://changed.com"
		assert.Equal(t, "https://a.com", got.Sources[0].URL)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"empty", Config{}, false},
		{"web with paths", Config{Sources: []source.Spec{source.Web("https://a.com", "/faq")}}, false},
		{"relative json", Config{Sources: []source.Spec{source.JSON("data.json")}}, false},
		{"unknown kind", Config{Sources: []source.Spec{{Kind: "rss", URL: "https://a.com"}}}, true},
		{"missing url", Config{Sources: []source.Spec{{Kind: source.KindWeb}}}, true},
		{"json with paths", Config{Sources: []source.Spec{{Kind: source.KindJSON, URL: "https://a.com", Paths: []string{"x"}}}}, true},
		{"known backend", Config{Backend: completion.KindDemo}, false},
		{"unknown backend", Config{Backend: "fax"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_AvatarHTML(t *testing.T) {
	tests := []struct {
		name   string
		avatar string
		want   string
	}{
		{"default", "", defaultAvatar},
		{"inline svg", `<svg viewBox="0 0 1 1"></svg>`, `<svg viewBox="0 0 1 1"></svg>`},
		{"image url", "https://a.com/bot.png", `<img src="https://a.com/bot.png" alt="Avatar" style="width: 20px; height: 20px;">`},
		{"url is escaped", `x.png" onerror="alert(1)`, `<img src="x.png&#34; onerror=&#34;alert(1)" alt="Avatar" style="width: 20px; height: 20px;">`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Config{Avatar: tt.avatar}.AvatarHTML())
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "widget.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
name: Ava
systemPrompt: You help customers of Acme.
strict: true
sources:
  - type: web
    url: https://acme.example
    paths: [/faq, pricing]
  - type: json
    url: https://acme.example/plans.json
categories: [billing]
color:
  chatBg: "#000000"
`), 0o644))

	jsonPath := filepath.Join(dir, "widget.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
  "name": "Ava",
  "systemPrompt": "You help customers of Acme.",
  "strict": true,
  "sources": [
    {"type": "web", "url": "https://acme.example", "paths": ["/faq", "pricing"]},
    {"type": "json", "url": "https://acme.example/plans.json"}
  ],
  "categories": ["billing"],
  "color": {"chatBg": "#000000"}
}`), 0o644))

	want := Config{
		Name:         "Ava",
		SystemPrompt: "You help customers of Acme.",
		Strict:       true,
		Sources: []source.Spec{
			source.Web("https://acme.example", "/faq", "pricing"),
			source.JSON("https://acme.example/plans.json"),
		},
		Categories: []string{"billing"},
		Colors:     ColorConfig{ChatBg: "#000000"},
	}

	for _, path := range []string{yamlPath, jsonPath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			got, err := LoadConfigFile(path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	t.Run("invalid source", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("sources:\n  - type: web\n"), 0o644))
		_, err := LoadConfigFile(bad)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfigFile(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})
}
