package concierge

import (
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"concierge-be/pkg/completion"
	"concierge-be/pkg/source"

	"gopkg.in/yaml.v3"
)

const defaultAvatar = `<svg width="28" height="28" viewBox="0 0 24 24" fill="none" xmlns="http://www.w3.org/2000/svg"><circle cx="12" cy="12" r="11" fill="white"/></svg>`

// ColorConfig is the widget palette. The core never reads it; hosts do.
type ColorConfig struct {
	ChatBg   string `json:"chatBg,omitempty" yaml:"chatBg,omitempty"`
	UserBg   string `json:"userBg,omitempty" yaml:"userBg,omitempty"`
	Text     string `json:"text,omitempty" yaml:"text,omitempty"`
	InputBg  string `json:"inputBg,omitempty" yaml:"inputBg,omitempty"`
	ButtonBg string `json:"buttonBg,omitempty" yaml:"buttonBg,omitempty"`
}

// Config is fixed once a Widget is built.
type Config struct {
	Name         string          `json:"name" yaml:"name"`
	SystemPrompt string          `json:"systemPrompt" yaml:"systemPrompt"`
	Strict       bool            `json:"strict" yaml:"strict"`
	Tone         string          `json:"tone,omitempty" yaml:"tone,omitempty"`
	Sources      []source.Spec   `json:"sources" yaml:"sources"`
	Categories   []string        `json:"categories" yaml:"categories"`
	Backend      completion.Kind `json:"backend,omitempty" yaml:"backend,omitempty"`
	Provider     string          `json:"provider,omitempty" yaml:"provider,omitempty"`
	ProviderURL  string          `json:"providerUrl,omitempty" yaml:"providerUrl,omitempty"`
	Model        string          `json:"model,omitempty" yaml:"model,omitempty"`
	Credential   string          `json:"credential,omitempty" yaml:"credential,omitempty"`
	Avatar       string          `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	FullScreen   *bool           `json:"isFullScreen,omitempty" yaml:"isFullScreen,omitempty"`
	Colors       ColorConfig     `json:"color" yaml:"color"`
}

// DefaultConfig holds the documented defaults callers' fields are merged over.
func DefaultConfig() Config {
	fullScreen := true
	return Config{
		Tone:       "friendly",
		Sources:    []source.Spec{},
		Categories: []string{},
		Avatar:     defaultAvatar,
		FullScreen: &fullScreen,
		Colors: ColorConfig{
			ChatBg:   "#011B33",
			UserBg:   "#2563eb",
			Text:     "#f3f4f6",
			InputBg:  "#1f2937",
			ButtonBg: "#2563eb",
		},
	}
}

// Merge returns c with every zero-valued field taken from DefaultConfig.
func (c Config) Merge() Config {
	d := DefaultConfig()
	out := c

	if out.Tone == "" {
		out.Tone = d.Tone
	}
	if out.Sources == nil {
		out.Sources = d.Sources
	}
	if out.Categories == nil {
		out.Categories = d.Categories
	}
	if strings.TrimSpace(out.Avatar) == "" {
		out.Avatar = d.Avatar
	}
	if out.FullScreen == nil {
		out.FullScreen = d.FullScreen
	}
	out.Colors = mergeColors(out.Colors, d.Colors)

	// Slices are copied so later edits by the caller cannot reach the widget.
	out.Sources = append([]source.Spec(nil), out.Sources...)
	out.Categories = append([]string(nil), out.Categories...)
	return out
}

func mergeColors(c, d ColorConfig) ColorConfig {
	pick := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}
	return ColorConfig{
		ChatBg:   pick(c.ChatBg, d.ChatBg),
		UserBg:   pick(c.UserBg, d.UserBg),
		Text:     pick(c.Text, d.Text),
		InputBg:  pick(c.InputBg, d.InputBg),
		ButtonBg: pick(c.ButtonBg, d.ButtonBg),
	}
}

// Validate checks the fields the core interprets.
func (c Config) Validate() error {
	for i, spec := range c.Sources {
		if !spec.Kind.Valid() {
			return fmt.Errorf("source %d: unknown type %q", i, spec.Kind)
		}
		if strings.TrimSpace(spec.URL) == "" {
			return fmt.Errorf("source %d: url is required", i)
		}
		if spec.Kind == source.KindJSON && len(spec.Paths) > 0 {
			return fmt.Errorf("source %d: paths are only supported for web sources", i)
		}
	}
	switch c.Backend {
	case "", completion.KindServer, completion.KindDirect, completion.KindDemo:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

// IsFullScreen reports the merged full-screen flag.
func (c Config) IsFullScreen() bool {
	return c.FullScreen == nil || *c.FullScreen
}

// AvatarHTML returns the avatar as markup: inline SVG is kept, anything else is
// treated as an image URL.
func (c Config) AvatarHTML() string {
	avatar := strings.TrimSpace(c.Avatar)
	if avatar == "" {
		avatar = defaultAvatar
	}
	if strings.HasPrefix(avatar, "<svg") {
		return avatar
	}
	return fmt.Sprintf(`<img src="%s" alt="Avatar" style="width: 20px; height: 20px;">`, html.EscapeString(avatar))
}

// LoadConfigFile reads a widget config from YAML or JSON (chosen by extension).
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
