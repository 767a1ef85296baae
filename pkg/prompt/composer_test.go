package prompt

import (
	"encoding/json"
	"strings"
	"testing"

	"concierge-be/pkg/source"

	"github.com/stretchr/testify/assert"
)

func TestCompose(t *testing.T) {
	web := source.Ingested{
		Kind:        source.KindWeb,
		URL:         "https://a.com/faq?x=1&y=2",
		Title:       `Q&A "FAQ"`,
		Description: "Answers",
		Text:        "Shipping takes two days.",
	}
	data := source.Ingested{
		Kind: source.KindJSON,
		URL:  "https://a.com/plans.json",
		Data: json.RawMessage(`{"plan":"pro","seats":[1,2]}`),
	}

	tests := []struct {
		name    string
		base    string
		strict  bool
		sources []source.Ingested
		want    string
	}{
		{
			name: "no sources is the trimmed base prompt",
			base: "  You help customers.\n",
			want: "You help customers.",
		},
		{
			name:   "strict without sources adds nothing",
			base:   "Base",
			strict: true,
			want:   "Base",
		},
		{
			name:    "web source",
			base:    "Base",
			sources: []source.Ingested{web},
			want: "Base\n\n" + DataInstruction +
				"\n\n<source type=\"web\" url=\"https://a.com/faq?x=1&amp;y=2\" title=\"Q&amp;A &#34;FAQ&#34;\" description=\"Answers\">\n" +
				"Shipping takes two days.\n</source>",
		},
		{
			name:    "strict json source",
			base:    "Base",
			strict:  true,
			sources: []source.Ingested{data},
			want: "Base\n\n" + DataInstruction + "\n\n" + StrictInstruction +
				"\n\n<source type=\"json\" url=\"https://a.com/plans.json\">\n" +
				"{\n  \"plan\": \"pro\",\n  \"seats\": [\n    1,\n    2\n  ]\n}\n</source>",
		},
		{
			name:    "empty base with sources",
			sources: []source.Ingested{{Kind: source.KindJSON, URL: "https://a.com/n.json"}},
			want:    DataInstruction + "\n\n<source type=\"json\" url=\"https://a.com/n.json\">\nnull\n</source>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compose(tt.base, tt.strict, tt.sources))
		})
	}
}

func TestCompose_IsDeterministic(t *testing.T) {
	sources := []source.Ingested{
		{Kind: source.KindWeb, URL: "https://a.com", Title: "A", Text: "one"},
		{Kind: source.KindJSON, URL: "https://a.com/b.json", Data: json.RawMessage(`{"z":1,"a":2}`)},
	}

	first := Compose("Base", true, sources)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Compose("Base", true, sources))
	}
	// Key order is kept as received.
	assert.Less(t, strings.Index(first, `"z"`), strings.Index(first, `"a"`))
}

func TestComposer_Persona(t *testing.T) {
	tests := []struct {
		name     string
		composer Composer
		want     string
	}{
		{
			name:     "no name keeps the base prompt",
			composer: Composer{SystemPrompt: "Base", Tone: "friendly"},
			want:     "Base",
		},
		{
			name:     "name and tone follow the base prompt",
			composer: Composer{AssistantName: "Ava", Tone: "friendly", SystemPrompt: "Base"},
			want:     "Base\n\nYour name is Ava. Respond in a friendly tone.",
		},
		{
			name:     "name without base prompt",
			composer: Composer{AssistantName: " Ava "},
			want:     "Your name is Ava.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.composer.Compose(nil))
		})
	}
}
