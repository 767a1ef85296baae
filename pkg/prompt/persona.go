package prompt

import (
	"fmt"
	"strings"

	"concierge-be/pkg/source"
)

// Composer carries the static configuration that shapes every system prompt.
type Composer struct {
	AssistantName string
	Tone          string
	SystemPrompt  string
	Strict        bool
}

// Compose adds the persona line to the base prompt (when a name is configured)
// and delegates to the package-level Compose.
func (c Composer) Compose(sources []source.Ingested) string {
	return Compose(c.base(), c.Strict, sources)
}

func (c Composer) base() string {
	name := strings.TrimSpace(c.AssistantName)
	if name == "" {
		return c.SystemPrompt
	}

	persona := fmt.Sprintf("Your name is %s.", name)
	if tone := strings.TrimSpace(c.Tone); tone != "" {
		persona += fmt.Sprintf(" Respond in a %s tone.", tone)
	}

	if strings.TrimSpace(c.SystemPrompt) == "" {
		return persona
	}
	return c.SystemPrompt + "\n\n" + persona
}
