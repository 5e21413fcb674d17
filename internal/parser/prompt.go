package parser

import (
	"fmt"
	"strings"

	"extractos/internal/schema"
)

const (
	// userPromptPrefix wraps caller-supplied prompts. User text is appended
	// verbatim and never truncated.
	userPromptPrefix = "Extract the following information from the image and return it in JSON format: "

	schemaPromptTemplate = `Extract the following information from the image and return it in JSON format:

%s

Return the data in valid JSON format matching the requested schema.
`

	genericPrompt = `Extract all relevant information from this image and return it in a structured JSON format.
Make sure to include any key details given in the prompt.
Return your response as valid JSON.`

	// maxPromptLen caps generated prompts only, counted in runes; over-long
	// ones are cut to maxPromptLen-3 characters with an ellipsis marker.
	maxPromptLen = 4000
)

// BuildPrompt synthesizes the instruction text for one page image. A supplied
// user prompt wins over the schema-derived prompt, which wins over the generic
// fallback.
func BuildPrompt(userPrompt string, compiled *schema.Compiled) string {
	if userPrompt != "" {
		return userPromptPrefix + userPrompt
	}

	var text string
	if compiled != nil && len(compiled.Fields) > 0 {
		var bullets []string
		for _, f := range compiled.Fields {
			desc := f.Description
			if desc == "" {
				desc = f.Name
			}
			bullets = append(bullets, fmt.Sprintf("- %s: %s", f.Name, desc))
		}
		text = fmt.Sprintf(schemaPromptTemplate, strings.Join(bullets, "\n"))
	} else {
		text = genericPrompt
	}

	if runes := []rune(text); len(runes) > maxPromptLen {
		text = string(runes[:maxPromptLen-3]) + "..."
	}
	return text
}
