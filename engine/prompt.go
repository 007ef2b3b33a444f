package engine

import (
	"encoding/json"
	"strings"
	"text/template"

	"github.com/invopop/jsonschema"

	mirage "github.com/Paranoid-AF/mirage"
	defaults "github.com/Paranoid-AF/mirage/default"
)

// CompletionRequest is the body POSTed to the completion service.
type CompletionRequest struct {
	Prompt     string             `json:"prompt"`
	JSONSchema *jsonschema.Schema `json:"json_schema"`
	Seed       int64              `json:"seed"`
}

// PromptData holds the data passed to the prompt template.
type PromptData struct {
	// Schema is the compact JSON encoding of the output schema.
	Schema string
	// Query is the user's query, verbatim.
	Query string
}

// BuildRequest renders the prompt for query and packages it with schema and
// the engine's seed.
func (e *Engine) BuildRequest(query string, schema *jsonschema.Schema) (*CompletionRequest, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, mirage.WrapError(mirage.EINTERNAL, err, "encode schema")
	}

	return &CompletionRequest{
		Prompt:     e.buildPrompt(PromptData{Schema: string(encoded), Query: query}),
		JSONSchema: schema,
		Seed:       e.seed,
	}, nil
}

// buildPrompt renders the prompt template. A custom template that fails to
// parse or execute is replaced by the built-in one.
func (e *Engine) buildPrompt(data PromptData) string {
	tmplSrc := e.customPrompt
	if tmplSrc == "" {
		tmplSrc = defaults.SearchPrompt
	}

	t, err := template.New("prompt").Parse(tmplSrc)
	if err != nil {
		e.logger.Warn("failed to parse prompt template, falling back to default", "error", err)
		t = template.Must(template.New("prompt").Parse(defaults.SearchPrompt))
	}

	var buf strings.Builder
	if err := t.Execute(&buf, data); err != nil {
		e.logger.Warn("failed to execute prompt template, falling back to default", "error", err)
		t = template.Must(template.New("prompt").Parse(defaults.SearchPrompt))
		buf.Reset()
		if err := t.Execute(&buf, data); err != nil {
			e.logger.Error("failed to execute default prompt template", "error", err)
		}
	}

	return strings.TrimRight(buf.String(), " \t\n")
}
