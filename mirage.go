// Package mirage defines the search result types produced by the completion
// engine and the envelope used to hand them to clients.
// Results are synthesized by a local language model; nothing here is fetched
// from the real web.
package mirage

// KnowledgePanel is the summary card shown next to the results for the
// searched subject.
type KnowledgePanel struct {
	// Name is the subject's display name.
	Name string `json:"name" jsonschema:"minLength=1,maxLength=100" jsonschema_description:"The name." toml:"name"`
	// Blurb is a short paragraph about the subject.
	Blurb string `json:"blurb" jsonschema:"minLength=1,maxLength=400" jsonschema_description:"A blurb." toml:"blurb"`
	// Metadata holds factoids keyed by proper-noun labels ("Born", "Capital").
	// Entry bounds are attached to the reflected schema by engine.Schema.
	Metadata map[string]string `json:"metadata" jsonschema_description:"Factoids about the subject, format keys as proper nouns, include about six points." toml:"metadata"`
}

// SearchResult is one synthetic search engine hit.
type SearchResult struct {
	Title   string `json:"title" jsonschema:"minLength=1,maxLength=100" jsonschema_description:"A website title, avoid repeating the subject." toml:"title"`
	Excerpt string `json:"excerpt" jsonschema:"minLength=1,maxLength=300" jsonschema_description:"An excerpt from the website." toml:"excerpt"`
}

// SearchResults is the complete, validated answer to a query.
type SearchResults struct {
	// KnowledgePanel is nil when the model decided the query has no subject.
	KnowledgePanel *KnowledgePanel `json:"knowledge_panel,omitempty" jsonschema:"nullable" jsonschema_description:"A knowledge panel/overview/info cards for the searched topic." toml:"knowledge_panel,omitempty"`
	// Results is ordered as returned by the model.
	Results []SearchResult `json:"results" jsonschema:"minItems=10,maxItems=20" jsonschema_description:"Search engine results." toml:"results"`
}

// Clone returns a deep copy of r. Mutating the copy never affects r.
func (r *SearchResults) Clone() *SearchResults {
	if r == nil {
		return nil
	}
	out := &SearchResults{}
	if r.Results != nil {
		out.Results = make([]SearchResult, len(r.Results))
		copy(out.Results, r.Results)
	}
	if p := r.KnowledgePanel; p != nil {
		panel := &KnowledgePanel{Name: p.Name, Blurb: p.Blurb}
		if p.Metadata != nil {
			panel.Metadata = make(map[string]string, len(p.Metadata))
			for k, v := range p.Metadata {
				panel.Metadata[k] = v
			}
		}
		out.KnowledgePanel = panel
	}
	return out
}

// SearchResponse is returned by the daemon for a successful search.
type SearchResponse struct {
	// Query is echoed back verbatim.
	Query string `json:"query"`
	// Result is the validated document.
	Result *SearchResults `json:"result"`
}

// ErrorResponse is returned by the daemon when a search cannot be served.
type ErrorResponse struct {
	Error *ErrorBody `json:"error"`
}

// ErrorBody describes a daemon-side error returned to the client.
type ErrorBody struct {
	// Code is a machine-readable error identifier (e.g. "schema_violation").
	Code string `json:"code" toml:"code"`
	// Message is a human-readable error description.
	Message string `json:"message" toml:"message"`
}
