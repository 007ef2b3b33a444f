package engine

import (
	"github.com/invopop/jsonschema"

	mirage "github.com/Paranoid-AF/mirage"
)

// schemaDraft is the JSON Schema dialect the completion service and the
// validator both understand.
const schemaDraft = "http://json-schema.org/draft-07/schema#"

// Bounds on the knowledge panel's metadata map. Struct tags cannot express
// object cardinality, so these are attached after reflection.
const (
	metadataMinEntries = 1
	metadataMaxEntries = 100
)

// Schema describes mirage.SearchResults, including every length and
// cardinality bound. All definitions are inlined so the document is
// self-contained. It is cheap to build and rebuilt for every request.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		Anonymous:                 true,
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}
	s := r.Reflect(&mirage.SearchResults{})
	s.Version = schemaDraft

	if panel := panelSchema(s); panel != nil && panel.Properties != nil {
		if metadata, ok := panel.Properties.Get("metadata"); ok {
			lo, hi := uint64(metadataMinEntries), uint64(metadataMaxEntries)
			metadata.MinProperties = &lo
			metadata.MaxProperties = &hi
		}
	}
	return s
}

// panelSchema returns the object branch of the nullable knowledge_panel
// property.
func panelSchema(s *jsonschema.Schema) *jsonschema.Schema {
	if s.Properties == nil {
		return nil
	}
	prop, ok := s.Properties.Get("knowledge_panel")
	if !ok || prop == nil {
		return nil
	}
	if prop.Properties != nil {
		return prop
	}
	for _, branch := range prop.OneOf {
		if branch != nil && branch.Properties != nil {
			return branch
		}
	}
	return nil
}
