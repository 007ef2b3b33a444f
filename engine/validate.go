package engine

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"

	mirage "github.com/Paranoid-AF/mirage"
)

// decodeResults parses content as JSON, checks it against schema and decodes
// it into SearchResults. Every violation is listed in the error message;
// nothing is truncated or padded to fit.
func decodeResults(content string, schema *jsonschema.Schema) (*mirage.SearchResults, error) {
	var doc any
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, mirage.WrapError(mirage.ESCHEMA, err, "completion content is not valid JSON")
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, mirage.WrapError(mirage.EINTERNAL, err, "schema validation")
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, mirage.Errorf(mirage.ESCHEMA, "result does not match schema: %s", strings.Join(errs, "; "))
	}

	var out mirage.SearchResults
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, mirage.WrapError(mirage.ESCHEMA, err, "decode search results")
	}
	return &out, nil
}

// prettyJSON indents s for diagnostic logging, returning s unchanged if it
// is not valid JSON.
func prettyJSON(s string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(s), "", "  "); err != nil {
		return s
	}
	return buf.String()
}
