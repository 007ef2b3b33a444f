package engine

import (
	"encoding/json"
	"testing"
)

// schemaMap returns the generated schema as plain JSON values.
func schemaMap(t *testing.T) map[string]any {
	t.Helper()
	data, err := json.Marshal(Schema())
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	return m
}

// lookup walks nested objects by key.
func lookup(t *testing.T, m map[string]any, keys ...string) any {
	t.Helper()
	var cur any = m
	for _, k := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			t.Fatalf("expected object at %q, got %T", k, cur)
		}
		cur, ok = obj[k]
		if !ok {
			t.Fatalf("missing key %q", k)
		}
	}
	return cur
}

// panelObject returns the object branch of the nullable knowledge_panel.
func panelObject(t *testing.T, m map[string]any) map[string]any {
	t.Helper()
	prop := lookup(t, m, "properties", "knowledge_panel").(map[string]any)
	if _, ok := prop["properties"]; ok {
		return prop
	}
	branches, ok := prop["oneOf"].([]any)
	if !ok {
		t.Fatalf("expected knowledge_panel to be nullable, got %v", prop)
	}
	for _, b := range branches {
		if obj, ok := b.(map[string]any); ok {
			if _, ok := obj["properties"]; ok {
				return obj
			}
		}
	}
	t.Fatalf("no object branch in knowledge_panel: %v", prop)
	return nil
}

func assertNumber(t *testing.T, got any, want float64) {
	t.Helper()
	n, ok := got.(float64)
	if !ok {
		t.Fatalf("expected number %v, got %T %v", want, got, got)
	}
	if n != want {
		t.Errorf("expected %v, got %v", want, n)
	}
}

func TestSchemaDraft(t *testing.T) {
	m := schemaMap(t)
	if m["$schema"] != schemaDraft {
		t.Errorf("expected $schema %q, got %v", schemaDraft, m["$schema"])
	}
	if m["type"] != "object" {
		t.Errorf("expected root type object, got %v", m["type"])
	}
	if _, ok := m["$ref"]; ok {
		t.Error("expected inlined schema without $ref")
	}
}

func TestSchemaResultsBounds(t *testing.T) {
	m := schemaMap(t)
	results := lookup(t, m, "properties", "results").(map[string]any)
	if results["type"] != "array" {
		t.Errorf("expected results to be an array, got %v", results["type"])
	}
	assertNumber(t, results["minItems"], 10)
	assertNumber(t, results["maxItems"], 20)

	title := lookup(t, results, "items", "properties", "title").(map[string]any)
	assertNumber(t, title["minLength"], 1)
	assertNumber(t, title["maxLength"], 100)

	excerpt := lookup(t, results, "items", "properties", "excerpt").(map[string]any)
	assertNumber(t, excerpt["minLength"], 1)
	assertNumber(t, excerpt["maxLength"], 300)
}

func TestSchemaKnowledgePanelBounds(t *testing.T) {
	panel := panelObject(t, schemaMap(t))

	name := lookup(t, panel, "properties", "name").(map[string]any)
	assertNumber(t, name["maxLength"], 100)

	blurb := lookup(t, panel, "properties", "blurb").(map[string]any)
	assertNumber(t, blurb["minLength"], 1)
	assertNumber(t, blurb["maxLength"], 400)

	metadata := lookup(t, panel, "properties", "metadata").(map[string]any)
	assertNumber(t, metadata["minProperties"], 1)
	assertNumber(t, metadata["maxProperties"], 100)
}

func TestSchemaRequiredFields(t *testing.T) {
	m := schemaMap(t)
	required, _ := m["required"].([]any)
	var hasResults, hasPanel bool
	for _, r := range required {
		switch r {
		case "results":
			hasResults = true
		case "knowledge_panel":
			hasPanel = true
		}
	}
	if !hasResults {
		t.Error("expected results to be required")
	}
	if hasPanel {
		t.Error("expected knowledge_panel to be optional")
	}
}

func TestSchemaDescriptionsGuideModel(t *testing.T) {
	panel := panelObject(t, schemaMap(t))
	metadata := lookup(t, panel, "properties", "metadata").(map[string]any)
	assertContains(t, metadata["description"].(string), "proper nouns")
}

func TestSchemaDeterministic(t *testing.T) {
	a, err := json.Marshal(Schema())
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(Schema())
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Errorf("expected identical schemas, got\n%s\n%s", a, b)
	}
}
