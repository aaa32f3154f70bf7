package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is the JSON shape a structured reply must have.
type Schema struct {
	// Name is sent as the vendor's schema or tool name, e.g. "coach-message".
	Name        string
	Description string
	// Definition is a JSON Schema document.
	Definition map[string]any

	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// Validate checks raw against the schema. Failures are KindInvalidResponse.
func (s *Schema) Validate(raw json.RawMessage) error {
	if s == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return invalid(raw, "empty reply for %s", s.Name)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return invalid(raw, "reply for %s is not JSON: %w", s.Name, err)
	}
	compiled, err := s.compile()
	if err != nil {
		return invalid(raw, "compile schema %s: %w", s.Name, err)
	}
	if err := compiled.Validate(doc); err != nil {
		return invalid(raw, "reply does not match %s: %w", s.Name, err)
	}
	return nil
}

// Decode validates raw and unmarshals it into out.
func (s *Schema) Decode(raw json.RawMessage, out any) error {
	if err := s.Validate(raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return invalid(raw, "decode %s: %w", s.Name, err)
	}
	return nil
}

func (s *Schema) compile() (*jsonschema.Schema, error) {
	s.once.Do(func() {
		// Round-trip so Go literals ([]string, int) become the JSON values
		// the compiler expects.
		b, err := json.Marshal(s.Definition)
		if err != nil {
			s.err = err
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
		if err != nil {
			s.err = err
			return
		}
		url := "mem://voxtutor/" + s.Name + ".json"
		c := jsonschema.NewCompiler()
		if err := c.AddResource(url, doc); err != nil {
			s.err = err
			return
		}
		s.compiled, s.err = c.Compile(url)
	})
	return s.compiled, s.err
}

// Example builds a value that satisfies simple schemas: the first enum or
// const, typed zero values, one array item and every declared property.
// The mock provider uses it to answer structured requests offline.
func (s *Schema) Example() json.RawMessage {
	if s == nil {
		return json.RawMessage(`null`)
	}
	b, err := json.Marshal(exampleValue("", s.Definition))
	if err != nil {
		return json.RawMessage(`null`)
	}
	return b
}

func exampleValue(name string, def map[string]any) any {
	if c, ok := def["const"]; ok {
		return c
	}
	if enum, ok := def["enum"].([]any); ok && len(enum) > 0 {
		return enum[0]
	}
	switch def["type"] {
	case "object":
		props, _ := def["properties"].(map[string]any)
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any, len(keys))
		for _, k := range keys {
			if sub, ok := props[k].(map[string]any); ok {
				out[k] = exampleValue(k, sub)
			}
		}
		return out
	case "array":
		items, _ := def["items"].(map[string]any)
		return []any{exampleValue(name, items)}
	case "integer", "number":
		if m, ok := def["minimum"]; ok {
			return m
		}
		return 0
	case "boolean":
		return false
	case "string":
		if name == "" {
			return "example"
		}
		return fmt.Sprintf("mock %s", name)
	}
	return nil
}
