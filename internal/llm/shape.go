package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Shape is a compiled JSON Schema describing the structured output a caller
// expects from the reasoning service.
type Shape struct {
	Name   string
	schema *jsonschema.Schema
}

// MustShape compiles a JSON Schema source or panics. Shapes are package-level
// values compiled once at startup.
func MustShape(name, src string) *Shape {
	shape, err := NewShape(name, src)
	if err != nil {
		panic(err)
	}
	return shape
}

// NewShape compiles a JSON Schema source into a Shape.
func NewShape(name, src string) (*Shape, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := fmt.Sprintf("https://contractreview.schemas.local/%s.schema.json", name)
	if err := c.AddResource(url, strings.NewReader(src)); err != nil {
		return nil, fmt.Errorf("shape %s: load schema: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("shape %s: compile schema: %w", name, err)
	}
	return &Shape{Name: name, schema: compiled}, nil
}

// Validate checks raw against the shape. Violations come back as a
// MalformedResponseError.
func (s *Shape) Validate(raw json.RawMessage) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &MalformedResponseError{Reason: "response is not valid JSON", Raw: string(raw), Err: err}
	}
	if err := s.schema.Validate(doc); err != nil {
		return &MalformedResponseError{Reason: fmt.Sprintf("response does not match shape %s", s.Name), Raw: string(raw), Err: err}
	}
	return nil
}
