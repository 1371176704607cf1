package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Compile turns a schema document into a compiled JSON Schema, defaulting
// to Draft 2020-12 when the document does not name a dialect. The name is
// only used as the resource URL in error output.
func Compile(name string, doc Value) (*jsonschema.Schema, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema %s: %w", name, err)
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := name + ".schema.json"
	if err := c.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to register schema %s: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}
	return compiled, nil
}

// Validate checks an instance against a compiled schema and returns one
// message per leaf failure, or nil when the instance conforms.
func Validate(s *jsonschema.Schema, instance Value) []string {
	err := s.Validate(instance.Raw())
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if errors.As(err, &ve) {
		return leafMessages(ve)
	}
	return []string{err.Error()}
}

// leafMessages walks the cause tree and keeps the most specific failures;
// interior nodes just restate their children.
func leafMessages(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{fmt.Sprintf("%s: %s", loc, ve.Message)}
	}
	var msgs []string
	for _, cause := range ve.Causes {
		msgs = append(msgs, leafMessages(cause)...)
	}
	return msgs
}
