package formdef

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaResource = "formdef.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// Problem is one schema violation.
type Problem struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (p Problem) String() string {
	if p.Path != "" {
		return fmt.Sprintf("%s: %s", p.Path, p.Message)
	}
	return p.Message
}

// ValidationError lists every schema violation of one file.
type ValidationError struct {
	Source   string
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for idx, problem := range e.Problems {
		parts[idx] = problem.String()
	}
	return fmt.Sprintf("formdef: %s does not match the definition schema: %s", e.Source, strings.Join(parts, "; "))
}

// JSONSchema returns the JSON Schema definition files are validated against.
func JSONSchema() ([]byte, error) {
	r := &invopop.Reflector{Anonymous: true}
	return json.MarshalIndent(r.Reflect(&Document{}), "", "  ")
}

func documentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		raw, err := JSONSchema()
		if err != nil {
			schemaErr = fmt.Errorf("formdef: reflect schema: %w", err)
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			schemaErr = fmt.Errorf("formdef: parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaResource, doc); err != nil {
			schemaErr = fmt.Errorf("formdef: add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaResource)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("formdef: compile schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

func validate(instance any, source string) error {
	schema, err := documentSchema()
	if err != nil {
		return err
	}
	err = schema.Validate(instance)
	if err == nil {
		return nil
	}
	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return fmt.Errorf("formdef: validate %s: %w", source, err)
	}
	return &ValidationError{Source: source, Problems: collectProblems(validationErr)}
}

func collectProblems(ve *jsonschema.ValidationError) []Problem {
	if len(ve.Causes) == 0 {
		path := ""
		if len(ve.InstanceLocation) > 0 {
			path = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		return []Problem{{Path: path, Message: ve.Error()}}
	}
	var out []Problem
	for _, cause := range ve.Causes {
		out = append(out, collectProblems(cause)...)
	}
	return out
}
