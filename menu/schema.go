package menu

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaName = "menu.schema.json"

//go:embed menu.schema.json
var schemaSource string

var (
	schemaOnce     sync.Once
	schemaCompiled *jsonschema.Schema
	schemaErr      error
)

// SchemaError lists the structural problems found in a document
type SchemaError struct {
	Errors []string
}

func (e *SchemaError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "schema validation failed"
	case 1:
		return fmt.Sprintf("schema validation failed: %s", e.Errors[0])
	default:
		return fmt.Sprintf("schema validation failed: %s", strings.Join(e.Errors, "; "))
	}
}

// Schema the raw json schema of a menu document
func Schema() string {
	return schemaSource
}

// ValidateSchema checks the structure of a raw menu document
func ValidateSchema(format Format, data []byte) error {
	v, err := ToGeneric(format, data)
	if err != nil {
		return err
	}
	return ValidateSchemaValue(v)
}

// ValidateSchemaValue checks an already decoded document (maps and slices)
func ValidateSchemaValue(v interface{}) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(v); err != nil {
		var messages []string
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			collectSchemaErrors(validationErr, &messages)
			if len(messages) == 0 {
				messages = append(messages, validationErr.Message)
			}
		} else {
			messages = append(messages, err.Error())
		}
		return &SchemaError{Errors: messages}
	}
	return nil
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schemaCompiled, schemaErr = jsonschema.CompileString(schemaName, schemaSource)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("failed to compile schema %s: %w", schemaName, schemaErr)
		}
	})
	return schemaCompiled, schemaErr
}

// collectSchemaErrors keeps the leaves, they carry the precise location
func collectSchemaErrors(err *jsonschema.ValidationError, messages *[]string) {
	if len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "/"
		}
		*messages = append(*messages, location+": "+err.Message)
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, messages)
	}
}
