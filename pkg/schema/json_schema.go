package schema

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ToJSONSchema converts a struct to a JSON schema
func ToJSONSchema[T any](t T) (string, error) {
	schema := reflect(t)

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}

// ToIndentedJSONSchema is ToJSONSchema with two-space indentation, for files meant to be read.
func ToIndentedJSONSchema[T any](t T) (string, error) {
	schema := reflect(t)

	jsonSchemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}

func reflect[T any](t T) *jsonschema.Schema {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true

	return r.Reflect(t)
}
