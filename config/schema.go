package config

import (
	"fmt"

	"github.com/invopop/jsonschema"
)

// JSONSchema returns the JSON Schema of the configuration file.
func JSONSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	js := r.Reflect(&Config{})
	js.Title = "plotdash configuration"

	b, err := js.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json schema: %w", err)
	}
	return b, nil
}
