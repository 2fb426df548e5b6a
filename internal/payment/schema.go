package payment

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

const webhookSchemaName = "WebhookPayload"

// SchemaValidator checks decoded JSON against a named component schema of
// the service's OpenAPI document.
type SchemaValidator struct {
	schema *openapi3.Schema
}

func NewSchemaValidator(spec []byte) (*SchemaValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}

	ref, ok := doc.Components.Schemas[webhookSchemaName]
	if !ok || ref.Value == nil {
		return nil, fmt.Errorf("schema %s not found", webhookSchemaName)
	}
	return &SchemaValidator{schema: ref.Value}, nil
}

// Validate expects the output of json.Unmarshal into interface{}.
func (v *SchemaValidator) Validate(decoded interface{}) error {
	return v.schema.VisitJSON(decoded)
}
