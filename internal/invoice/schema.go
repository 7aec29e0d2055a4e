package invoice

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/papayaah/invoicees/internal/rawjson"
)

// BuildUpdateJSONSchema describes what a reconciled update should look like.
// Unknown keys are allowed; the model routinely adds them.
func BuildUpdateJSONSchema() map[string]any {
	props := make(map[string]any, len(textSetters)+1)
	for _, f := range textSetters {
		props[f.key] = map[string]any{"type": "string"}
	}
	props["items"] = map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"description": map[string]any{"type": "string"},
				"unitPrice":   map[string]any{"type": "number", "minimum": 0},
				"quantity":    map[string]any{"type": "number", "minimum": 0},
			},
		},
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
	}
}

var compiledUpdateSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return compileSchema(BuildUpdateJSONSchema())
})

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("invoice_update.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("invoice_update.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	schema, err := compileSchema(schemaMap)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// CheckUpdateShape lists the places where update departs from the expected
// shape, as "location: message" strings. An empty result means it conforms.
// The merge still coerces whatever it finds; this is diagnostics only.
func CheckUpdateShape(update *rawjson.Object) ([]string, error) {
	schema, err := compiledUpdateSchema()
	if err != nil {
		return nil, err
	}
	if update.Len() == 0 {
		return nil, nil
	}
	err = schema.Validate(update.Plain())
	if err == nil {
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, err
	}
	return leafViolations(ve, nil), nil
}

func leafViolations(ve *jsonschema.ValidationError, out []string) []string {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return append(out, loc+": "+ve.Message)
	}
	for _, c := range ve.Causes {
		out = leafViolations(c, out)
	}
	return out
}
