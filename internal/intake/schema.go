package intake

import (
	_ "embed"
	"sort"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	})
	return schema, schemaErr
}

// ValidateDocument checks types and ranges of the known keys of a
// normalized document. Unknown keys are ignored. The messages are sorted.
func ValidateDocument(data map[string]any) []string {
	s, err := compiledSchema()
	if err != nil {
		return []string{"schema: " + err.Error()}
	}

	result, err := s.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return []string{"document: " + err.Error()}
	}
	if result.Valid() {
		return nil
	}

	errs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		errs[i] = desc.String()
	}
	sort.Strings(errs)
	return errs
}
