package utils

import (
	"github.com/xeipuuv/gojsonschema"
)

// ValidateJSON checks raw request bytes against a JSON schema file and
// returns the list of violations when the document is invalid.
func ValidateJSON(data []byte, schemaPath string) (bool, []string, error) {
	schemaLoader := gojsonschema.NewReferenceLoader("file://" + schemaPath)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return false, nil, err
	}

	if result.Valid() {
		return true, nil, nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return false, errs, nil
}
