package http

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.json
var openAPISpec []byte

// OpenAPIDoc is the validated API description served at /openapi.json and
// behind the Swagger UI.
type OpenAPIDoc struct {
	raw []byte
	doc *openapi3.T
}

// LoadOpenAPIDoc parses the embedded document and fails when it is not a
// valid OpenAPI 3 description.
func LoadOpenAPIDoc(ctx context.Context) (*OpenAPIDoc, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPISpec)
	if err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	if err = doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return &OpenAPIDoc{raw: openAPISpec, doc: doc}, nil
}

// ReadDoc satisfies swag.Swagger.
func (d *OpenAPIDoc) ReadDoc() string {
	return string(d.raw)
}

// Operations lists "METHOD path" for every documented operation.
func (d *OpenAPIDoc) Operations() []string {
	var ops []string
	for _, path := range d.doc.Paths.InMatchingOrder() {
		for method := range d.doc.Paths.Value(path).Operations() {
			ops = append(ops, method+" "+path)
		}
	}
	return ops
}
