package models

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// invoiceInputSchema checks the shape of a create-invoice body before it is decoded, so a
// non-array "items" or a string quantity is reported with the offending field.
const invoiceInputSchema = `{
	"type": "object",
	"required": ["invoice_nb", "items"],
	"properties": {
		"project_name":  {"type": "string"},
		"customer_name": {"type": "string"},
		"notes":         {"type": ["string", "null"]},
		"invoice_nb":    {"type": "string"},
		"total":         {"type": ["number", "string", "null"], "maximum": 9999999999.99},
		"items": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["product_id", "qty", "price"],
				"properties": {
					"product_id": {"type": "integer"},
					"qty":        {"type": "integer", "minimum": 1, "maximum": 2147483647},
					"price":      {"type": ["number", "string"], "minimum": 0, "maximum": 9999999999.99}
				}
			}
		}
	}
}`

var invoiceInputValidator = mustCompileSchema(invoiceInputSchema)

func mustCompileSchema(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("invalid json schema: %v", err))
	}
	return s
}

// ValidateInvoiceJSON checks a raw create-invoice body against the invoice schema and returns
// a message describing the first violation, or "" when the body is well-formed.
func ValidateInvoiceJSON(body []byte) string {
	result, err := invoiceInputValidator.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return "invalid JSON"
	}
	if result.Valid() {
		return ""
	}
	first := result.Errors()[0]
	return fmt.Sprintf("%s: %s", first.Field(), first.Description())
}
