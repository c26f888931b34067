package geojson

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// polygonSchema is a structural JSON Schema for the document shapes the
// parser accepts. It is stricter than the parser itself: the validator
// flags documents the lenient parse would silently trim, so a bad
// upstream export is caught at download time instead of surfacing as a
// mysteriously empty area.
const polygonSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {
    "position": {
      "type": "array",
      "minItems": 2,
      "items": {"type": "number"}
    },
    "ring": {
      "type": "array",
      "minItems": 4,
      "items": {"$ref": "#/definitions/position"}
    },
    "polygon": {
      "type": "object",
      "required": ["type", "coordinates"],
      "properties": {
        "type": {"const": "Polygon"},
        "coordinates": {
          "type": "array",
          "minItems": 1,
          "items": {"$ref": "#/definitions/ring"}
        }
      }
    },
    "multipolygon": {
      "type": "object",
      "required": ["type", "coordinates"],
      "properties": {
        "type": {"const": "MultiPolygon"},
        "coordinates": {
          "type": "array",
          "items": {
            "type": "array",
            "minItems": 1,
            "items": {"$ref": "#/definitions/ring"}
          }
        }
      }
    },
    "feature": {
      "type": "object",
      "required": ["type", "geometry"],
      "properties": {
        "type": {"const": "Feature"},
        "geometry": {
          "anyOf": [
            {"$ref": "#/definitions/polygon"},
            {"$ref": "#/definitions/multipolygon"}
          ]
        }
      }
    }
  },
  "anyOf": [
    {"$ref": "#/definitions/polygon"},
    {"$ref": "#/definitions/multipolygon"},
    {
      "type": "object",
      "required": ["type", "features"],
      "properties": {
        "type": {"const": "FeatureCollection"},
        "features": {
          "type": "array",
          "items": {"$ref": "#/definitions/feature"}
        }
      }
    }
  ]
}`

// Validator performs strict structural validation of GeoJSON documents.
// Validation failures are advisory: the lenient parser remains the
// authority on what geometry is usable.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles the embedded polygon schema.
func NewValidator() (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(polygonSchema))
	if err != nil {
		return nil, fmt.Errorf("compiling geojson schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate checks the raw document against the schema and returns a
// descriptive error listing every violation.
func (v *Validator) Validate(raw []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("%w: %v", ErrInvalidDocument, msgs)
	}
	return nil
}
