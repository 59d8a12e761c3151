package config

import (
	"bytes"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaDoc pre-validates the raw configuration document's shape before
// koanf's struct-tag unmarshal runs, catching type mistakes (a string
// where a number is expected, an out-of-range threshold) that koanf's
// loose unmarshalling would otherwise coerce or silently drop.
const schemaDoc = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "analysis": {
      "type": "object",
      "properties": {
        "similarity_threshold": {"type": "integer", "minimum": 0, "maximum": 100},
        "overlap_threshold": {"type": "number", "minimum": 0, "maximum": 1},
        "group_size_tolerance": {"type": "number", "minimum": 0},
        "group_threshold": {"type": "integer", "minimum": 0, "maximum": 100}
      }
    },
    "lsh": {
      "type": "object",
      "properties": {
        "use_lsh": {"type": "boolean"},
        "lsh_threshold": {"type": "number", "minimum": 0, "maximum": 1},
        "lsh_num_permutations": {"type": "integer", "minimum": 32, "maximum": 256},
        "top_k": {"type": "integer", "minimum": 0}
      }
    },
    "match": {
      "type": "object",
      "properties": {
        "length_skip_ratio": {"type": "number", "minimum": 0},
        "jaccard_prefilter": {"type": "number", "minimum": 0, "maximum": 1},
        "banded_lcs": {"type": "boolean"},
        "progressive_thresholds": {
          "type": "array",
          "items": {"type": "integer", "minimum": 0, "maximum": 100}
        },
        "parallel": {"type": "string", "enum": ["auto", "on", "off"]},
        "parallel_min_pairs": {"type": "integer", "minimum": 0},
        "max_workers": {"type": "integer", "minimum": 0}
      }
    },
    "date_range": {
      "type": "object",
      "properties": {
        "start": {"type": "string"},
        "end": {"type": "string"}
      }
    },
    "optimise": {"type": "boolean"}
  }
}`

var compiledSchema *jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(schemaDoc)))
	if err != nil {
		panic(fmt.Sprintf("config: invalid embedded schema: %v", err))
	}
	const resourceURL = "clonetrace://config.schema.json"
	if err := compiler.AddResource(resourceURL, doc); err != nil {
		panic(fmt.Sprintf("config: add schema resource: %v", err))
	}
	compiledSchema, err = compiler.Compile(resourceURL)
	if err != nil {
		panic(fmt.Sprintf("config: compile schema: %v", err))
	}
}

// validateSchema checks a raw, loosely-typed configuration document (as
// produced by koanf's Raw()) against schemaDoc.
func validateSchema(raw map[string]interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return compiledSchema.Validate(raw)
}
