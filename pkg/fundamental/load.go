package fundamental

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

const schemaURL = "fundgrowth://fundamentals.schema.json"

// documentSchema describes a fundamentals document:
//
//	{"ticker": "ACME", "data": {Category: {Section: {TimeUnit: {Date: {Field: value}}}}}}
//
// Values may be numbers, numeric strings or null (missing).
const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["data"],
  "properties": {
    "ticker": {"type": "string"},
    "data": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "additionalProperties": {
          "type": "object",
          "additionalProperties": {
            "type": "object",
            "propertyNames": {"pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
            "additionalProperties": {
              "type": "object",
              "additionalProperties": {"type": ["number", "string", "null"]}
            }
          }
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(documentSchema))
		if err != nil {
			schemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

type document struct {
	Ticker string                                                     `json:"ticker"`
	Data   map[string]map[string]map[string]map[string]map[string]any `json:"data"`
}

// Load reads a fundamentals document from a JSON or YAML file.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	store, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}

// Parse decodes a fundamentals document. ext selects the syntax (".yaml",
// ".yml" or JSON for anything else).
func Parse(data []byte, ext string) (*Store, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		converted, err := json.Marshal(stringKeys(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to convert YAML: %w", err)
		}
		data = converted
	}

	sch, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile document schema: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("invalid fundamentals document: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}

	store := NewStore(doc.Ticker)
	for category, sections := range doc.Data {
		for section, units := range sections {
			for unit, dates := range units {
				for date, fields := range dates {
					rd, err := ParseReportDate(date)
					if err != nil {
						return nil, err
					}
					for field, raw := range fields {
						path := FieldPath{Category: category, Section: section, TimeUnit: unit, Field: field}
						store.Set(path, rd, toValue(raw))
					}
				}
			}
		}
	}
	return store, nil
}

// stringKeys rewrites the map[any]any mappings yaml.v3 produces for
// non-string keys, such as unquoted dates, into JSON-encodable maps.
// Date keys keep the report date layout.
func stringKeys(v any) any {
	switch m := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[keyString(k)] = stringKeys(val)
		}
		return out
	case map[string]any:
		for k, val := range m {
			m[k] = stringKeys(val)
		}
		return m
	case []any:
		for i, val := range m {
			m[i] = stringKeys(val)
		}
		return m
	default:
		return v
	}
}

// keyString renders a YAML mapping key. yaml.v3 resolves unquoted
// dates to time.Time.
func keyString(k any) string {
	if t, ok := k.(time.Time); ok {
		return t.Format(DateLayout)
	}
	return fmt.Sprint(k)
}

func toValue(raw any) Value {
	switch v := raw.(type) {
	case float64:
		return Present(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return Missing()
		}
		return Present(f)
	default:
		return Missing()
	}
}
