package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/nikiitin/ring5/internal/ring5/stattype"
)

// ErrRequestSchemaInvalid is returned when a JSON request document fails
// schema validation.
var ErrRequestSchemaInvalid = errors.New("stat request document failed schema validation")

// ErrUnknownRequestFormat is returned when a request document's extension
// is neither .yaml/.yml nor .json.
var ErrUnknownRequestFormat = errors.New("unrecognized stat request document format")

// requestSchema validates a JSON Stat Request document at construction
// time, catching malformed requests (missing name, unknown kind) before
// any file is touched.
const requestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["name", "kind"],
    "properties": {
      "name": {"type": "string", "minLength": 1},
      "kind": {"type": "string", "enum": ["scalar", "vector", "distribution", "histogram", "configuration"]},
      "is_regex": {"type": "boolean"},
      "statistics_only": {"type": "boolean"},
      "repeat": {"type": "integer", "minimum": 0},
      "entries": {"type": "array", "items": {"type": "string"}},
      "extra_statistics": {"type": "array", "items": {"type": "string"}},
      "on_empty_default": {"type": "string"},
      "minimum": {"type": "integer"},
      "maximum": {"type": "integer"},
      "bins": {"type": "integer", "minimum": 0},
      "max_range": {"type": "number"}
    },
    "additionalProperties": false
  }
}`

// requestDoc is the wire shape of one Stat Request entry, shared by both
// the YAML and JSON loaders.
type requestDoc struct {
	Name            string   `yaml:"name" json:"name"`
	Kind            string   `yaml:"kind" json:"kind"`
	IsRegex         bool     `yaml:"is_regex" json:"is_regex"`
	StatisticsOnly  bool     `yaml:"statistics_only" json:"statistics_only"`
	Repeat          int      `yaml:"repeat" json:"repeat"`
	Entries         []string `yaml:"entries" json:"entries"`
	ExtraStatistics []string `yaml:"extra_statistics" json:"extra_statistics"`
	OnEmptyDefault  string   `yaml:"on_empty_default" json:"on_empty_default"`
	Minimum         int      `yaml:"minimum" json:"minimum"`
	Maximum         int      `yaml:"maximum" json:"maximum"`
	Bins            int      `yaml:"bins" json:"bins"`
	MaxRange        float64  `yaml:"max_range" json:"max_range"`
}

// LoadRequests loads a Stat Request document from path, dispatching on
// file extension: .yaml/.yml is parsed directly, .json is validated
// against requestSchema first.
func LoadRequests(path string) ([]stattype.Request, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading request document: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return parseYAMLRequests(raw)
	case ".json":
		return parseJSONRequests(raw)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownRequestFormat, ext)
	}
}

func parseYAMLRequests(raw []byte) ([]stattype.Request, error) {
	var docs []requestDoc

	if err := yaml.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("parsing YAML request document: %w", err)
	}

	return toRequests(docs), nil
}

func parseJSONRequests(raw []byte) ([]stattype.Request, error) {
	var generic any

	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("parsing JSON request document: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(requestSchema)
	docLoader := gojsonschema.NewGoLoader(generic)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrRequestSchemaInvalid, formatSchemaErrors(result.Errors()))
	}

	var docs []requestDoc

	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("decoding JSON request document: %w", err)
	}

	return toRequests(docs), nil
}

func formatSchemaErrors(errs []gojsonschema.ResultError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}

	return strings.Join(parts, "; ")
}

func toRequests(docs []requestDoc) []stattype.Request {
	requests := make([]stattype.Request, 0, len(docs))

	for _, d := range docs {
		hasRange := d.Kind == string(stattype.KindDistribution)

		requests = append(requests, stattype.Request{
			Name:           d.Name,
			Kind:           stattype.Kind(d.Kind),
			IsRegex:        d.IsRegex,
			StatisticsOnly: d.StatisticsOnly,
			Repeat:         d.Repeat,
			Params: stattype.Params{
				Entries:         d.Entries,
				ExtraStatistics: d.ExtraStatistics,
				OnEmptyDefault:  d.OnEmptyDefault,
				Minimum:         d.Minimum,
				Maximum:         d.Maximum,
				Bins:            d.Bins,
				MaxRange:        d.MaxRange,
				HasRange:        hasRange,
			},
		})
	}

	return requests
}
