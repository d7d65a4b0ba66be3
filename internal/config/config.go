package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/AndreyAkinshin/credo/internal/errors"
	"github.com/AndreyAkinshin/credo/internal/schema"
)

// Format is the encoding of a suite file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.Configf("unsupported suite file %q (expected .yaml, .yml, .toml or .json)", path)
	}
}

// Load reads, validates and decodes a suite file, applying defaults. The
// returned warnings list unknown fields.
func Load(path string) (*Suite, []string, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.WrapConfig(err, "failed to read suite file")
	}
	cfg, warnings, err := Parse(data, format)
	if err != nil {
		return nil, warnings, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, warnings, nil
}

// Parse decodes and validates a suite document in the given format.
func Parse(data []byte, format Format) (*Suite, []string, error) {
	doc, err := toJSON(data, format)
	if err != nil {
		return nil, nil, err
	}
	if err := schema.ValidateSuite(doc); err != nil {
		return nil, nil, errors.WrapConfig(err, "invalid suite")
	}

	var cfg Suite
	if err := json.Unmarshal(doc, &cfg); err != nil {
		return nil, nil, errors.WrapConfig(err, "failed to decode suite")
	}
	warnings := detectUnknownFields(doc)

	applyDefaults(&cfg)
	validationWarnings, err := Validate(&cfg)
	warnings = append(warnings, validationWarnings...)
	if err != nil {
		return nil, warnings, err
	}
	return &cfg, warnings, nil
}

// toJSON converts a document to JSON so that every format shares the schema
// and the decoder.
func toJSON(data []byte, format Format) ([]byte, error) {
	var v any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, errors.WrapConfig(err, "failed to parse suite file")
		}
		return bytes.TrimSpace(data), nil
	case FormatYAML:
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, errors.WrapConfig(err, "failed to parse suite file")
		}
	case FormatTOML:
		m := make(map[string]any)
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, errors.WrapConfig(err, "failed to parse suite file")
		}
		v = m
	default:
		return nil, errors.Configf("unsupported suite format %q", format)
	}

	out, err := json.Marshal(v)
	if err != nil {
		return nil, errors.WrapConfig(err, "failed to convert suite file")
	}
	return out, nil
}
