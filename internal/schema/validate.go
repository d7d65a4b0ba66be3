// Package schema validates credo suite documents against the embedded JSON
// schema.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	schemafs "github.com/AndreyAkinshin/credo/schema"
)

const suiteSchemaName = "suite.schema.json"

var (
	suiteSchema *jsonschema.Schema
	compileOnce sync.Once
	compileErr  error
)

// compileSchemas compiles the embedded schema once.
func compileSchemas() error {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()

		data, err := schemafs.FS.ReadFile(suiteSchemaName)
		if err != nil {
			compileErr = fmt.Errorf("read suite schema: %w", err)
			return
		}

		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal suite schema: %w", err)
			return
		}

		if err := compiler.AddResource(suiteSchemaName, doc); err != nil {
			compileErr = fmt.Errorf("add suite schema resource: %w", err)
			return
		}

		suiteSchema, err = compiler.Compile(suiteSchemaName)
		if err != nil {
			compileErr = fmt.Errorf("compile suite schema: %w", err)
		}
	})

	return compileErr
}

// ValidateSuite validates JSON data against the suite schema. YAML and TOML
// documents are converted to JSON before they get here.
func ValidateSuite(data []byte) error {
	if err := compileSchemas(); err != nil {
		return err
	}

	if !json.Valid(data) {
		return fmt.Errorf("invalid JSON")
	}
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := suiteSchema.Validate(v); err != nil {
		return fmt.Errorf("suite validation failed: %w", err)
	}

	return nil
}
