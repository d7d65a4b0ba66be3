package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// detectUnknownFields compares the JSON form of a suite with the known
// struct fields. The schema already rejects unknown keys in expected
// solutions and field maps, so only suite, model and check objects are
// inspected.
// Note: Since this is called after successful Suite parsing, a parse failure
// here would indicate an unexpected internal inconsistency.
func detectUnknownFields(data []byte) []string {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return []string{"internal: failed to re-parse suite for unknown field detection"}
	}

	var warnings []string
	for _, key := range unknownKeys(root, reflect.TypeOf(Suite{})) {
		warnings = append(warnings, fmt.Sprintf("unknown field %q at root level (ignored)", key))
	}
	warnings = append(warnings, checkListUnknownFields(root["models"], "model", reflect.TypeOf(ModelConfig{}))...)
	warnings = append(warnings, checkListUnknownFields(root["checks"], "check", reflect.TypeOf(CheckConfig{}))...)
	return warnings
}

func checkListUnknownFields(data json.RawMessage, what string, t reflect.Type) []string {
	if data == nil {
		return nil
	}
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		// Should not happen since the list parsed successfully.
		return []string{fmt.Sprintf("internal: failed to re-parse %ss for unknown field detection", what)}
	}

	var warnings []string
	for i, entry := range entries {
		for _, key := range unknownKeys(entry, t) {
			warnings = append(warnings, fmt.Sprintf("unknown field %q in %s %s (ignored)", key, what, entryName(entry, i)))
		}
	}
	return warnings
}

func unknownKeys(obj map[string]json.RawMessage, t reflect.Type) []string {
	known := getJSONFields(t)
	var keys []string
	for key := range obj {
		if !known[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// entryName names a list entry by its name field, else by index.
func entryName(obj map[string]json.RawMessage, i int) string {
	var name string
	if err := json.Unmarshal(obj["name"], &name); err == nil && name != "" {
		return fmt.Sprintf("%q", name)
	}
	return fmt.Sprintf("#%d", i)
}

// getJSONFields returns a map of known JSON field names for a struct type.
func getJSONFields(t reflect.Type) map[string]bool {
	fields := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		// Extract field name from tag (before comma)
		name := strings.Split(tag, ",")[0]
		if name != "" {
			fields[name] = true
		}
	}
	return fields
}
