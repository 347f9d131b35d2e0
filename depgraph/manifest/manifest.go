// Package manifest turns a package.json's published surface into named
// source entry points.
package manifest

import (
	"encoding/json"
	"fmt"
)

// FileName is the package manifest looked up in a project root.
const FileName = "package.json"

// Manifest is the subset of package.json that describes published entry points.
type Manifest struct {
	Name    string          `json:"name"`
	Main    string          `json:"main"`
	Module  string          `json:"module"`
	Types   string          `json:"types"`
	Exports json.RawMessage `json:"exports"`
	Bin     json.RawMessage `json:"bin"`
}

// Parse decodes package.json content.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", FileName, err)
	}
	return &m, nil
}
