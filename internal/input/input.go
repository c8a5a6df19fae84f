// Package input loads analysis requests from JSON or YAML files.
package input

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"gapscout/internal/analysis"
	"gapscout/internal/core"
)

// Format is an input file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnsupportedFormat is returned for files that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Load reads a request file. The document is either a full request object or a bare list of merged
// keyword records, in which case only Records is filled and the caller supplies the domains.
func Load(path string) (*analysis.Request, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file %s: %w", path, err)
	}
	req, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return req, nil
}

// Decode parses data in the given format.
func Decode(data []byte, format Format) (*analysis.Request, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func decodeJSON(data []byte) (*analysis.Request, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, core.ErrNoKeywordData
	}

	if trimmed[0] == '[' {
		var records []core.KeywordRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, err
		}
		return &analysis.Request{Records: records}, nil
	}

	var req analysis.Request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func decodeYAML(data []byte) (*analysis.Request, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, core.ErrNoKeywordData
	}

	root := doc.Content[0]
	if root.Kind == yaml.SequenceNode {
		var records []core.KeywordRecord
		if err := root.Decode(&records); err != nil {
			return nil, err
		}
		return &analysis.Request{Records: records}, nil
	}

	var req analysis.Request
	if err := root.Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}
