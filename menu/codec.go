package menu

import (
	"bytes"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Format serialization of a menu document
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	// FormatJS the var menudata={children:[...]} literal written by doxygen
	FormatJS Format = "js"
)

// ParseFormat maps a flag value to a format
func ParseFormat(v string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(v))); f {
	case FormatAuto, FormatJSON, FormatYAML, FormatJS:
		return f, nil
	case "auto":
		return FormatAuto, nil
	case "yml":
		return FormatYAML, nil
	case "javascript":
		return FormatJS, nil
	default:
		return "", errors.Errorf("unknown format %q (supported: json, yaml, js)", v)
	}
}

// DetectFormat guesses the format from the name and falls back to sniffing
// the data
func DetectFormat(name string, data []byte) Format {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".js":
		return FormatJS
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.HasPrefix(trimmed, []byte("var ")),
		bytes.HasPrefix(trimmed, []byte("/*")),
		bytes.HasPrefix(trimmed, []byte("//")):
		return FormatJS
	case bytes.HasPrefix(trimmed, []byte("{")), bytes.HasPrefix(trimmed, []byte("[")):
		return FormatJSON
	default:
		return FormatYAML
	}
}

// Unmarshal decodes a single menu document
func Unmarshal(format Format, data []byte) (*Menu, error) {
	m := &Menu{}
	switch format {
	case FormatJS:
		return ParseJS(data)
	case FormatJSON:
		if err := json.Unmarshal(data, m); err != nil {
			return nil, errors.Wrap(err, "failed to decode json menu")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, m); err != nil {
			return nil, errors.Wrap(err, "failed to decode yaml menu")
		}
	default:
		return nil, errors.Errorf("unsupported format %q", format)
	}
	return m, nil
}

// Marshal encodes a single menu document
func Marshal(format Format, m *Menu) ([]byte, error) {
	switch format {
	case FormatJS:
		return MarshalJS(m)
	case FormatJSON:
		return json.MarshalIndent(m, "", "  ")
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return nil, errors.Wrap(err, "failed to encode yaml menu")
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, errors.Errorf("unsupported format %q", format)
	}
}

// ToGeneric converts a json or yaml document into plain maps and slices as
// expected by the schema validator
func ToGeneric(format Format, data []byte) (interface{}, error) {
	var v interface{}
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, errors.Wrap(err, "failed to decode json")
		}
	case FormatYAML:
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(err, "failed to decode yaml")
		}
		return yamlToGeneric(&doc)
	case FormatJS:
		jsonBytes, err := jsToJSON(data)
		if err != nil {
			return nil, err
		}
		return ToGeneric(FormatJSON, jsonBytes)
	default:
		return nil, errors.Errorf("unsupported format %q", format)
	}
	return v, nil
}

// yamlToGeneric keeps mapping keys as written, so that site names like 2.10
// or 3 stay strings
func yamlToGeneric(n *yaml.Node) (interface{}, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlToGeneric(n.Content[0])
	case yaml.AliasNode:
		return yamlToGeneric(n.Alias)
	case yaml.MappingNode:
		ret := make(map[string]interface{}, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, errors.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			if _, ok := ret[k.Value]; ok {
				return nil, errors.Errorf("line %d: duplicate key %q", k.Line, k.Value)
			}
			v, err := yamlToGeneric(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			ret[k.Value] = v
		}
		return ret, nil
	case yaml.SequenceNode:
		ret := make([]interface{}, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlToGeneric(c)
			if err != nil {
				return nil, err
			}
			ret = append(ret, v)
		}
		return ret, nil
	default:
		var v interface{}
		if err := n.Decode(&v); err != nil {
			return nil, errors.Wrapf(err, "line %d", n.Line)
		}
		return v, nil
	}
}
