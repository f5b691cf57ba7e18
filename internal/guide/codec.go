package guide

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Format is a guide serialization format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Encode serializes g in the given format.
func Encode(v any, format Format) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return data, nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// Export serializes g as indented JSON.
func Export(g CraftGuide) ([]byte, error) {
	return Encode(g, FormatJSON)
}

// Decoded is the result of Decode.
type Decoded struct {
	Guide CraftGuide
	// Envelope is set when the input was a share envelope.
	Envelope *ShareEnvelope
}

// Decode parses a guide from JSON or YAML. Input tagged with the share
// envelope discriminant is unwrapped; anything else is read as a raw guide.
// Decode does not validate.
func Decode(data []byte) (Decoded, error) {
	raw, err := toJSON(data)
	if err != nil {
		return Decoded{}, err
	}

	var probe struct {
		Type  string          `json:"type"`
		Guide json.RawMessage `json:"guide"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Decoded{}, fmt.Errorf("decode guide: %w", err)
	}

	if probe.Type == ShareType && len(probe.Guide) > 0 {
		var env ShareEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return Decoded{}, fmt.Errorf("decode share envelope: %w", err)
		}
		return Decoded{Guide: env.Guide, Envelope: &env}, nil
	}

	var g CraftGuide
	if err := json.Unmarshal(raw, &g); err != nil {
		return Decoded{}, fmt.Errorf("decode guide: %w", err)
	}
	return Decoded{Guide: g}, nil
}

// toJSON returns data as JSON. JSON input passes through; YAML is decoded
// and re-encoded so both formats share the JSON field mapping.
func toJSON(data []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("decode guide: empty input")
	}
	if trimmed[0] == '{' {
		return trimmed, nil
	}

	var doc any
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("decode guide yaml: %w", err)
	}
	if _, ok := doc.(map[string]any); !ok {
		return nil, fmt.Errorf("decode guide yaml: top level must be a mapping, got %T", doc)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("decode guide yaml: %w", err)
	}
	return out, nil
}
