package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a configuration serialization format.
type Format string

const (
	FormatUnknown Format = ""
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatTOML    Format = "toml"
)

// probeOrder is the order formats are tried for files without a known extension.
var probeOrder = []Format{FormatJSON, FormatYAML, FormatTOML}

// FormatFromPath returns the format implied by the file extension.
func FormatFromPath(path string) Format {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".json"):
		return FormatJSON
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return FormatYAML
	case strings.HasSuffix(lower, ".toml"):
		return FormatTOML
	default:
		return FormatUnknown
	}
}

// decode parses data into a generic document. FormatUnknown probes every
// format in turn and keeps the first that yields a mapping.
func decode(data []byte, format Format) (map[string]any, Format, error) {
	if format != FormatUnknown {
		doc, err := decodeAs(data, format)
		return doc, format, err
	}

	var errs []string
	for _, f := range probeOrder {
		doc, err := decodeAs(data, f)
		if err == nil {
			slog.Debug("parsed config", "format", string(f))
			return doc, f, nil
		}
		slog.Debug("config is not valid in format", "format", string(f), "error", err)
		errs = append(errs, fmt.Sprintf("%s: %v", f, err))
	}
	return nil, FormatUnknown, fmt.Errorf("not a JSON, YAML or TOML mapping (%s)", strings.Join(errs, "; "))
}

func decodeAs(data []byte, format Format) (map[string]any, error) {
	var doc map[string]any
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		doc = untable(doc).(map[string]any)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if doc == nil {
		return nil, fmt.Errorf("document is empty")
	}
	return doc, nil
}

// untable rewrites the []map[string]any that toml produces for arrays of
// tables into []any, the shape JSON and YAML decode lists to.
func untable(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, item := range x {
			x[k] = untable(item)
		}
		return x
	case []map[string]any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = untable(item)
		}
		return out
	case []any:
		for i, item := range x {
			x[i] = untable(item)
		}
		return x
	default:
		return v
	}
}
