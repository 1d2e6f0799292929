// Package outfmt shapes CLI response output.
package outfmt

import (
	"encoding/json"
	"fmt"
	"io"
)

// Mode represents the output format mode.
type Mode int

const (
	// JSON pretty-prints JSON payloads and falls back to raw output for
	// anything that isn't JSON.
	JSON Mode = iota
	// JSONL emits one compact JSON document per line.
	JSONL
	// Raw writes the payload bytes untouched.
	Raw
)

// Parse parses an output mode string.
func Parse(s string) (Mode, error) {
	switch s {
	case "json", "":
		return JSON, nil
	case "jsonl", "ndjson":
		return JSONL, nil
	case "raw":
		return Raw, nil
	default:
		return JSON, fmt.Errorf("invalid output format: %q (use 'json', 'jsonl', 'ndjson', or 'raw')", s)
	}
}

// Write renders payload to w according to the mode. Payloads that fail
// to parse as JSON are written raw regardless of mode.
func Write(w io.Writer, mode Mode, payload []byte) error {
	if mode == Raw {
		return writeRaw(w, payload)
	}

	var data any
	if err := json.Unmarshal(payload, &data); err != nil {
		return writeRaw(w, payload)
	}
	return WriteValue(w, mode, data)
}

// WriteValue renders an already-unmarshalled value, as produced by a jq
// filter.
func WriteValue(w io.Writer, mode Mode, data any) error {
	switch mode {
	case JSONL:
		if items, ok := data.([]any); ok {
			enc := json.NewEncoder(w)
			for _, item := range items {
				if err := enc.Encode(item); err != nil {
					return err
				}
			}
			return nil
		}
		return json.NewEncoder(w).Encode(data)
	default:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return err
		}
		return writeRaw(w, append(out, '\n'))
	}
}

func writeRaw(w io.Writer, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}
