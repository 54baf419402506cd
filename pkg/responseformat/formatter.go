// Package responseformat encodes segmentation summaries as JSON or
// MessagePack.
package responseformat

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format is an output encoding
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgPack Format = "msgpack"
)

// ParseFormat maps a configured format name to a Format. An empty name
// selects JSON.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatMsgPack:
		return FormatMsgPack, nil
	}
	return "", fmt.Errorf("unsupported format %q (available: json, msgpack)", name)
}

// FormatForPath picks the format from a file extension, falling back to
// JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mpk":
		return FormatMsgPack
	}
	return FormatJSON
}

// Formatter handles encoding and writing data in JSON or MessagePack format
type Formatter struct {
	indent bool
}

// NewFormatter creates a new formatter. JSON output is indented when indent
// is set.
func NewFormatter(indent bool) *Formatter {
	return &Formatter{indent: indent}
}

// Write encodes data to w in the given format
func (f *Formatter) Write(w io.Writer, format Format, data any) error {
	switch format {
	case FormatJSON, "":
		return f.writeJSON(w, data)
	case FormatMsgPack:
		return f.writeMsgPack(w, data)
	}
	return fmt.Errorf("unsupported format %q", format)
}

func (f *Formatter) writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	if f.indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

func (f *Formatter) writeMsgPack(w io.Writer, data any) error {
	encoder := msgpack.NewEncoder(w)
	encoder.SetCustomStructTag("json") // Use json tags for MessagePack
	return encoder.Encode(data)
}
