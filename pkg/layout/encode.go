package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const indent = "  "

// Marshal serializes a layout document as 2-space indented UTF-8 JSON.
// Keys follow struct declaration order, so equal documents encode to equal bytes.
func Marshal(doc interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode layout: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Indent re-indents an already serialized JSON value with 2 spaces.
// Object keys keep their original order.
func Indent(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(raw), "", indent); err != nil {
		return nil, fmt.Errorf("invalid layout JSON: %w", err)
	}
	return buf.Bytes(), nil
}
