package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Count is one category of an aggregate mapping.
type Count struct {
	Label string
	Value int
}

// Counts is a category → count mapping that keeps the key order the
// backend sent. Stats endpoints answer either with such a mapping or with
// an error-shaped object carrying a "message" field.
type Counts struct {
	Items   []Count
	Message string
}

// Empty reports whether the mapping carries no usable data.
func (c Counts) Empty() bool {
	return len(c.Items) == 0 || c.Message != ""
}

// UnmarshalJSON walks the object token by token so key order survives.
// Non-numeric values other than "message" are skipped and negative counts
// are read as zero.
func (c *Counts) UnmarshalJSON(data []byte) error {
	c.Items = nil
	c.Message = ""

	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("counts: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("counts: expected key, got %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("counts: value for %q: %w", key, err)
		}

		if key == "message" {
			var msg string
			if json.Unmarshal(raw, &msg) == nil && msg != "" {
				c.Message = msg
				continue
			}
		}

		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			continue
		}
		v, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				continue
			}
			v = int64(f)
		}
		c.Items = append(c.Items, Count{Label: key, Value: int(max(v, 0))})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
