package domain

import (
	"bytes"
	"fmt"
)

// ID is an opaque identifier. The remote API is inconsistent about whether
// ids arrive as JSON strings or numbers, so decoding accepts both.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		if len(data) < 2 || data[len(data)-1] != '"' {
			return fmt.Errorf("invalid id literal %q", data)
		}
		*id = ID(data[1 : len(data)-1])
		return nil
	}
	// Numeric literal, keep the textual form.
	*id = ID(data)
	return nil
}

func (id ID) String() string { return string(id) }
