package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// decodeParams unmarshals named params into v. Empty or null params
// leave v at its zero value.
func decodeParams(params json.RawMessage, v interface{}) error {
	trimmed := bytes.TrimSpace(params)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return invalidParams("invalid parameters format: %v", err)
	}
	return nil
}

// ID accepts an identifier given either as a JSON number or a string
type ID string

// UnmarshalJSON implements json.Unmarshaler
func (id *ID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*id = ""
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		*id = ID(unquoted)
		return nil
	}
	*id = ID(s)
	return nil
}
