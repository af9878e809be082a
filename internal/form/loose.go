package form

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// List is a free-text list input. Clients send a JSON array of strings, but a
// lone string is taken as a one-item list and anything else as no list, so
// decoding never fails.
type List []string

func (l *List) UnmarshalJSON(data []byte) error {
	*l = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil && strings.TrimSpace(s) != "" {
			*l = List{s}
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil
		}
		for _, item := range items {
			if s, ok := scalarText(item); ok {
				*l = append(*l, s)
			}
		}
	}
	return nil
}

// scalarText returns the text of a string, number or boolean JSON value.
func scalarText(data json.RawMessage) (string, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "", false
	}
	switch c := data[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", false
		}
		return s, true
	case c == 't' || c == 'f' || c == '-' || (c >= '0' && c <= '9'):
		return string(data), true
	}
	return "", false
}

// Flag is a checkbox input. Besides JSON booleans it accepts the strings and
// numbers form libraries use for checked state; anything unrecognised is
// unchecked.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	*f = false
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	text := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		text = strings.ToLower(strings.TrimSpace(s))
	}

	switch text {
	case "true", "yes", "on", "checked":
		*f = true
		return nil
	}
	if v, err := strconv.ParseFloat(text, 64); err == nil && v != 0 {
		*f = true
	}
	return nil
}
