package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// StringList is an ordered list of strings that decodes from a JSON array,
// a JSON-encoded array inside a string, or a comma/newline delimited string.
type StringList []string

// SplitList turns a raw list value into trimmed, non-empty items.
func SplitList(raw string) StringList {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var items []any
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			return fromAny(items)
		}
	}
	sep := ","
	if strings.Contains(raw, "\n") {
		sep = "\n"
	} else if strings.Contains(raw, ";") && !strings.Contains(raw, ",") {
		sep = ";"
	}
	var out StringList
	for _, part := range strings.Split(raw, sep) {
		part = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(part), "-•*"))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func fromAny(items []any) StringList {
	var out StringList
	for _, it := range items {
		var s string
		switch v := it.(type) {
		case nil:
			continue
		case string:
			s = v
		default:
			s = fmt.Sprint(v)
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null" || trimmed == "":
		*l = nil
	case strings.HasPrefix(trimmed, "["):
		var items []any
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = fromAny(items)
	case strings.HasPrefix(trimmed, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = SplitList(s)
	default:
		*l = StringList{trimmed}
	}
	return nil
}

// MarshalJSON always emits an array, never null.
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// Value stores the list as a JSON array for SQL drivers without array types.
func (l StringList) Value() (driver.Value, error) {
	b, err := l.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		return l.UnmarshalJSON([]byte(v))
	case []byte:
		return l.UnmarshalJSON(v)
	default:
		return fmt.Errorf("unsupported list column type %T", src)
	}
}

// Amount is a salary bound that tolerates numbers, numeric strings and null.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == "" {
		*a = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	s = strings.NewReplacer(",", "", "$", "", "£", "", "€", "", " ", "").Replace(s)
	if s == "" {
		*a = 0
		return nil
	}
	mult := 1.0
	if strings.HasSuffix(strings.ToLower(s), "k") {
		mult = 1000
		s = s[:len(s)-1]
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		//unparseable bounds are treated as missing
		*a = 0
		return nil
	}
	*a = Amount(f * mult)
	return nil
}
