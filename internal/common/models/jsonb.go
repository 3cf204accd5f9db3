package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONB stores an opaque JSON document in a text/jsonb column.
type JSONB []byte

func (j JSONB) Value() (driver.Value, error) {
	if len(j) == 0 {
		return []byte("{}"), nil
	}
	return []byte(j), nil
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = JSONB("{}")
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*j = append(JSONB(nil), v...)
		return nil
	case string:
		*j = JSONB([]byte(v))
		return nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("jsonb scan: %w", err)
		}
		*j = JSONB(b)
		return nil
	}
}

func (j JSONB) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return []byte(j), nil
}

func (j *JSONB) UnmarshalJSON(data []byte) error {
	*j = append(JSONB(nil), data...)
	return nil
}

// Decode unmarshals the stored document into dst. Empty documents leave dst untouched.
func (j JSONB) Decode(dst interface{}) error {
	if len(j) == 0 || string(j) == "null" || string(j) == "{}" {
		return nil
	}
	return json.Unmarshal(j, dst)
}

// NewJSONB marshals v, falling back to an empty document.
func NewJSONB(v interface{}) JSONB {
	b, err := json.Marshal(v)
	if err != nil {
		return JSONB("{}")
	}
	return JSONB(b)
}
