package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON is a free-form object stored in a jsonb column.
type JSON map[string]interface{}

// Value implements the driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(map[string]interface{}(j))
}

// Scan implements the sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSON", value)
	}
	m := map[string]interface{}{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	*j = m
	return nil
}
