// Package valueobject holds small value types shared between modules and
// their storage adapters.
package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"maps"
)

var ErrJSONMapScanType = errors.New("valueobject: unsupported jsonmap scan type")

// JSONMap is a JSON object payload, stored in JSONB columns and cache
// values as-is.
type JSONMap map[string]any

func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

// Scan accepts raw JSON bytes or text. NULL becomes an empty map.
func (j *JSONMap) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*j = JSONMap{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case map[string]any:
		*j = JSONMap(maps.Clone(v))
		return nil
	default:
		return ErrJSONMapScanType
	}

	out := JSONMap{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}

	*j = out
	return nil
}

// GetString returns the string stored under key, or "" when absent or not a string.
func (j JSONMap) GetString(key string) string {
	s, _ := j[key].(string)
	return s
}
