// Package valueobject holds small column types shared by the pgx adapters.
package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrScanValueNotBytes indicates the database value is not JSON text.
var ErrScanValueNotBytes = errors.New("valueobject: jsonmap scan value is not []byte")

// JSONMap is a flat string map stored as a JSONB object. A nil map is
// written as {} so the column never holds SQL NULL.
type JSONMap map[string]string

// Value implements driver.Valuer.
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]string(j))
}

// Scan implements sql.Scanner. Non-string JSON values are kept in their
// textual form.
func (j *JSONMap) Scan(value any) error {
	if value == nil {
		*j = JSONMap{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case map[string]any:
		*j = fromAny(v)
		return nil
	default:
		return ErrScanValueNotBytes
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*j = fromAny(decoded)
	return nil
}

func fromAny(m map[string]any) JSONMap {
	out := make(JSONMap, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case string:
			out[k] = t
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	return out
}
