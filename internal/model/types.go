package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// UUIDSlice stores a list of uuids as a jsonb column.
type UUIDSlice []uuid.UUID

func (s UUIDSlice) Value() (driver.Value, error) {
	if s == nil {
		s = UUIDSlice{}
	}
	return json.Marshal(s)
}

func (s *UUIDSlice) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = UUIDSlice{}
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("uuid slice: unsupported source type %T", src)
	}
}
