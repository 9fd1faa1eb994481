package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/webhookx-io/hookdash/pkg/types"
)

type BaseModel struct {
	CreatedAt types.Time `db:"created_at" json:"created_at"`
	UpdatedAt types.Time `db:"updated_at" json:"updated_at"`
}

type Headers map[string]string

func (m *Headers) Scan(src interface{}) error {
	b, err := toBytes(src)
	if err != nil || b == nil {
		return err
	}
	return json.Unmarshal(b, m)
}

func (m Headers) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// JSON is a raw jsonb column
type JSON json.RawMessage

func (m *JSON) Scan(src interface{}) error {
	b, err := toBytes(src)
	if err != nil {
		return err
	}
	*m = append((*m)[0:0], b...)
	return nil
}

func (m JSON) Value() (driver.Value, error) {
	if len(m) == 0 {
		return []byte("null"), nil
	}
	return []byte(m), nil
}

func (m JSON) MarshalJSON() ([]byte, error) {
	if len(m) == 0 {
		return []byte("null"), nil
	}
	return m, nil
}

func (m *JSON) UnmarshalJSON(b []byte) error {
	*m = append((*m)[0:0], b...)
	return nil
}

func toBytes(src interface{}) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("cannot scan %T", src)
	}
}
