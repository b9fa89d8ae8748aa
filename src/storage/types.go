package storage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// MessageList stores an ordered message sequence as a JSON array column.
type MessageList []Message

// Scan implements the sql.Scanner interface for MessageList
func (m *MessageList) Scan(value interface{}) error {
	if value == nil {
		*m = MessageList{}
		return nil
	}

	switch v := value.(type) {
	case string:
		if v == "" || v == "[]" {
			*m = MessageList{}
			return nil
		}
		return json.Unmarshal([]byte(v), m)
	case []byte:
		if len(v) == 0 || string(v) == "[]" {
			*m = MessageList{}
			return nil
		}
		return json.Unmarshal(v, m)
	default:
		return fmt.Errorf("cannot scan type %T into MessageList", value)
	}
}

// Value implements the driver.Valuer interface for MessageList
func (m MessageList) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Metadata is the open key-value bag attached to a chat (workflow flags such
// as rewind pointers). Stored as a nullable JSON object column.
type Metadata map[string]any

// Scan implements the sql.Scanner interface for Metadata
func (md *Metadata) Scan(value interface{}) error {
	if value == nil {
		*md = nil
		return nil
	}

	switch v := value.(type) {
	case string:
		if v == "" {
			*md = nil
			return nil
		}
		return json.Unmarshal([]byte(v), md)
	case []byte:
		if len(v) == 0 {
			*md = nil
			return nil
		}
		return json.Unmarshal(v, md)
	default:
		return fmt.Errorf("cannot scan type %T into Metadata", value)
	}
}

// Value implements the driver.Valuer interface for Metadata
func (md Metadata) Value() (driver.Value, error) {
	if md == nil {
		return nil, nil
	}
	b, err := json.Marshal(md)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
