package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// LineItem is one purchased product inside an order snapshot.
type LineItem struct {
	Name     string  `json:"name"`
	Quantity uint    `json:"quantity"`
	Price    float64 `json:"price,omitempty"`
}

// Snapshot is the structured line-item list stored on an order. It is encoded
// as JSON text in the orders table; Scan also accepts rows written before the
// column was structured, where the value is an arbitrary text blob.
type Snapshot []LineItem

func (s Snapshot) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("snapshot: marshal: %w", err)
	}
	return string(data), nil
}

func (s *Snapshot) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("snapshot: unsupported column type %T", value)
	}

	if len(data) == 0 {
		*s = nil
		return nil
	}

	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		// Legacy rows may hold text that is not a line-item list.
		*s = nil
		return nil
	}
	*s = items
	return nil
}
