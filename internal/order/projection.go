package order

import (
	"encoding/json"

	"github.com/kaveesha/techstore/internal/models"
)

// UnknownProduct is the display name for snapshot items that lost theirs.
const UnknownProduct = "Unknown Product"

// ProjectLineItems normalizes an order's stored product snapshot into display
// rows. The snapshot may arrive structured (models.Snapshot, written by this
// code) or as a serialized JSON blob (rows imported from the old system).
// Items missing a name render as UnknownProduct; a missing quantity stays 0.
// A blob that cannot be decoded projects to no rows rather than an error.
func ProjectLineItems(raw any) []models.LineItem {
	var items []models.LineItem

	switch v := raw.(type) {
	case models.Snapshot:
		items = append(items, v...)
	case []models.LineItem:
		items = append(items, v...)
	case []byte:
		if json.Unmarshal(v, &items) != nil {
			return nil
		}
	case string:
		if json.Unmarshal([]byte(v), &items) != nil {
			return nil
		}
	case nil:
		return nil
	default:
		return nil
	}

	for i := range items {
		if items[i].Name == "" {
			items[i].Name = UnknownProduct
		}
	}
	return items
}

// Contact is the buyer a staff member should reach about an order: either the
// registered account or the guest checkout fields, never an ad-hoc mix.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Guest bool   `json:"guest"`
}

// ContactOf selects the buyer variant for one order. Registered user fields
// win when both are populated.
func ContactOf(o *models.Order) Contact {
	if o.UserEmail != "" || o.UserName != "" {
		return Contact{
			Name:  o.UserName,
			Email: o.UserEmail,
			Phone: o.CustomerPhone,
		}
	}
	return Contact{
		Name:  o.CustomerName,
		Email: o.CustomerEmail,
		Phone: o.CustomerPhone,
		Guest: true,
	}
}
