package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FoodItem represents a catalog record for a purchasable menu item.
// Beyond the fixed fields, clients may attach arbitrary descriptive
// attributes (image URL, category, description, ...) which are stored
// inline in the document and round-tripped verbatim.
type FoodItem struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name          string             `bson:"name" json:"name"`
	Price         float64            `bson:"price" json:"price"`
	Quantity      int                `bson:"quantity" json:"quantity"`
	PurchaseCount int                `bson:"purchaseCount" json:"purchaseCount"`
	OwnerEmail    string             `bson:"ownerEmail" json:"ownerEmail"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	Extra         map[string]any     `bson:",inline" json:"-"`
}

// foodFields lists the JSON keys owned by the fixed FoodItem fields.
// Anything else in a payload is treated as a passthrough attribute.
var foodFields = map[string]bool{
	"_id":           true,
	"name":          true,
	"price":         true,
	"quantity":      true,
	"purchaseCount": true,
	"ownerEmail":    true,
	"createdAt":     true,
}

// foodAlias avoids recursing into the custom (un)marshallers.
type foodAlias FoodItem

// MarshalJSON flattens the passthrough attributes into the top-level object.
func (f FoodItem) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(foodAlias(f))
	if err != nil {
		return nil, err
	}

	if len(f.Extra) == 0 {
		return base, nil
	}

	merged := make(map[string]any, len(f.Extra)+len(foodFields))
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range f.Extra {
		if !foodFields[k] {
			merged[k] = v
		}
	}

	return json.Marshal(merged)
}

// UnmarshalJSON collects unknown top-level keys into Extra.
func (f *FoodItem) UnmarshalJSON(data []byte) error {
	var a foodAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for k, v := range raw {
		if foodFields[k] {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return err
		}
		if a.Extra == nil {
			a.Extra = make(map[string]any)
		}
		a.Extra[k] = val
	}

	*f = FoodItem(a)
	return nil
}
