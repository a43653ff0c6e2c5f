package domain

import "time"

// PlaceholderImage is used for cart lines whose product has no image.
const PlaceholderImage = "/globe.svg"

// LineItem is one entry in a cart: a product (and optional variant) with a
// quantity. Price is frozen at add time; the engine never reprices lines.
type LineItem struct {
	Key        string            `json:"key"`
	ProductID  string            `json:"product_id"`
	VariantID  string            `json:"variant_id,omitempty"`
	Name       string            `json:"name"`
	Price      float64           `json:"price"`
	Image      string            `json:"image"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Quantity   int               `json:"quantity"`
	AddedAt    time.Time         `json:"added_at"`
}

// DeriveKey builds the stable identity for a cart line. Two lines with the
// same product but different variants are distinct; a missing variant
// collapses to a single canonical key per product.
func DeriveKey(productID, variantID string) string {
	if variantID == "" {
		return productID
	}
	return productID + ":" + variantID
}
