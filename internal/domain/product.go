package domain

// DiscountType values reported by the remote catalog API.
const (
	DiscountPercentage = "Percentage"
	DiscountFlat       = "Flat"
)

type Product struct {
	ID              ID        `json:"id"`
	Name            string    `json:"name"`
	RetailsPrice    float64   `json:"retails_price"`
	Discount        float64   `json:"discount,omitempty"`
	DiscountType    string    `json:"discount_type,omitempty"`
	DiscountedPrice *float64  `json:"discounted_price,omitempty"`
	CurrentStock    *int      `json:"current_stock,omitempty"`
	ImagePath       string    `json:"image_path,omitempty"`
	ImageURL        string    `json:"image_url,omitempty"`
	Brand           string    `json:"brand,omitempty"`
	Variants        []Variant `json:"variants,omitempty"`
}

// Variant is one purchasable configuration of a product.
type Variant struct {
	ID        ID     `json:"id"`
	Color     string `json:"color,omitempty"`
	ColorCode string `json:"color_code,omitempty"`
	Storage   string `json:"storage,omitempty"`
	Region    string `json:"region,omitempty"`
}

// EffectivePrice is the price used for filtering and sorting: the precomputed
// discounted price when the API supplies one, else the base retail price.
// Products with no usable price at all count as 0.
func (p Product) EffectivePrice() float64 {
	if p.DiscountedPrice != nil {
		return *p.DiscountedPrice
	}
	return p.RetailsPrice
}

// DiscountedUnitPrice applies the product's discount when the API did not
// precompute discounted_price. A percentage discount is taken off the retail
// price; anything else is treated as a flat amount. The result never goes
// below zero.
func (p Product) DiscountedUnitPrice() float64 {
	if p.DiscountedPrice != nil {
		return *p.DiscountedPrice
	}
	price := p.RetailsPrice
	if p.Discount > 0 {
		if p.DiscountType == DiscountPercentage {
			price -= price * p.Discount / 100
		} else {
			price -= p.Discount
		}
	}
	if price < 0 {
		return 0
	}
	return price
}

// Image returns the first usable display reference.
func (p Product) Image() string {
	if p.ImagePath != "" {
		return p.ImagePath
	}
	return p.ImageURL
}

type Category struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	ProductCount int    `json:"product_count"`

	// TotalPages is a best-effort pagination hint carried on the descriptor.
	// It may under- or over-state the true page count; API-reported metadata
	// always wins when present.
	TotalPages int `json:"totalPages"`
}
