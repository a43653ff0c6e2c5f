package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestEffectivePrice_PrefersDiscounted(t *testing.T) {
	p := Product{RetailsPrice: 1000, DiscountedPrice: floatPtr(900)}
	assert.Equal(t, 900.0, p.EffectivePrice())
}

func TestEffectivePrice_FallsBackToRetail(t *testing.T) {
	p := Product{RetailsPrice: 1000}
	assert.Equal(t, 1000.0, p.EffectivePrice())
}

func TestEffectivePrice_MissingEverything(t *testing.T) {
	assert.Equal(t, 0.0, Product{}.EffectivePrice())
}

func TestDiscountedUnitPrice_Percentage(t *testing.T) {
	p := Product{RetailsPrice: 1000, Discount: 10, DiscountType: DiscountPercentage}
	assert.Equal(t, 900.0, p.DiscountedUnitPrice())
}

func TestDiscountedUnitPrice_Flat(t *testing.T) {
	p := Product{RetailsPrice: 1000, Discount: 150, DiscountType: DiscountFlat}
	assert.Equal(t, 850.0, p.DiscountedUnitPrice())
}

func TestDiscountedUnitPrice_NeverNegative(t *testing.T) {
	p := Product{RetailsPrice: 100, Discount: 500, DiscountType: DiscountFlat}
	assert.Equal(t, 0.0, p.DiscountedUnitPrice())
}

func TestDeriveKey_Deterministic(t *testing.T) {
	assert.Equal(t, DeriveKey("p1", "v1"), DeriveKey("p1", "v1"))
	assert.Equal(t, "p1", DeriveKey("p1", ""))
}

func TestDeriveKey_VariantsAreDistinct(t *testing.T) {
	assert.NotEqual(t, DeriveKey("p1", ""), DeriveKey("p1", "v1"))
	assert.NotEqual(t, DeriveKey("p1", "v1"), DeriveKey("p1", "v2"))
}

func TestID_UnmarshalString(t *testing.T) {
	var id ID
	require.NoError(t, json.Unmarshal([]byte(`"abc-7"`), &id))
	assert.Equal(t, ID("abc-7"), id)
}

func TestID_UnmarshalNumber(t *testing.T) {
	var id ID
	require.NoError(t, json.Unmarshal([]byte(`42`), &id))
	assert.Equal(t, ID("42"), id)
}

func TestID_UnmarshalNull(t *testing.T) {
	var id ID
	require.NoError(t, json.Unmarshal([]byte(`null`), &id))
	assert.Equal(t, ID(""), id)
}

func TestProduct_DecodeNumericID(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"id": 7, "name": "iPhone 15", "retails_price": 999}`), &p))
	assert.Equal(t, ID("7"), p.ID)
	assert.Equal(t, "iPhone 15", p.Name)
}
