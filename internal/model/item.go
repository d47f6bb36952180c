package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Number is a tolerant numeric field for heterogeneous line-item JSON.
// It accepts a JSON number, a numeric string, or null; anything else
// decodes to zero rather than failing the whole payload.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*n = 0
		return nil
	}
	*n = Number(f)
	return nil
}

// Float64 returns the underlying value.
func (n Number) Float64() float64 {
	return float64(n)
}

// ProductRef is a nested product reference on a raw line item.
type ProductRef struct {
	ID string `json:"id"`
}

// VariantRef is a nested variant reference on a raw line item.
type VariantRef struct {
	ID    string  `json:"id"`
	Price *Number `json:"price,omitempty"`
}

// CartLineItem is a raw line item as received from cart or order sources.
// The same logical field may arrive under several aliases depending on the
// source, so this shape is never trusted as canonical: every CartLineItem
// passes through normalize before payment use.
type CartLineItem struct {
	ProductID string      `json:"product_id,omitempty"`
	Product   *ProductRef `json:"product,omitempty"`

	VariantID string      `json:"variant_id,omitempty"`
	Variant   *VariantRef `json:"variant,omitempty"`

	Quantity Number `json:"quantity,omitempty"`

	// Unit price aliases, resolved in this order.
	VariantPrice *Number `json:"variant_price,omitempty"`
	Price        *Number `json:"price,omitempty"`
	UnitPrice    *Number `json:"unit_price,omitempty"`

	// Display fields carried through for tracking on success.
	ProductName string `json:"product_name,omitempty"`
	Title       string `json:"title,omitempty"`
}

// NormalizedItem is the canonical line-item record. It is constructed only
// by the normalizer; rows with an empty product ID or a non-positive
// quantity are kept here and excluded later by a single payable filter.
type NormalizedItem struct {
	ProductID      string
	VariantID      string
	Quantity       int
	UnitPriceMajor float64
	DisplayName    string
}

// PaymentItem is a NormalizedItem that passed the payable filter and
// first-occurrence deduplication by (ProductID, VariantID). No two
// PaymentItems within one submission share that key.
type PaymentItem struct {
	ProductID      string
	VariantID      string
	Quantity       int
	UnitPriceMajor float64
	DisplayName    string
}

// Key returns the composite deduplication key.
func (p PaymentItem) Key() string {
	return p.ProductID + ":" + p.VariantID
}
