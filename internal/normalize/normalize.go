// Package normalize converts heterogeneous cart and order line shapes into
// canonical payment records. The raw union shape never propagates past this
// boundary: each field is resolved through an ordered list of extraction
// rules and the result is a single canonical record type.
package normalize

import (
	"kart-pay/internal/model"
)

// Items produces one NormalizedItem per raw line item, preserving order.
// No item is ever silently excluded here: rows with no resolvable product
// ID or quantity become zero-value records, so a single downstream filter
// (Payable) applies the one exclusion rule.
func Items(raw []model.CartLineItem) []model.NormalizedItem {
	out := make([]model.NormalizedItem, len(raw))
	for i, it := range raw {
		out[i] = model.NormalizedItem{
			ProductID:      productID(it),
			VariantID:      variantID(it),
			Quantity:       quantity(it),
			UnitPriceMajor: unitPrice(it),
			DisplayName:    displayName(it),
		}
	}
	return out
}

// Payable filters normalized items down to the ones eligible for payment
// (non-empty product ID, quantity > 0) and deduplicates by the composite
// (productID, variantID) key. The first occurrence wins and insertion
// order is preserved.
func Payable(items []model.NormalizedItem) []model.PaymentItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]model.PaymentItem, 0, len(items))

	for _, it := range items {
		if it.ProductID == "" || it.Quantity <= 0 {
			continue
		}
		p := model.PaymentItem{
			ProductID:      it.ProductID,
			VariantID:      it.VariantID,
			Quantity:       it.Quantity,
			UnitPriceMajor: it.UnitPriceMajor,
			DisplayName:    it.DisplayName,
		}
		if _, dup := seen[p.Key()]; dup {
			continue
		}
		seen[p.Key()] = struct{}{}
		out = append(out, p)
	}
	return out
}

// productID resolves the product identifier: direct field first, then the
// nested product reference.
func productID(it model.CartLineItem) string {
	if it.ProductID != "" {
		return it.ProductID
	}
	if it.Product != nil {
		return it.Product.ID
	}
	return ""
}

// variantID resolves the variant identifier: direct field first, then the
// nested variant reference.
func variantID(it model.CartLineItem) string {
	if it.VariantID != "" {
		return it.VariantID
	}
	if it.Variant != nil {
		return it.Variant.ID
	}
	return ""
}

// quantity coerces the raw quantity to a non-negative integer, defaulting
// to zero when absent or invalid.
func quantity(it model.CartLineItem) int {
	q := int(it.Quantity.Float64())
	if q < 0 {
		return 0
	}
	return q
}

// unitPrice resolves the unit price in major units from the first present
// alias: variant price field, nested variant price, generic price field,
// unit price field, defaulting to zero. Negative values clamp to zero.
func unitPrice(it model.CartLineItem) float64 {
	var v float64
	switch {
	case it.VariantPrice != nil:
		v = it.VariantPrice.Float64()
	case it.Variant != nil && it.Variant.Price != nil:
		v = it.Variant.Price.Float64()
	case it.Price != nil:
		v = it.Price.Float64()
	case it.UnitPrice != nil:
		v = it.UnitPrice.Float64()
	}
	if v < 0 {
		return 0
	}
	return v
}

func displayName(it model.CartLineItem) string {
	if it.ProductName != "" {
		return it.ProductName
	}
	return it.Title
}
