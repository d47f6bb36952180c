package model

// CheckoutContext carries everything the checkout flow knows at the moment
// a payment attempt starts. Amount fields arrive in minor units but are
// tolerant numbers; the payload builder floors and clamps them before any
// charge is built.
type CheckoutContext struct {
	AmountMinor   Number            `json:"amount" validate:"required"`
	Currency      string            `json:"currency,omitempty" validate:"omitempty,len=3"`
	Description   string            `json:"description,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Email         string            `json:"email,omitempty" validate:"omitempty,email"`
	Name          string            `json:"name,omitempty"`
	Phone         string            `json:"phone,omitempty"`
	OrderID       string            `json:"order_id,omitempty"`
	CheckoutToken string            `json:"checkout_token,omitempty"`
	ExpectedTotal Number            `json:"expected_total,omitempty"`
	DeliveryFee   Number            `json:"delivery_fee,omitempty"`

	ShippingAddress *AddressInput `json:"shipping_address,omitempty"`
	BillingAddress  *AddressInput `json:"billing_address,omitempty"`

	Items                []CartLineItem             `json:"items,omitempty"`
	DeliveryExpectations []DeliveryExpectationInput `json:"delivery_expectations,omitempty"`
	PickupLocations      []PickupLocationInput      `json:"pickup_locations,omitempty"`
}

// PickupMode reports whether the checkout's delivery expectation is pickup.
func (c CheckoutContext) PickupMode() bool {
	return len(c.DeliveryExpectations) > 0 && c.DeliveryExpectations[0].Type == DeliveryTypePickup
}

// ProviderRefs holds the provider-side transaction identifiers handed back
// on buyer approval.
type ProviderRefs struct {
	OrderID string `json:"orderID"`
	PayerID string `json:"payerID"`
}
