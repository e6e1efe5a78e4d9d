package request

import "github.com/google/uuid"

// AddItemRequest adds one unit of a product to the active cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// SetQuantityRequest sets the quantity of an existing cart line.
// A quantity of zero removes the line.
type SetQuantityRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// SetCustomerRequest attaches a customer to the sale; a null ID detaches
type SetCustomerRequest struct {
	CustomerID *uuid.UUID `json:"customer_id"`
}

// SetNoteRequest sets the free-text note on the sale
type SetNoteRequest struct {
	Note string `json:"note" binding:"max=1000"`
}

// SetDiscountRequest applies a sale-level discount. Amount discounts are in
// currency units, percentage discounts in 0-100.
type SetDiscountRequest struct {
	Type  string  `json:"type" binding:"required,oneof=amount percentage"`
	Value float64 `json:"value"`
}

// AddPaymentRequest records one payment contribution in currency units
type AddPaymentRequest struct {
	Method    string  `json:"method" binding:"required"`
	Amount    float64 `json:"amount"`
	Reference string  `json:"reference" binding:"max=100"`
}

// UpdatePaymentRequest mutates a recorded contribution
type UpdatePaymentRequest struct {
	Amount    float64 `json:"amount"`
	Reference string  `json:"reference" binding:"max=100"`
}
