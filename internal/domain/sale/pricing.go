package sale

import (
	"math"

	"github.com/kiprono/dukapos-api/internal/domain/enum"
	"github.com/kiprono/dukapos-api/pkg/apperror"
)

// TaxPolicy maps a product category slug to its tax rate. Categories not in
// the map are zero-rated. The mapping is external configuration; the engine
// never hard-codes rates.
type TaxPolicy struct {
	rates map[string]float64
}

// NewTaxPolicy builds a policy charging rate for each of the given
// category slugs.
func NewTaxPolicy(rate float64, categories []string) TaxPolicy {
	rates := make(map[string]float64, len(categories))
	for _, c := range categories {
		rates[c] = rate
	}
	return TaxPolicy{rates: rates}
}

// RateFor returns the tax rate for a category slug, zero when unmapped.
func (p TaxPolicy) RateFor(category string) float64 {
	return p.rates[category]
}

// Discount is a sale-level discount specification. For DiscountTypeAmount the
// value is in currency units, for DiscountTypePercentage it is in [0, 100].
type Discount struct {
	Type  enum.DiscountType `json:"type"`
	Value float64           `json:"value"`
}

// Validate rejects malformed discount input before it reaches the
// calculator.
func (d Discount) Validate() error {
	if math.IsNaN(d.Value) || math.IsInf(d.Value, 0) || d.Value < 0 {
		return apperror.ErrInvalidDiscount
	}
	if d.Type == enum.DiscountTypePercentage && d.Value > 100 {
		return apperror.ErrInvalidDiscount
	}
	return nil
}

// Totals is the output of the pricing calculator, in cents.
type Totals struct {
	SubTotal       int64 `json:"sub_total"`
	DiscountAmount int64 `json:"discount_amount"`
	TaxAmount      int64 `json:"tax_amount"`
	Total          int64 `json:"total"`
}

// ComputeTotals derives subtotal, discount, tax and total for a set of line
// items. Tax is computed per line on the discount-reduced line total, so the
// overall discount is shared proportionally across taxable and zero-rated
// lines. Pure: identical inputs always yield identical output.
func ComputeTotals(items []LineItem, discount Discount, policy TaxPolicy) Totals {
	var subTotal int64
	for _, item := range items {
		subTotal += item.Total()
	}

	var discountAmount int64
	switch discount.Type {
	case enum.DiscountTypePercentage:
		discountAmount = roundCents(float64(subTotal) * discount.Value / 100)
	default:
		discountAmount = roundCents(discount.Value * 100)
	}
	if discountAmount > subTotal {
		discountAmount = subTotal
	}
	if discountAmount < 0 {
		discountAmount = 0
	}

	ratio := 0.0
	if subTotal > 0 {
		ratio = float64(discountAmount) / float64(subTotal)
	}

	var taxAmount int64
	for _, item := range items {
		rate := policy.RateFor(item.Category)
		if rate == 0 {
			continue
		}
		lineAfterDiscount := float64(item.Total()) * (1 - ratio)
		taxAmount += roundCents(lineAfterDiscount * rate)
	}

	return Totals{
		SubTotal:       subTotal,
		DiscountAmount: discountAmount,
		TaxAmount:      taxAmount,
		Total:          subTotal - discountAmount + taxAmount,
	}
}

func roundCents(v float64) int64 {
	return int64(math.Round(v))
}
