package sale

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiprono/dukapos-api/internal/domain/enum"
	"github.com/kiprono/dukapos-api/pkg/apperror"
)

func taxedPolicy() TaxPolicy {
	return NewTaxPolicy(0.16, []string{"general"})
}

func twoLineCart() []LineItem {
	return []LineItem{
		{ProductID: uuid.New(), Name: "Soda", Category: "general", UnitPrice: 10000, Stock: 10, Quantity: 2},
		{ProductID: uuid.New(), Name: "Bread", Category: "bakery", UnitPrice: 5000, Stock: 10, Quantity: 1},
	}
}

func TestComputeTotals_ProportionalTaxAfterDiscount(t *testing.T) {
	// Product A: 100.00 x 2 taxed at 16%, product B: 50.00 x 1 zero-rated.
	// 10% discount: subtotal 250.00, discount 25.00, line A after discount
	// 180.00 -> tax 28.80, total 253.80.
	totals := ComputeTotals(twoLineCart(), Discount{Type: enum.DiscountTypePercentage, Value: 10}, taxedPolicy())

	assert.Equal(t, int64(25000), totals.SubTotal)
	assert.Equal(t, int64(2500), totals.DiscountAmount)
	assert.Equal(t, int64(2880), totals.TaxAmount)
	assert.Equal(t, int64(25380), totals.Total)
}

func TestComputeTotals_NoDiscount(t *testing.T) {
	totals := ComputeTotals(twoLineCart(), Discount{}, taxedPolicy())

	assert.Equal(t, int64(25000), totals.SubTotal)
	assert.Equal(t, int64(0), totals.DiscountAmount)
	assert.Equal(t, int64(3200), totals.TaxAmount)
	assert.Equal(t, int64(28200), totals.Total)
}

func TestComputeTotals_AmountDiscountClampedToSubtotal(t *testing.T) {
	items := []LineItem{
		{ProductID: uuid.New(), Name: "Milk", Category: "dairy", UnitPrice: 6000, Stock: 5, Quantity: 1},
	}

	totals := ComputeTotals(items, Discount{Type: enum.DiscountTypeAmount, Value: 500}, taxedPolicy())

	assert.Equal(t, int64(6000), totals.SubTotal)
	assert.Equal(t, int64(6000), totals.DiscountAmount, "discount clamps to subtotal")
	assert.Equal(t, int64(0), totals.Total)
}

func TestComputeTotals_EmptyCart(t *testing.T) {
	totals := ComputeTotals(nil, Discount{Type: enum.DiscountTypePercentage, Value: 50}, taxedPolicy())

	assert.Equal(t, Totals{}, totals)
}

func TestComputeTotals_Idempotent(t *testing.T) {
	items := twoLineCart()
	discount := Discount{Type: enum.DiscountTypePercentage, Value: 12.5}

	first := ComputeTotals(items, discount, taxedPolicy())
	second := ComputeTotals(items, discount, taxedPolicy())

	assert.Equal(t, first, second)
	assert.Equal(t, first.SubTotal-first.DiscountAmount+first.TaxAmount, first.Total)
}

func TestDiscount_Validate(t *testing.T) {
	tests := []struct {
		name     string
		discount Discount
		wantErr  error
	}{
		{"valid percentage", Discount{Type: enum.DiscountTypePercentage, Value: 10}, nil},
		{"valid amount", Discount{Type: enum.DiscountTypeAmount, Value: 25}, nil},
		{"zero", Discount{}, nil},
		{"negative", Discount{Type: enum.DiscountTypeAmount, Value: -1}, apperror.ErrInvalidDiscount},
		{"nan", Discount{Type: enum.DiscountTypeAmount, Value: math.NaN()}, apperror.ErrInvalidDiscount},
		{"percentage above 100", Discount{Type: enum.DiscountTypePercentage, Value: 101}, apperror.ErrInvalidDiscount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.discount.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTaxPolicy_RateFor(t *testing.T) {
	policy := NewTaxPolicy(0.16, []string{"general", "electronics"})

	assert.Equal(t, 0.16, policy.RateFor("general"))
	assert.Equal(t, 0.16, policy.RateFor("electronics"))
	assert.Equal(t, 0.0, policy.RateFor("bakery"))
	assert.Equal(t, 0.0, policy.RateFor(""))
}
