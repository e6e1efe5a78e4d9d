package sale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiprono/dukapos-api/internal/domain/enum"
	"github.com/kiprono/dukapos-api/pkg/apperror"
)

func TestReconciler_SplitPaymentCoversTotal(t *testing.T) {
	r := NewReconciler()
	require.NoError(t, r.Add(Payment{Method: enum.PaymentMethodCash, Amount: 20000}))
	require.NoError(t, r.Add(Payment{Method: enum.PaymentMethodCard, Amount: 5380, Reference: "REF1"}))

	state := r.State(25380)

	assert.Equal(t, int64(25380), state.AmountPaid)
	assert.Equal(t, int64(0), state.Remaining)
	assert.Equal(t, int64(0), state.Change)
}

func TestReconciler_UnderPayment(t *testing.T) {
	r := NewReconciler()
	require.NoError(t, r.Add(Payment{Method: enum.PaymentMethodCash, Amount: 20000}))

	state := r.State(25380)

	assert.Equal(t, int64(5380), state.Remaining)
	assert.Equal(t, int64(0), state.Change)
}

func TestReconciler_CashOverPaymentYieldsChange(t *testing.T) {
	r := NewReconciler()
	require.NoError(t, r.Add(Payment{Method: enum.PaymentMethodCash, Amount: 30000}))

	state := r.State(25380)

	assert.Equal(t, int64(0), state.Remaining)
	assert.Equal(t, int64(4620), state.Change)
}

func TestReconciler_UnreferencedDigitalPaymentExcluded(t *testing.T) {
	r := NewReconciler()
	require.NoError(t, r.Add(Payment{Method: enum.PaymentMethodMpesa, Amount: 25380}))

	state := r.State(25380)

	assert.Equal(t, int64(0), state.AmountPaid, "pending contribution must not count")
	assert.Equal(t, int64(25380), state.Remaining)
	assert.True(t, r.HasIncomplete())

	// Attaching the reference completes the contribution.
	require.NoError(t, r.Update(0, 25380, "MPE-77881"))
	state = r.State(25380)
	assert.Equal(t, int64(0), state.Remaining)
	assert.False(t, r.HasIncomplete())
}

func TestReconciler_AtMostOneOfRemainingAndChange(t *testing.T) {
	for _, paid := range []int64{0, 10000, 25380, 40000} {
		r := NewReconciler()
		require.NoError(t, r.Add(Payment{Method: enum.PaymentMethodCash, Amount: paid}))

		state := r.State(25380)
		assert.False(t, state.Remaining > 0 && state.Change > 0,
			"paid %d: remaining and change cannot both be nonzero", paid)
	}
}

func TestReconciler_AddNegativeAmount(t *testing.T) {
	r := NewReconciler()

	err := r.Add(Payment{Method: enum.PaymentMethodCash, Amount: -1})
	assert.ErrorIs(t, err, apperror.ErrInvalidAmount)
	assert.Empty(t, r.Payments())
}

func TestReconciler_UpdateAndRemove(t *testing.T) {
	r := NewReconciler()
	require.NoError(t, r.Add(Payment{Method: enum.PaymentMethodCash, Amount: 10000}))
	require.NoError(t, r.Add(Payment{Method: enum.PaymentMethodCard, Amount: 5000, Reference: "REF1"}))

	require.NoError(t, r.Update(0, 12000, ""))
	assert.Equal(t, int64(17000), r.AmountPaid())

	require.NoError(t, r.Remove(1))
	require.Len(t, r.Payments(), 1)
	assert.Equal(t, int64(12000), r.AmountPaid())

	assert.Error(t, r.Update(5, 100, ""))
	assert.Error(t, r.Remove(5))
	assert.ErrorIs(t, r.Update(0, -5, ""), apperror.ErrInvalidAmount)
}
