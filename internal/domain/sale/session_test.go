package sale

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiprono/dukapos-api/internal/domain/enum"
	"github.com/kiprono/dukapos-api/pkg/apperror"
)

func newTestSession(t *testing.T) (*Session, ProductInfo, ProductInfo) {
	t.Helper()
	sess := NewSession(taxedPolicy())
	a := ProductInfo{ID: uuid.New(), Name: "Soda", Category: "general", UnitPrice: 10000, Stock: 10}
	b := ProductInfo{ID: uuid.New(), Name: "Bread", Category: "bakery", UnitPrice: 5000, Stock: 10}
	return sess, a, b
}

// reconciledSession builds the worked two-line scenario: subtotal 250.00,
// 10% discount, total 253.80, fully paid by cash 200.00 + card 53.80.
func reconciledSession(t *testing.T) *Session {
	t.Helper()
	sess, a, b := newTestSession(t)
	require.NoError(t, sess.AddItem(a))
	require.NoError(t, sess.AddItem(a))
	require.NoError(t, sess.AddItem(b))
	require.NoError(t, sess.SetDiscount(Discount{Type: enum.DiscountTypePercentage, Value: 10}))
	require.NoError(t, sess.BeginCheckout())
	require.NoError(t, sess.AddPayment(Payment{Method: enum.PaymentMethodCash, Amount: 20000}))
	require.NoError(t, sess.AddPayment(Payment{Method: enum.PaymentMethodCard, Amount: 5380, Reference: "REF1"}))
	return sess
}

func TestSession_BeginCheckout_EmptyCart(t *testing.T) {
	sess, _, _ := newTestSession(t)

	err := sess.BeginCheckout()
	assert.ErrorIs(t, err, apperror.ErrEmptyCart)
	assert.Equal(t, PhaseBuilding, sess.Phase())
}

func TestSession_CartLockedWhileReconciling(t *testing.T) {
	sess, a, _ := newTestSession(t)
	require.NoError(t, sess.AddItem(a))
	require.NoError(t, sess.BeginCheckout())

	assert.ErrorIs(t, sess.AddItem(a), apperror.ErrInvalidTransition)
	assert.ErrorIs(t, sess.SetQuantity(a.ID, 5), apperror.ErrInvalidTransition)
}

func TestSession_PaymentsOnlyWhileReconciling(t *testing.T) {
	sess, _, _ := newTestSession(t)

	err := sess.AddPayment(Payment{Method: enum.PaymentMethodCash, Amount: 100})
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
}

func TestSession_BeginCommit_FullyPaid(t *testing.T) {
	sess := reconciledSession(t)

	rec := sess.Reconciliation()
	assert.Equal(t, int64(25380), rec.AmountDue)
	assert.Equal(t, int64(0), rec.Remaining)
	assert.Equal(t, int64(0), rec.Change)

	require.NoError(t, sess.BeginCommit())
	assert.Equal(t, PhaseCommitting, sess.Phase())
}

func TestSession_BeginCommit_UnderPayment(t *testing.T) {
	sess, a, b := newTestSession(t)
	require.NoError(t, sess.AddItem(a))
	require.NoError(t, sess.AddItem(a))
	require.NoError(t, sess.AddItem(b))
	require.NoError(t, sess.SetDiscount(Discount{Type: enum.DiscountTypePercentage, Value: 10}))
	require.NoError(t, sess.BeginCheckout())
	require.NoError(t, sess.AddPayment(Payment{Method: enum.PaymentMethodCash, Amount: 20000}))

	err := sess.BeginCommit()
	assert.ErrorIs(t, err, apperror.ErrUnderPayment)
	assert.Equal(t, int64(5380), sess.Reconciliation().Remaining)
	assert.Equal(t, PhaseReconciling, sess.Phase())
}

func TestSession_BeginCommit_MissingReference(t *testing.T) {
	sess, a, _ := newTestSession(t)
	require.NoError(t, sess.AddItem(a))
	require.NoError(t, sess.BeginCheckout())
	require.NoError(t, sess.AddPayment(Payment{Method: enum.PaymentMethodMpesa, Amount: 11600}))

	err := sess.BeginCommit()
	assert.ErrorIs(t, err, apperror.ErrMissingReference)
}

func TestSession_CommitLifecycle(t *testing.T) {
	sess := reconciledSession(t)
	require.NoError(t, sess.BeginCommit())

	// Cancel is refused while the commit is in flight.
	assert.ErrorIs(t, sess.Cancel(), apperror.ErrCommitInFlight)

	sess.CompleteCommit()
	assert.Equal(t, PhaseBuilding, sess.Phase())
	assert.True(t, sess.Cart().IsEmpty())
	assert.Empty(t, sess.Payments())
	assert.Equal(t, Discount{}, sess.Discount())
}

func TestSession_FailedCommitPreservesState(t *testing.T) {
	sess := reconciledSession(t)
	require.NoError(t, sess.BeginCommit())

	sess.FailCommit()

	assert.Equal(t, PhaseFailed, sess.Phase())
	assert.Len(t, sess.Cart().Items(), 2)
	assert.Len(t, sess.Payments(), 2)

	// A failed commit can be retried with the preserved state.
	require.NoError(t, sess.BeginCommit())
	assert.Equal(t, PhaseCommitting, sess.Phase())
}

func TestSession_CancelDiscardsPaymentsKeepsCart(t *testing.T) {
	sess := reconciledSession(t)

	require.NoError(t, sess.Cancel())

	assert.Equal(t, PhaseBuilding, sess.Phase())
	assert.Empty(t, sess.Payments())
	assert.Len(t, sess.Cart().Items(), 2)
}

func TestSession_ParkAndResume(t *testing.T) {
	sess, a, b := newTestSession(t)
	customerID := uuid.New()
	require.NoError(t, sess.AddItem(a))
	require.NoError(t, sess.AddItem(b))
	require.NoError(t, sess.AddItem(b))
	require.NoError(t, sess.SetCustomer(&customerID))
	require.NoError(t, sess.SetNote("table 4"))

	snap, err := sess.Park()
	require.NoError(t, err)
	assert.True(t, sess.Cart().IsEmpty(), "active cart resets after park")

	require.NoError(t, sess.Resume(snap))
	assert.Equal(t, snap.Items, sess.Cart().Items())
	require.NotNil(t, sess.Cart().CustomerID())
	assert.Equal(t, customerID, *sess.Cart().CustomerID())
	assert.Equal(t, "table 4", sess.Cart().Note())
}

func TestSession_ParkEmptyCart(t *testing.T) {
	sess, _, _ := newTestSession(t)

	_, err := sess.Park()
	assert.ErrorIs(t, err, apperror.ErrEmptyCart)
}

func TestSession_ResumeOverNonEmptyCart(t *testing.T) {
	sess, a, _ := newTestSession(t)
	require.NoError(t, sess.AddItem(a))
	snap, err := sess.Park()
	require.NoError(t, err)

	require.NoError(t, sess.AddItem(a))
	err = sess.Resume(snap)
	require.Error(t, err)
	assert.Equal(t, 409, apperror.GetAppError(err).Code)
}

func TestSession_ClearCart(t *testing.T) {
	sess, a, _ := newTestSession(t)
	require.NoError(t, sess.AddItem(a))
	require.NoError(t, sess.SetNote("hold for pickup"))
	require.NoError(t, sess.SetDiscount(Discount{Type: enum.DiscountTypePercentage, Value: 10}))

	require.NoError(t, sess.ClearCart())
	assert.True(t, sess.Cart().IsEmpty())
	assert.Empty(t, sess.Cart().Note())
	assert.Equal(t, Discount{}, sess.Discount())

	// Clearing is a cart operation, locked out once checkout starts.
	require.NoError(t, sess.AddItem(a))
	require.NoError(t, sess.BeginCheckout())
	assert.ErrorIs(t, sess.ClearCart(), apperror.ErrInvalidTransition)
}
