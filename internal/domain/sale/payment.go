package sale

import (
	"github.com/kiprono/dukapos-api/internal/domain/enum"
	"github.com/kiprono/dukapos-api/pkg/apperror"
)

// Payment is one contribution toward the amount due. A single-method cash
// sale is just the one-contribution case.
type Payment struct {
	Method    enum.PaymentMethod `json:"method"`
	Amount    int64              `json:"amount"`
	Reference string             `json:"reference,omitempty"`
}

// Complete reports whether this contribution counts toward the amount paid.
// Non-cash methods need a transaction reference first; until then the
// contribution is treated as pending and excluded from reconciliation.
func (p Payment) Complete() bool {
	return p.Method.IsCash() || p.Reference != ""
}

// Reconciliation is the derived payment state for a given amount due. At
// most one of Remaining and Change is nonzero.
type Reconciliation struct {
	AmountDue  int64 `json:"amount_due"`
	AmountPaid int64 `json:"amount_paid"`
	Remaining  int64 `json:"remaining"`
	Change     int64 `json:"change"`
}

// Reconciler accumulates payment contributions and matches them against the
// amount due. It never stores derived values; State recomputes them.
type Reconciler struct {
	payments []Payment
}

// NewReconciler creates an empty reconciler.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Add appends a contribution. Negative amounts fail with ErrInvalidAmount.
func (r *Reconciler) Add(p Payment) error {
	if p.Amount < 0 {
		return apperror.ErrInvalidAmount
	}
	r.payments = append(r.payments, p)
	return nil
}

// Update replaces the amount and reference of an existing contribution.
func (r *Reconciler) Update(index int, amount int64, reference string) error {
	if index < 0 || index >= len(r.payments) {
		return apperror.NewNotFoundError("Payment contribution")
	}
	if amount < 0 {
		return apperror.ErrInvalidAmount
	}
	r.payments[index].Amount = amount
	r.payments[index].Reference = reference
	return nil
}

// Remove deletes a contribution by index.
func (r *Reconciler) Remove(index int) error {
	if index < 0 || index >= len(r.payments) {
		return apperror.NewNotFoundError("Payment contribution")
	}
	r.payments = append(r.payments[:index], r.payments[index+1:]...)
	return nil
}

// Clear discards all contributions.
func (r *Reconciler) Clear() {
	r.payments = nil
}

// Payments returns the contributions in insertion order. The slice is a copy.
func (r *Reconciler) Payments() []Payment {
	payments := make([]Payment, len(r.payments))
	copy(payments, r.payments)
	return payments
}

// AmountPaid sums the complete contributions. Un-referenced digital payments
// are excluded, which forces Remaining above zero until they are referenced.
func (r *Reconciler) AmountPaid() int64 {
	var paid int64
	for _, p := range r.payments {
		if p.Complete() {
			paid += p.Amount
		}
	}
	return paid
}

// HasIncomplete reports whether any non-cash contribution still lacks its
// required reference.
func (r *Reconciler) HasIncomplete() bool {
	for _, p := range r.payments {
		if !p.Complete() {
			return true
		}
	}
	return false
}

// State recomputes the reconciliation against the given amount due.
func (r *Reconciler) State(amountDue int64) Reconciliation {
	paid := r.AmountPaid()
	rec := Reconciliation{
		AmountDue:  amountDue,
		AmountPaid: paid,
	}
	if paid < amountDue {
		rec.Remaining = amountDue - paid
	} else {
		rec.Change = paid - amountDue
	}
	return rec
}
