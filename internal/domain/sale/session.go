package sale

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/kiprono/dukapos-api/pkg/apperror"
)

// Phase is the checkout state of a sale session.
type Phase int

const (
	// PhaseBuilding: the cart is being assembled.
	PhaseBuilding Phase = iota
	// PhaseReconciling: the cart is locked, payment contributions are being
	// collected against the amount due.
	PhaseReconciling
	// PhaseCommitting: the commit sequence (stock reservation + sale
	// persistence) is in flight. Cancel is refused until it finishes.
	PhaseCommitting
	// PhaseFailed: the last commit attempt failed. Cart and payments are
	// preserved; the session can retry the commit or reopen the cart.
	PhaseFailed
)

func (p Phase) String() string {
	names := [...]string{"Building", "Reconciling", "Committing", "Failed"}
	if int(p) < 0 || int(p) >= len(names) {
		return "Building"
	}
	return names[p]
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// Session is the sale-session state machine: the active cart, its discount,
// and the payment reconciler, transitioned only by named operations that
// either return a new state or a typed error. One session serves one
// terminal and is not safe for concurrent use; callers serialize access.
type Session struct {
	ID         uuid.UUID
	cart       *Cart
	reconciler *Reconciler
	discount   Discount
	policy     TaxPolicy
	phase      Phase
	CreatedAt  time.Time
}

// NewSession creates an empty session in the Building phase.
func NewSession(policy TaxPolicy) *Session {
	return &Session{
		ID:         uuid.New(),
		cart:       NewCart(),
		reconciler: NewReconciler(),
		policy:     policy,
		phase:      PhaseBuilding,
		CreatedAt:  time.Now(),
	}
}

// Phase returns the current checkout phase.
func (s *Session) Phase() Phase {
	return s.phase
}

// Cart exposes the active cart for read access.
func (s *Session) Cart() *Cart {
	return s.cart
}

// Discount returns the current discount specification.
func (s *Session) Discount() Discount {
	return s.discount
}

// Totals recomputes the pricing totals for the current cart and discount.
func (s *Session) Totals() Totals {
	return ComputeTotals(s.cart.Items(), s.discount, s.policy)
}

// Reconciliation recomputes the payment state against the current total.
func (s *Session) Reconciliation() Reconciliation {
	return s.reconciler.State(s.Totals().Total)
}

// Payments returns the current payment contributions.
func (s *Session) Payments() []Payment {
	return s.reconciler.Payments()
}

// AddItem adds one unit of a product to the cart. Building phase only.
func (s *Session) AddItem(p ProductInfo) error {
	if s.phase != PhaseBuilding {
		return apperror.ErrInvalidTransition
	}
	return s.cart.AddItem(p)
}

// SetQuantity updates a line's quantity. Building phase only.
func (s *Session) SetQuantity(productID uuid.UUID, quantity int) error {
	if s.phase != PhaseBuilding {
		return apperror.ErrInvalidTransition
	}
	return s.cart.SetQuantity(productID, quantity)
}

// RemoveItem removes a line from the cart. Building phase only.
func (s *Session) RemoveItem(productID uuid.UUID) error {
	if s.phase != PhaseBuilding {
		return apperror.ErrInvalidTransition
	}
	s.cart.RemoveItem(productID)
	return nil
}

// ClearCart empties the cart, customer reference, note and any accumulated
// discount. Building phase only.
func (s *Session) ClearCart() error {
	if s.phase != PhaseBuilding {
		return apperror.ErrInvalidTransition
	}
	s.cart.Clear()
	s.discount = Discount{}
	return nil
}

// SetCustomer attaches or detaches the customer reference.
func (s *Session) SetCustomer(customerID *uuid.UUID) error {
	if s.phase == PhaseCommitting {
		return apperror.ErrInvalidTransition
	}
	s.cart.SetCustomer(customerID)
	return nil
}

// SetNote sets the cart's free-text note.
func (s *Session) SetNote(note string) error {
	if s.phase == PhaseCommitting {
		return apperror.ErrInvalidTransition
	}
	s.cart.SetNote(note)
	return nil
}

// SetDiscount validates and applies a discount specification.
func (s *Session) SetDiscount(d Discount) error {
	if s.phase != PhaseBuilding && s.phase != PhaseReconciling {
		return apperror.ErrInvalidTransition
	}
	if err := d.Validate(); err != nil {
		return err
	}
	s.discount = d
	return nil
}

// BeginCheckout locks the cart and moves to Reconciling. The cart must be
// non-empty.
func (s *Session) BeginCheckout() error {
	if s.phase != PhaseBuilding {
		return apperror.ErrInvalidTransition
	}
	if s.cart.IsEmpty() {
		return apperror.ErrEmptyCart
	}
	s.phase = PhaseReconciling
	return nil
}

// AddPayment appends a payment contribution. Reconciling phase only.
func (s *Session) AddPayment(p Payment) error {
	if s.phase != PhaseReconciling {
		return apperror.ErrInvalidTransition
	}
	return s.reconciler.Add(p)
}

// UpdatePayment mutates an existing contribution by index.
func (s *Session) UpdatePayment(index int, amount int64, reference string) error {
	if s.phase != PhaseReconciling {
		return apperror.ErrInvalidTransition
	}
	return s.reconciler.Update(index, amount, reference)
}

// RemovePayment removes a contribution by index.
func (s *Session) RemovePayment(index int) error {
	if s.phase != PhaseReconciling {
		return apperror.ErrInvalidTransition
	}
	return s.reconciler.Remove(index)
}

// BeginCommit checks the commit guards and moves to Committing. Allowed from
// Reconciling, or from Failed to retry a failed commit with the preserved
// cart and payments.
func (s *Session) BeginCommit() error {
	if s.phase != PhaseReconciling && s.phase != PhaseFailed {
		return apperror.ErrInvalidTransition
	}
	if s.cart.IsEmpty() {
		return apperror.ErrEmptyCart
	}
	if s.reconciler.HasIncomplete() {
		return apperror.ErrMissingReference
	}
	if s.Reconciliation().Remaining > 0 {
		return apperror.ErrUnderPayment
	}
	s.phase = PhaseCommitting
	return nil
}

// CompleteCommit finalizes a successful commit: cart, payments and discount
// are cleared and the session is ready for the next sale. The committed sale
// itself lives on as the persisted record returned to the caller.
func (s *Session) CompleteCommit() {
	s.cart.Clear()
	s.reconciler.Clear()
	s.discount = Discount{}
	s.phase = PhaseBuilding
}

// FailCommit records a commit failure. Cart and payments stay untouched so
// the user can retry, adjust, or cancel.
func (s *Session) FailCommit() {
	s.phase = PhaseFailed
}

// Cancel discards accumulated payment contributions and returns to Building
// without touching the cart. Refused while a commit is in flight: the
// external calls must run to completion first.
func (s *Session) Cancel() error {
	if s.phase == PhaseCommitting {
		return apperror.ErrCommitInFlight
	}
	s.reconciler.Clear()
	s.phase = PhaseBuilding
	return nil
}

// Park snapshots the current cart and resets the session to a fresh empty
// cart. Pending payment contributions are discarded; parking an empty cart
// is refused.
func (s *Session) Park() (Snapshot, error) {
	if s.phase == PhaseCommitting {
		return Snapshot{}, apperror.ErrCommitInFlight
	}
	if s.cart.IsEmpty() {
		return Snapshot{}, apperror.ErrEmptyCart
	}
	snap := s.cart.Snapshot()
	s.cart.Clear()
	s.reconciler.Clear()
	s.discount = Discount{}
	s.phase = PhaseBuilding
	return snap, nil
}

// Resume installs a parked snapshot as the active cart. The current cart
// must be empty; callers park the in-progress sale first.
func (s *Session) Resume(snap Snapshot) error {
	if s.phase != PhaseBuilding {
		return apperror.ErrInvalidTransition
	}
	if !s.cart.IsEmpty() {
		return apperror.NewConflictError("Park the current sale before resuming another")
	}
	s.cart = RestoreCart(snap)
	return nil
}
