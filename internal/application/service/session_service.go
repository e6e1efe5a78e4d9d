package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kiprono/dukapos-api/internal/domain/entity"
	"github.com/kiprono/dukapos-api/internal/domain/repository"
	"github.com/kiprono/dukapos-api/internal/domain/sale"
	"github.com/kiprono/dukapos-api/pkg/apperror"
	"github.com/kiprono/dukapos-api/pkg/utils"
)

// SessionService drives sale sessions: cart mutations, pricing, payment
// reconciliation, the checkout commit sequence, and sale parking. Sessions
// live in memory, one per open register view; the external collaborators
// (catalog/stock, customer directory, sale persistence, parked store) are
// injected as repositories.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*sessionEntry

	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	saleRepo     repository.SaleRepository
	parkedRepo   repository.ParkedSaleRepository
	policy       sale.TaxPolicy
	logger       *zap.Logger
}

// sessionEntry serializes all access to one session. Holding the lock across
// the commit's external calls is what makes cancel wait for an in-flight
// commit to finish.
type sessionEntry struct {
	mu   sync.Mutex
	sess *sale.Session
}

// NewSessionService creates a new session service
func NewSessionService(
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	saleRepo repository.SaleRepository,
	parkedRepo repository.ParkedSaleRepository,
	policy sale.TaxPolicy,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		sessions:     make(map[uuid.UUID]*sessionEntry),
		productRepo:  productRepo,
		customerRepo: customerRepo,
		saleRepo:     saleRepo,
		parkedRepo:   parkedRepo,
		policy:       policy,
		logger:       logger,
	}
}

// SessionView is the render-ready snapshot of a session exposed to the UI
// layer. Monetary values are in cents; the HTTP layer converts for display.
type SessionView struct {
	ID             uuid.UUID           `json:"id"`
	Phase          string              `json:"phase"`
	Items          []sale.LineItem     `json:"items"`
	CustomerID     *uuid.UUID          `json:"customer_id,omitempty"`
	Note           string              `json:"note,omitempty"`
	Discount       sale.Discount       `json:"discount"`
	Totals         sale.Totals         `json:"totals"`
	Payments       []sale.Payment      `json:"payments"`
	Reconciliation sale.Reconciliation `json:"reconciliation"`
	CreatedAt      time.Time           `json:"created_at"`
}

func viewOf(s *sale.Session) *SessionView {
	return &SessionView{
		ID:             s.ID,
		Phase:          s.Phase().String(),
		Items:          s.Cart().Items(),
		CustomerID:     s.Cart().CustomerID(),
		Note:           s.Cart().Note(),
		Discount:       s.Discount(),
		Totals:         s.Totals(),
		Payments:       s.Payments(),
		Reconciliation: s.Reconciliation(),
		CreatedAt:      s.CreatedAt,
	}
}

// Open starts a fresh sale session.
func (s *SessionService) Open() *SessionView {
	sess := sale.NewSession(s.policy)

	s.mu.Lock()
	s.sessions[sess.ID] = &sessionEntry{sess: sess}
	s.mu.Unlock()

	s.logger.Info("sale session opened", zap.String("session_id", sess.ID.String()))
	return viewOf(sess)
}

// Close removes a session. Refused while a commit is in flight.
func (s *SessionService) Close(id uuid.UUID) error {
	entry, err := s.entry(id)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.sess.Phase() == sale.PhaseCommitting {
		return apperror.ErrCommitInFlight
	}

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// Get returns the render snapshot of a session.
func (s *SessionService) Get(id uuid.UUID) (*SessionView, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return viewOf(entry.sess), nil
}

func (s *SessionService) entry(id uuid.UUID) (*sessionEntry, error) {
	s.mu.RLock()
	entry, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperror.NewNotFoundError("Sale session")
	}
	return entry, nil
}

// withSession runs fn against the locked session and returns the updated view.
func (s *SessionService) withSession(id uuid.UUID, fn func(*sale.Session) error) (*SessionView, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := fn(entry.sess); err != nil {
		return nil, err
	}
	return viewOf(entry.sess), nil
}

// AddItem adds one unit of the product to the session's cart, reading the
// product (and its current stock snapshot) from the catalog.
func (s *SessionService) AddItem(ctx context.Context, sessionID, productID uuid.UUID) (*SessionView, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	return s.withSession(sessionID, func(sess *sale.Session) error {
		return sess.AddItem(productInfo(product))
	})
}

// SetQuantity updates a line's quantity against a fresh stock read.
func (s *SessionService) SetQuantity(ctx context.Context, sessionID, productID uuid.UUID, quantity int) (*SessionView, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	return s.withSession(sessionID, func(sess *sale.Session) error {
		if product != nil {
			sess.Cart().RefreshStock(productID, product.Quantity)
		}
		return sess.SetQuantity(productID, quantity)
	})
}

// RemoveItem removes a line from the session's cart.
func (s *SessionService) RemoveItem(sessionID, productID uuid.UUID) (*SessionView, error) {
	return s.withSession(sessionID, func(sess *sale.Session) error {
		return sess.RemoveItem(productID)
	})
}

// ClearCart empties the session's cart, customer, note and discount.
func (s *SessionService) ClearCart(sessionID uuid.UUID) (*SessionView, error) {
	return s.withSession(sessionID, func(sess *sale.Session) error {
		return sess.ClearCart()
	})
}

// SetCustomer attaches a customer after validating it exists, or detaches
// with nil.
func (s *SessionService) SetCustomer(ctx context.Context, sessionID uuid.UUID, customerID *uuid.UUID) (*SessionView, error) {
	if customerID != nil {
		customer, err := s.customerRepo.GetByID(ctx, *customerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, apperror.NewNotFoundError("Customer")
		}
	}

	return s.withSession(sessionID, func(sess *sale.Session) error {
		return sess.SetCustomer(customerID)
	})
}

// SetNote sets the cart's free-text note.
func (s *SessionService) SetNote(sessionID uuid.UUID, note string) (*SessionView, error) {
	return s.withSession(sessionID, func(sess *sale.Session) error {
		return sess.SetNote(note)
	})
}

// SetDiscount applies a discount specification to the session.
func (s *SessionService) SetDiscount(sessionID uuid.UUID, discount sale.Discount) (*SessionView, error) {
	return s.withSession(sessionID, func(sess *sale.Session) error {
		return sess.SetDiscount(discount)
	})
}

// BeginCheckout locks the cart and starts collecting payments.
func (s *SessionService) BeginCheckout(sessionID uuid.UUID) (*SessionView, error) {
	return s.withSession(sessionID, func(sess *sale.Session) error {
		return sess.BeginCheckout()
	})
}

// AddPayment appends a payment contribution.
func (s *SessionService) AddPayment(sessionID uuid.UUID, payment sale.Payment) (*SessionView, error) {
	return s.withSession(sessionID, func(sess *sale.Session) error {
		return sess.AddPayment(payment)
	})
}

// UpdatePayment mutates an existing contribution by index.
func (s *SessionService) UpdatePayment(sessionID uuid.UUID, index int, amount int64, reference string) (*SessionView, error) {
	return s.withSession(sessionID, func(sess *sale.Session) error {
		return sess.UpdatePayment(index, amount, reference)
	})
}

// RemovePayment removes a contribution by index.
func (s *SessionService) RemovePayment(sessionID uuid.UUID, index int) (*SessionView, error) {
	return s.withSession(sessionID, func(sess *sale.Session) error {
		return sess.RemovePayment(index)
	})
}

// Cancel discards payments and returns the session to Building.
func (s *SessionService) Cancel(sessionID uuid.UUID) (*SessionView, error) {
	return s.withSession(sessionID, func(sess *sale.Session) error {
		return sess.Cancel()
	})
}

// Commit runs the checkout commit sequence as a unit: reserve stock for
// every line (all-or-none), persist the sale record, then clear the
// session. A persistence failure after stock was reserved triggers a
// compensating increment before the failure is reported. On any failure the
// session keeps its cart and payments and moves to Failed for retry.
func (s *SessionService) Commit(ctx context.Context, sessionID, userID uuid.UUID) (*entity.Sale, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	sess := entry.sess

	if err := sess.BeginCommit(); err != nil {
		return nil, err
	}

	items := sess.Cart().Items()
	totals := sess.Totals()
	rec := sess.Reconciliation()
	receiptNo := utils.GenerateReceiptNo()

	decrements := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		decrements[item.ProductID] = item.Quantity
	}

	// Stock mutation before persistence, so a sale is never recorded for
	// stock that was not actually reserved.
	failedIDs, err := s.productRepo.AtomicDecrementBatch(ctx, receiptNo, decrements)
	if err != nil {
		sess.FailCommit()
		s.logger.Error("stock reservation errored",
			zap.String("session_id", sessionID.String()), zap.Error(err))
		return nil, apperror.ErrStockMutationFailed
	}
	if len(failedIDs) > 0 {
		sess.FailCommit()
		names := make([]string, 0, len(failedIDs))
		for _, id := range failedIDs {
			for _, item := range items {
				if item.ProductID == id {
					names = append(names, item.Name)
				}
			}
		}
		s.logger.Warn("stock reservation rejected",
			zap.String("session_id", sessionID.String()), zap.Strings("products", names))
		return nil, apperror.NewAppError(apperror.ErrStockMutationFailed.Code,
			fmt.Sprintf("Insufficient stock for: %v", names))
	}

	record := buildSaleRecord(userID, receiptNo, sess, items, totals, rec)
	if err := s.saleRepo.Create(ctx, record); err != nil {
		// Stock was already decremented; restore it before reporting.
		if compErr := s.productRepo.AtomicIncrementBatch(ctx, receiptNo, decrements); compErr != nil {
			s.logger.Error("compensating stock restore failed",
				zap.String("receipt_no", receiptNo), zap.Error(compErr))
		}
		sess.FailCommit()
		s.logger.Error("sale persistence failed",
			zap.String("session_id", sessionID.String()), zap.Error(err))
		return nil, apperror.ErrPersistenceFailed
	}

	sess.CompleteCommit()
	s.logger.Info("sale committed",
		zap.String("session_id", sessionID.String()),
		zap.String("receipt_no", receiptNo),
		zap.Int64("total", totals.Total))
	return record, nil
}

func buildSaleRecord(userID uuid.UUID, receiptNo string, sess *sale.Session, items []sale.LineItem, totals sale.Totals, rec sale.Reconciliation) *entity.Sale {
	record := &entity.Sale{
		UserID:         userID,
		CustomerID:     sess.Cart().CustomerID(),
		ReceiptNo:      receiptNo,
		Note:           sess.Cart().Note(),
		TotalItems:     sess.Cart().TotalItems(),
		SubTotal:       totals.SubTotal,
		DiscountAmount: totals.DiscountAmount,
		TaxAmount:      totals.TaxAmount,
		Total:          totals.Total,
		AmountPaid:     rec.AmountPaid,
		Change:         rec.Change,
	}
	for _, item := range items {
		record.Items = append(record.Items, entity.SaleItem{
			ProductID:   item.ProductID,
			ProductName: item.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total(),
		})
	}
	for _, p := range sess.Payments() {
		record.Payments = append(record.Payments, entity.SalePayment{
			Method:    p.Method,
			Amount:    p.Amount,
			Reference: p.Reference,
		})
	}
	return record
}

// Park suspends the session's cart into the parked-sale store and resets
// the active cart. If the store rejects the park, the snapshot is restored
// so the sale is not lost.
func (s *SessionService) Park(ctx context.Context, sessionID, userID uuid.UUID) (*entity.ParkedSale, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	sess := entry.sess

	// Park clears the discount along with the cart; keep it so a failed
	// park restores the session exactly as it was.
	discount := sess.Discount()
	snap, err := sess.Park()
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		_ = sess.Resume(snap)
		_ = sess.SetDiscount(discount)
		return nil, apperror.ErrInternalServer
	}

	parked := &entity.ParkedSale{
		UserID:     userID,
		CustomerID: snap.CustomerID,
		Note:       snap.Note,
		Snapshot:   string(raw),
		TotalItems: totalItems(snap),
	}
	if err := s.parkedRepo.Park(ctx, parked); err != nil {
		_ = sess.Resume(snap)
		_ = sess.SetDiscount(discount)
		s.logger.Error("park failed", zap.String("session_id", sessionID.String()), zap.Error(err))
		return nil, err
	}

	s.logger.Info("sale parked",
		zap.String("session_id", sessionID.String()),
		zap.String("parked_id", parked.ID.String()))
	return parked, nil
}

// Resume claims a parked sale (exactly once) and installs its snapshot as
// the session's active cart. The session must be empty; park the current
// sale first.
func (s *SessionService) Resume(ctx context.Context, sessionID, parkedID uuid.UUID) (*SessionView, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	sess := entry.sess

	// Refuse before claiming the handle, so a rejected resume does not
	// consume the parked sale.
	if sess.Phase() != sale.PhaseBuilding {
		return nil, apperror.ErrInvalidTransition
	}
	if !sess.Cart().IsEmpty() {
		return nil, apperror.NewConflictError("Park the current sale before resuming another")
	}

	parked, err := s.parkedRepo.Resume(ctx, parkedID)
	if err != nil {
		return nil, err
	}

	var snap sale.Snapshot
	if err := json.Unmarshal([]byte(parked.Snapshot), &snap); err != nil {
		s.logger.Error("corrupt parked snapshot", zap.String("parked_id", parkedID.String()), zap.Error(err))
		return nil, apperror.ErrInternalServer
	}
	if err := sess.Resume(snap); err != nil {
		return nil, err
	}

	s.logger.Info("sale resumed",
		zap.String("session_id", sessionID.String()),
		zap.String("parked_id", parkedID.String()))
	return viewOf(sess), nil
}

// ListParked returns all parked sales in creation order.
func (s *SessionService) ListParked(ctx context.Context) ([]entity.ParkedSale, error) {
	return s.parkedRepo.List(ctx)
}

func productInfo(p *entity.Product) sale.ProductInfo {
	return sale.ProductInfo{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.CategorySlug(),
		UnitPrice: p.SellingPrice,
		Stock:     p.Quantity,
	}
}

func totalItems(snap sale.Snapshot) int {
	total := 0
	for _, item := range snap.Items {
		total += item.Quantity
	}
	return total
}
