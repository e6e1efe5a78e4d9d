package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kiprono/dukapos-api/internal/domain/entity"
	"github.com/kiprono/dukapos-api/internal/domain/enum"
	"github.com/kiprono/dukapos-api/internal/domain/sale"
	"github.com/kiprono/dukapos-api/pkg/apperror"
)

var generalCategory = &entity.Category{ID: uuid.New(), Name: "General", Slug: "general"}

func taxableProduct(name string, priceCents int64, stock int) *entity.Product {
	return &entity.Product{
		ID:           uuid.New(),
		CategoryID:   &generalCategory.ID,
		Category:     generalCategory,
		Name:         name,
		Slug:         name,
		Code:         "PRD-" + name,
		Quantity:     stock,
		SellingPrice: priceCents,
	}
}

type fixture struct {
	svc      *SessionService
	products *fakeProductRepo
	sales    *fakeSaleRepo
	parked   *fakeParkedRepo
}

func newFixture(t *testing.T, products ...*entity.Product) *fixture {
	t.Helper()
	productRepo := newFakeProductRepo(products...)
	saleRepo := &fakeSaleRepo{}
	parkedRepo := newFakeParkedRepo()
	policy := sale.NewTaxPolicy(0.16, []string{"general"})

	svc := NewSessionService(
		productRepo,
		newFakeCustomerRepo(),
		saleRepo,
		parkedRepo,
		policy,
		zaptest.NewLogger(t),
	)
	return &fixture{svc: svc, products: productRepo, sales: saleRepo, parked: parkedRepo}
}

// readyToCommit opens a session, adds the given product once per quantity,
// locks the cart and covers the full amount due in cash.
func (f *fixture) readyToCommit(t *testing.T, products map[*entity.Product]int) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	view := f.svc.Open()

	for p, qty := range products {
		for i := 0; i < qty; i++ {
			_, err := f.svc.AddItem(ctx, view.ID, p.ID)
			require.NoError(t, err)
		}
	}

	_, err := f.svc.BeginCheckout(view.ID)
	require.NoError(t, err)

	current, err := f.svc.Get(view.ID)
	require.NoError(t, err)
	_, err = f.svc.AddPayment(view.ID, sale.Payment{
		Method: enum.PaymentMethodCash,
		Amount: current.Totals.Total,
	})
	require.NoError(t, err)

	return view.ID
}

func TestSessionOpenGetClose(t *testing.T) {
	f := newFixture(t)

	view := f.svc.Open()
	assert.Equal(t, "Building", view.Phase)
	assert.Empty(t, view.Items)

	got, err := f.svc.Get(view.ID)
	require.NoError(t, err)
	assert.Equal(t, view.ID, got.ID)

	require.NoError(t, f.svc.Close(view.ID))
	_, err = f.svc.Get(view.ID)
	assert.Error(t, err)
}

func TestAddItemReadsCatalog(t *testing.T) {
	soda := taxableProduct("soda", 10000, 5)
	f := newFixture(t, soda)
	view := f.svc.Open()

	got, err := f.svc.AddItem(context.Background(), view.ID, soda.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "soda", got.Items[0].Name)
	assert.Equal(t, int64(10000), got.Items[0].UnitPrice)
	assert.Equal(t, "general", got.Items[0].Category)

	_, err = f.svc.AddItem(context.Background(), view.ID, uuid.New())
	assert.Error(t, err)
}

func TestCommitPersistsSaleAndDecrementsStock(t *testing.T) {
	soda := taxableProduct("soda", 10000, 5)
	f := newFixture(t, soda)
	sessionID := f.readyToCommit(t, map[*entity.Product]int{soda: 2})
	userID := uuid.New()

	record, err := f.svc.Commit(context.Background(), sessionID, userID)
	require.NoError(t, err)

	// 20000 subtotal + 16% tax
	assert.Equal(t, int64(20000), record.SubTotal)
	assert.Equal(t, int64(3200), record.TaxAmount)
	assert.Equal(t, int64(23200), record.Total)
	assert.Equal(t, userID, record.UserID)
	assert.NotEmpty(t, record.ReceiptNo)
	require.Len(t, record.Items, 1)
	assert.Equal(t, 2, record.Items[0].Quantity)
	require.Len(t, record.Payments, 1)

	assert.Equal(t, 3, f.products.stockOf(soda.ID))
	assert.Equal(t, 1, f.sales.count())

	// Session is reset for the next sale.
	view, err := f.svc.Get(sessionID)
	require.NoError(t, err)
	assert.Equal(t, "Building", view.Phase)
	assert.Empty(t, view.Items)
	assert.Empty(t, view.Payments)
}

func TestCommitAllOrNothingOnInsufficientStock(t *testing.T) {
	soda := taxableProduct("soda", 10000, 5)
	bread := taxableProduct("bread", 5000, 5)
	milk := taxableProduct("milk", 8000, 5)
	f := newFixture(t, soda, bread, milk)
	sessionID := f.readyToCommit(t, map[*entity.Product]int{soda: 1, bread: 2, milk: 1})

	// Stock for bread drops below the cart quantity after the snapshot
	// was taken, as if another terminal sold it.
	f.products.products[bread.ID].Quantity = 1

	_, err := f.svc.Commit(context.Background(), sessionID, uuid.New())
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Contains(t, appErr.Message, "bread")

	// Zero net stock mutation across all three lines.
	assert.Equal(t, 5, f.products.stockOf(soda.ID))
	assert.Equal(t, 1, f.products.stockOf(bread.ID))
	assert.Equal(t, 5, f.products.stockOf(milk.ID))
	assert.Equal(t, 0, f.sales.count())

	// Cart and payments preserved for retry.
	view, err := f.svc.Get(sessionID)
	require.NoError(t, err)
	assert.Equal(t, "Failed", view.Phase)
	assert.Len(t, view.Items, 3)
	assert.Len(t, view.Payments, 1)

	// Restock and the retry succeeds.
	f.products.products[bread.ID].Quantity = 2
	_, err = f.svc.Commit(context.Background(), sessionID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 1, f.sales.count())
}

func TestCommitStockMutationError(t *testing.T) {
	soda := taxableProduct("soda", 10000, 5)
	f := newFixture(t, soda)
	sessionID := f.readyToCommit(t, map[*entity.Product]int{soda: 1})

	f.products.decrementErr = assert.AnError

	_, err := f.svc.Commit(context.Background(), sessionID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrStockMutationFailed)
	assert.Equal(t, 0, f.sales.count())

	view, _ := f.svc.Get(sessionID)
	assert.Equal(t, "Failed", view.Phase)
}

func TestCommitPersistenceFailureRestoresStock(t *testing.T) {
	soda := taxableProduct("soda", 10000, 5)
	f := newFixture(t, soda)
	sessionID := f.readyToCommit(t, map[*entity.Product]int{soda: 2})

	f.sales.createErr = assert.AnError

	_, err := f.svc.Commit(context.Background(), sessionID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrPersistenceFailed)

	// The decrement was compensated.
	assert.Equal(t, 5, f.products.stockOf(soda.ID))
	assert.Equal(t, 0, f.sales.count())

	// Retry after the store recovers commits exactly one sale.
	f.sales.createErr = nil
	_, err = f.svc.Commit(context.Background(), sessionID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 3, f.products.stockOf(soda.ID))
	assert.Equal(t, 1, f.sales.count())
}

func TestCommitRefusedOnUnderpayment(t *testing.T) {
	soda := taxableProduct("soda", 10000, 5)
	f := newFixture(t, soda)
	ctx := context.Background()
	view := f.svc.Open()

	_, err := f.svc.AddItem(ctx, view.ID, soda.ID)
	require.NoError(t, err)
	_, err = f.svc.BeginCheckout(view.ID)
	require.NoError(t, err)
	_, err = f.svc.AddPayment(view.ID, sale.Payment{Method: enum.PaymentMethodCash, Amount: 100})
	require.NoError(t, err)

	_, err = f.svc.Commit(ctx, view.ID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrUnderPayment)
	assert.Equal(t, 0, f.sales.count())
	assert.Equal(t, 5, f.products.stockOf(soda.ID))
}

func TestParkResumeRoundTrip(t *testing.T) {
	soda := taxableProduct("soda", 10000, 5)
	bread := taxableProduct("bread", 5000, 5)
	f := newFixture(t, soda, bread)
	ctx := context.Background()
	userID := uuid.New()
	view := f.svc.Open()

	_, err := f.svc.AddItem(ctx, view.ID, soda.ID)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, view.ID, bread.ID)
	require.NoError(t, err)
	_, err = f.svc.SetNote(view.ID, "table 4")
	require.NoError(t, err)

	parked, err := f.svc.Park(ctx, view.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, parked.TotalItems)
	assert.Equal(t, "table 4", parked.Note)

	// The active cart was reset.
	current, err := f.svc.Get(view.ID)
	require.NoError(t, err)
	assert.Empty(t, current.Items)

	list, err := f.svc.ListParked(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	resumed, err := f.svc.Resume(ctx, view.ID, parked.ID)
	require.NoError(t, err)
	require.Len(t, resumed.Items, 2)
	assert.Equal(t, "table 4", resumed.Note)

	// The handle was consumed.
	list, err = f.svc.ListParked(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = f.svc.Resume(ctx, view.ID, parked.ID)
	assert.Error(t, err)
}

func TestResumeRejectedOverActiveCartKeepsHandle(t *testing.T) {
	soda := taxableProduct("soda", 10000, 5)
	f := newFixture(t, soda)
	ctx := context.Background()
	view := f.svc.Open()

	_, err := f.svc.AddItem(ctx, view.ID, soda.ID)
	require.NoError(t, err)
	parked, err := f.svc.Park(ctx, view.ID, uuid.New())
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, view.ID, soda.ID)
	require.NoError(t, err)

	_, err = f.svc.Resume(ctx, view.ID, parked.ID)
	require.Error(t, err)

	// A rejected resume must not consume the parked sale.
	list, err := f.svc.ListParked(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestParkStoreFailureRestoresCartAndDiscount(t *testing.T) {
	soda := taxableProduct("soda", 10000, 5)
	f := newFixture(t, soda)
	ctx := context.Background()
	view := f.svc.Open()

	_, err := f.svc.AddItem(ctx, view.ID, soda.ID)
	require.NoError(t, err)
	discount := sale.Discount{Type: enum.DiscountTypePercentage, Value: 10}
	_, err = f.svc.SetDiscount(view.ID, discount)
	require.NoError(t, err)

	f.parked.parkErr = assert.AnError
	_, err = f.svc.Park(ctx, view.ID, uuid.New())
	require.Error(t, err)

	// The session is exactly as it was before the failed park.
	current, err := f.svc.Get(view.ID)
	require.NoError(t, err)
	require.Len(t, current.Items, 1)
	assert.Equal(t, discount, current.Discount)
	assert.NotZero(t, current.Totals.DiscountAmount)
}

func TestParkEmptyCartRefused(t *testing.T) {
	f := newFixture(t)
	view := f.svc.Open()

	_, err := f.svc.Park(context.Background(), view.ID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrEmptyCart)
}
