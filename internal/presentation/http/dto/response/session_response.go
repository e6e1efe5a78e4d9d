package response

import (
	"time"

	"github.com/google/uuid"

	"github.com/kiprono/dukapos-api/internal/application/service"
	"github.com/kiprono/dukapos-api/internal/domain/enum"
)

// SessionResponse is the render model of a sale session. Monetary values are
// decimal currency units; the engine works in cents internally.
type SessionResponse struct {
	ID             uuid.UUID              `json:"id"`
	Phase          string                 `json:"phase"`
	Items          []SessionItemResponse  `json:"items"`
	CustomerID     *uuid.UUID             `json:"customer_id,omitempty"`
	Note           string                 `json:"note,omitempty"`
	Discount       DiscountResponse       `json:"discount"`
	Totals         TotalsResponse         `json:"totals"`
	Payments       []PaymentResponse      `json:"payments"`
	Reconciliation ReconciliationResponse `json:"reconciliation"`
	CreatedAt      time.Time              `json:"created_at"`
}

// SessionItemResponse is one cart line
type SessionItemResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	UnitPrice float64   `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	Total     float64   `json:"total"`
}

// DiscountResponse is the applied sale-level discount
type DiscountResponse struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// TotalsResponse is the priced cart
type TotalsResponse struct {
	SubTotal       float64 `json:"sub_total"`
	DiscountAmount float64 `json:"discount_amount"`
	TaxAmount      float64 `json:"tax_amount"`
	Total          float64 `json:"total"`
}

// PaymentResponse is one payment contribution
type PaymentResponse struct {
	Method    enum.PaymentMethod `json:"method"`
	Amount    float64            `json:"amount"`
	Reference string             `json:"reference,omitempty"`
	Complete  bool               `json:"complete"`
}

// ReconciliationResponse is the payment state against the amount due
type ReconciliationResponse struct {
	AmountDue  float64 `json:"amount_due"`
	AmountPaid float64 `json:"amount_paid"`
	Remaining  float64 `json:"remaining"`
	Change     float64 `json:"change"`
}

func cents(v int64) float64 {
	return float64(v) / 100
}

// NewSessionResponse converts a session view to its render model
func NewSessionResponse(view *service.SessionView) *SessionResponse {
	resp := &SessionResponse{
		ID:         view.ID,
		Phase:      view.Phase,
		Items:      make([]SessionItemResponse, 0, len(view.Items)),
		CustomerID: view.CustomerID,
		Note:       view.Note,
		Discount: DiscountResponse{
			Type:  view.Discount.Type.String(),
			Value: view.Discount.Value,
		},
		Totals: TotalsResponse{
			SubTotal:       cents(view.Totals.SubTotal),
			DiscountAmount: cents(view.Totals.DiscountAmount),
			TaxAmount:      cents(view.Totals.TaxAmount),
			Total:          cents(view.Totals.Total),
		},
		Payments: make([]PaymentResponse, 0, len(view.Payments)),
		Reconciliation: ReconciliationResponse{
			AmountDue:  cents(view.Reconciliation.AmountDue),
			AmountPaid: cents(view.Reconciliation.AmountPaid),
			Remaining:  cents(view.Reconciliation.Remaining),
			Change:     cents(view.Reconciliation.Change),
		},
		CreatedAt: view.CreatedAt,
	}

	for _, item := range view.Items {
		resp.Items = append(resp.Items, SessionItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Category:  item.Category,
			UnitPrice: cents(item.UnitPrice),
			Quantity:  item.Quantity,
			Total:     cents(item.Total()),
		})
	}

	for _, p := range view.Payments {
		resp.Payments = append(resp.Payments, PaymentResponse{
			Method:    p.Method,
			Amount:    cents(p.Amount),
			Reference: p.Reference,
			Complete:  p.Complete(),
		})
	}

	return resp
}
