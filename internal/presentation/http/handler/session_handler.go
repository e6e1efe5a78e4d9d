package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kiprono/dukapos-api/internal/application/service"
	"github.com/kiprono/dukapos-api/internal/domain/enum"
	"github.com/kiprono/dukapos-api/internal/domain/sale"
	"github.com/kiprono/dukapos-api/internal/presentation/http/dto/request"
	"github.com/kiprono/dukapos-api/internal/presentation/http/dto/response"
)

// SessionHandler handles sale-session HTTP requests
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Open handles opening a new sale session
func (h *SessionHandler) Open(c *gin.Context) {
	view := h.sessionService.Open()
	response.Created(c, "Sale session opened", response.NewSessionResponse(view))
}

// Get handles retrieving a session
func (h *SessionHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid session ID")
		return
	}

	view, err := h.sessionService.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sale session retrieved", response.NewSessionResponse(view))
}

// Close handles closing a session
func (h *SessionHandler) Close(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid session ID")
		return
	}

	if err := h.sessionService.Close(id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddItem handles adding one unit of a product to the cart
func (h *SessionHandler) AddItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid session ID")
		return
	}

	var req request.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	view, err := h.sessionService.AddItem(c.Request.Context(), id, req.ProductID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item added", response.NewSessionResponse(view))
}

// SetQuantity handles setting a cart line's quantity
func (h *SessionHandler) SetQuantity(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid session ID")
		return
	}
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	var req request.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	view, err := h.sessionService.SetQuantity(c.Request.Context(), id, productID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Quantity updated", response.NewSessionResponse(view))
}

// RemoveItem handles removing a cart line
func (h *SessionHandler) RemoveItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid session ID")
		return
	}
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	view, err := h.sessionService.RemoveItem(id, productID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item removed", response.NewSessionResponse(view))
}

// ClearItems handles emptying the cart
func (h *SessionHandler) ClearItems(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid session ID")
		return
	}

	view, err := h.sessionService.ClearCart(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Cart cleared", response.NewSessionResponse(view))
}

// SetCustomer handles attaching or detaching a customer
func (h *SessionHandler) SetCustomer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid session ID")
		return
	}

	var req request.SetCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	view, err := h.sessionService.SetCustomer(c.Request.Context(), id, req.CustomerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Customer updated", response.NewSessionResponse(view))
}

// SetNote handles setting the sale note
func (h *SessionHandler) SetNote(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid session ID")
		return
	}

	var req request.SetNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	view, err := h.sessionService.SetNote(id, req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Note updated", response.NewSessionResponse(view))
}

// SetDiscount handles applying a sale-level discount
func (h *SessionHandler) SetDiscount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid session ID")
		return
	}

	var req request.SetDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	discountType, err := enum.ParseDiscountType(req.Type)
	if err != nil {
		response.BadRequest(c, "Invalid discount type")
		return
	}

	view, err := h.sessionService.SetDiscount(id, sale.Discount{Type: discountType, Value: req.Value})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Discount applied", response.NewSessionResponse(view))
}

// Checkout handles locking the cart for payment collection
func (h *SessionHandler) Checkout(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid session ID")
		return
	}

	view, err := h.sessionService.BeginCheckout(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Checkout started", response.NewSessionResponse(view))
}

// AddPayment handles recording a payment contribution
func (h *SessionHandler) AddPayment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid session ID")
		return
	}

	var req request.AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	method, err := enum.ParsePaymentMethod(req.Method)
	if err != nil {
		response.BadRequest(c, "Invalid payment method")
		return
	}

	view, err := h.sessionService.AddPayment(id, sale.Payment{
		Method:    method,
		Amount:    toCents(req.Amount),
		Reference: req.Reference,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Payment recorded", response.NewSessionResponse(view))
}

// UpdatePayment handles mutating a recorded contribution
func (h *SessionHandler) UpdatePayment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid session ID")
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, "Invalid payment index")
		return
	}

	var req request.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	view, err := h.sessionService.UpdatePayment(id, index, toCents(req.Amount), req.Reference)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Payment updated", response.NewSessionResponse(view))
}

// RemovePayment handles removing a recorded contribution
func (h *SessionHandler) RemovePayment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid session ID")
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, "Invalid payment index")
		return
	}

	view, err := h.sessionService.RemovePayment(id, index)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Payment removed", response.NewSessionResponse(view))
}

// Commit handles the checkout commit: stock reservation, sale persistence
// and session reset as one unit
func (h *SessionHandler) Commit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid session ID")
		return
	}
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	record, err := h.sessionService.Commit(c.Request.Context(), id, *userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Sale committed", record)
}

// Cancel handles discarding payments and reopening the cart
func (h *SessionHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid session ID")
		return
	}

	view, err := h.sessionService.Cancel(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Checkout cancelled", response.NewSessionResponse(view))
}

// Park handles suspending the current sale
func (h *SessionHandler) Park(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid session ID")
		return
	}
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	parked, err := h.sessionService.Park(c.Request.Context(), id, *userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Sale parked", parked)
}

// Resume handles claiming a parked sale into the session
func (h *SessionHandler) Resume(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid session ID")
		return
	}
	parkedID, ok := parseIDParam(c, "parkedId")
	if !ok {
		response.BadRequest(c, "Invalid parked sale ID")
		return
	}

	view, err := h.sessionService.Resume(c.Request.Context(), id, parkedID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sale resumed", response.NewSessionResponse(view))
}

// ListParked handles listing all parked sales
func (h *SessionHandler) ListParked(c *gin.Context) {
	parked, err := h.sessionService.ListParked(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Parked sales retrieved", parked)
}
