package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"feedmart-pos/internal/access"
	"feedmart-pos/internal/cart"
	"feedmart-pos/internal/gateway/middleware"
	"feedmart-pos/internal/models"
	"feedmart-pos/internal/money"
	"feedmart-pos/internal/session"
	"feedmart-pos/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ProductLookup interface {
	Product(ctx context.Context, id int64) (models.Product, error)
}

type CheckoutService interface {
	Preview(ctx context.Context, cashierID int64) (models.SaleSubmission, error)
	Checkout(ctx context.Context, cashierID int64) (models.CompletedSale, error)
	Receipt(ctx context.Context, saleID string) (models.CompletedSale, error)
	Receipts(ctx context.Context, cashierID int64, limit int) ([]models.CompletedSale, error)
}

type POSHTTPHandler struct {
	sessions *session.Manager
	products ProductLookup
	checkout CheckoutService
	taxRate  decimal.Decimal
	metrics  *telemetry.Metrics
}

func NewPOSHTTPHandler(sessions *session.Manager, products ProductLookup, checkout CheckoutService, taxRate decimal.Decimal, metrics *telemetry.Metrics) *POSHTTPHandler {
	return &POSHTTPHandler{
		sessions: sessions,
		products: products,
		checkout: checkout,
		taxRate:  taxRate,
		metrics:  metrics,
	}
}

// Request structs
type AddItemRequest struct {
	ProductID int64       `json:"product_id" binding:"required,gt=0"`
	Unit      models.Unit `json:"unit" binding:"required,oneof=bag kg"`
	Quantity  int         `json:"quantity" binding:"required,min=1"`
}

// Delta is a pointer so that zero binds as a no-op instead of failing required.
type UpdateQuantityRequest struct {
	Delta *int `json:"delta" binding:"required"`
}

// A blank or unparsable amount reads as zero, same as the payment fields.
type AmountRequest struct {
	Amount string `json:"amount"`
}

type PaymentRequest struct {
	Method        *models.PaymentMethod `json:"method"`
	Amount        *string               `json:"amount"`
	Reference     *string               `json:"reference"`
	CustomerPhone *string               `json:"customer_phone"`
}

type ListReceiptsQuery struct {
	Limit int `form:"limit,default=20"`
}

// Views
type CartLineView struct {
	ProductID int64       `json:"product_id"`
	Name      string      `json:"name"`
	Unit      models.Unit `json:"unit"`
	Quantity  int         `json:"quantity"`
	UnitPrice string      `json:"unit_price"`
	LineTotal string      `json:"line_total"`
	Discount  *string     `json:"discount,omitempty"`
}

type PaymentView struct {
	Method        models.PaymentMethod `json:"method"`
	MethodLabel   string               `json:"method_label"`
	Amount        string               `json:"amount"`
	Reference     string               `json:"reference,omitempty"`
	CustomerPhone string               `json:"customer_phone,omitempty"`
}

type CartView struct {
	Lines         []CartLineView `json:"lines"`
	ItemCount     int            `json:"item_count"`
	Subtotal      string         `json:"subtotal"`
	OrderDiscount string         `json:"order_discount"`
	Total         string         `json:"total"`
	Tax           string         `json:"tax"`
	ChangeDue     string         `json:"change_due"`
	Payment       PaymentView    `json:"payment"`

	TotalCost       *string `json:"total_cost,omitempty"`
	EstimatedProfit *string `json:"estimated_profit,omitempty"`
}

func (h *POSHTTPHandler) cartView(c *cart.Cart, role access.Role) CartView {
	lines := c.Lines()
	v := CartView{
		Lines:         make([]CartLineView, 0, len(lines)),
		ItemCount:     c.ItemCount(),
		Subtotal:      money.Format(c.Subtotal()),
		OrderDiscount: money.Format(c.OrderDiscount()),
		Total:         money.Format(c.Total()),
		Tax:           money.Format(cart.Tax(c.Total(), h.taxRate)),
		ChangeDue:     money.Format(c.ChangeDue()),
	}
	for _, l := range lines {
		lv := CartLineView{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Unit:      l.Unit,
			Quantity:  l.Quantity,
			UnitPrice: money.Format(cart.UnitPrice(l)),
			LineTotal: money.Format(cart.LineTotal(l)),
		}
		if l.Discount != nil {
			d := money.Format(*l.Discount)
			lv.Discount = &d
		}
		v.Lines = append(v.Lines, lv)
	}

	p := c.Payment()
	v.Payment = PaymentView{
		Method:        p.Method,
		MethodLabel:   p.Method.String(),
		Amount:        money.Format(p.Tendered),
		Reference:     p.Reference,
		CustomerPhone: p.CustomerPhone,
	}

	if role.Can(access.ViewProfit) {
		cost := money.Format(c.TotalCost())
		profit := money.Format(c.EstimatedProfit())
		v.TotalCost = &cost
		v.EstimatedProfit = &profit
	}
	return v
}

func lineKey(c *gin.Context) (cart.Key, bool) {
	id, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid product ID"))
		return cart.Key{}, false
	}
	unit := models.Unit(c.Param("unit"))
	if !unit.Valid() {
		c.JSON(http.StatusBadRequest, errorResponse("Unit must be bag or kg"))
		return cart.Key{}, false
	}
	return cart.Key{ProductID: id, Unit: unit}, true
}

// mutate applies fn to the caller's cart and answers with the new cart.
func (h *POSHTTPHandler) mutate(c *gin.Context, op, message string, fn func(*cart.Cart) error) {
	cashierID, ok := cashierFrom(c)
	if !ok {
		return
	}

	updated, err := h.sessions.Mutate(c.Request.Context(), cashierID, fn)
	if err != nil {
		handleError(c, err)
		return
	}
	h.metrics.CartOp(op)
	c.JSON(http.StatusOK, successResponse(message, h.cartView(updated, middleware.RoleFrom(c))))
}

// --- Cart Handlers ---

func (h *POSHTTPHandler) GetCart(c *gin.Context) {
	cashierID, ok := cashierFrom(c)
	if !ok {
		return
	}
	current, err := h.sessions.Load(c.Request.Context(), cashierID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Cart retrieved successfully", h.cartView(current, middleware.RoleFrom(c))))
}

func (h *POSHTTPHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	product, err := h.products.Product(ctx, req.ProductID)
	if err != nil {
		handleError(c, err)
		return
	}

	h.mutate(c, "add", "Item added to cart", func(ct *cart.Cart) error {
		return ct.AddOrIncrement(product, req.Unit, req.Quantity)
	})
}

func (h *POSHTTPHandler) UpdateQuantity(c *gin.Context) {
	key, ok := lineKey(c)
	if !ok {
		return
	}
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	h.mutate(c, "update", "Cart updated", func(ct *cart.Cart) error {
		_, err := ct.UpdateQuantity(key, *req.Delta)
		return err
	})
}

func (h *POSHTTPHandler) SetLineDiscount(c *gin.Context) {
	key, ok := lineKey(c)
	if !ok {
		return
	}
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	h.mutate(c, "line_discount", "Line discount set", func(ct *cart.Cart) error {
		return ct.SetLineDiscount(key, money.Parse(req.Amount))
	})
}

func (h *POSHTTPHandler) RemoveLine(c *gin.Context) {
	key, ok := lineKey(c)
	if !ok {
		return
	}
	h.mutate(c, "remove", "Item removed from cart", func(ct *cart.Cart) error {
		ct.RemoveLine(key)
		return nil
	})
}

func (h *POSHTTPHandler) RemoveProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid product ID"))
		return
	}
	h.mutate(c, "remove_product", "Product removed from cart", func(ct *cart.Cart) error {
		ct.RemoveProduct(id)
		return nil
	})
}

func (h *POSHTTPHandler) SetOrderDiscount(c *gin.Context) {
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}
	h.mutate(c, "discount", "Discount applied", func(ct *cart.Cart) error {
		ct.SetOrderDiscount(money.Parse(req.Amount))
		return nil
	})
}

func (h *POSHTTPHandler) SetPayment(c *gin.Context) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}
	h.mutate(c, "payment", "Payment details updated", func(ct *cart.Cart) error {
		if req.Method != nil {
			ct.SetPaymentMethod(*req.Method)
		}
		if req.Amount != nil {
			ct.SetTendered(money.Parse(*req.Amount))
		}
		if req.Reference != nil {
			ct.SetReference(*req.Reference)
		}
		if req.CustomerPhone != nil {
			ct.SetCustomerPhone(*req.CustomerPhone)
		}
		return nil
	})
}

func (h *POSHTTPHandler) ClearCart(c *gin.Context) {
	h.mutate(c, "clear", "Cart cleared", func(ct *cart.Cart) error {
		ct.Reset()
		return nil
	})
}

// --- Checkout Handlers ---

// PreviewCheckout validates the cart without submitting it. A cash sale whose
// tendered amount is still at the default 0 is refused with 422
// INSUFFICIENT_TENDER, like any cash tender below the total.
func (h *POSHTTPHandler) PreviewCheckout(c *gin.Context) {
	cashierID, ok := cashierFrom(c)
	if !ok {
		return
	}
	payload, err := h.checkout.Preview(c.Request.Context(), cashierID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Cart is ready for checkout", payload))
}

// Checkout submits the cart and answers 201 with the completed sale. The cart
// must pass the same checks as PreviewCheckout, so a cash sale needs a
// tendered amount covering the total or it gets 422 INSUFFICIENT_TENDER.
func (h *POSHTTPHandler) Checkout(c *gin.Context) {
	cashierID, ok := cashierFrom(c)
	if !ok {
		return
	}

	// the request context stands for the open checkout dialog: if the client
	// goes away the result is discarded
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	sale, err := h.checkout.Checkout(ctx, cashierID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Sale completed", sale))
}

func (h *POSHTTPHandler) ListReceipts(c *gin.Context) {
	cashierID, ok := cashierFrom(c)
	if !ok {
		return
	}
	var q ListReceiptsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters: "+err.Error()))
		return
	}

	sales, err := h.checkout.Receipts(c.Request.Context(), cashierID, q.Limit)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successWithMetaResponse("Receipts retrieved successfully", sales, gin.H{"count": len(sales)}))
}

func (h *POSHTTPHandler) GetReceipt(c *gin.Context) {
	cashierID, ok := cashierFrom(c)
	if !ok {
		return
	}

	sale, err := h.checkout.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	// cashiers only see their own sales; managers see every till
	if sale.CashierID != cashierID && !middleware.RoleFrom(c).Can(access.CloseDay) {
		c.JSON(http.StatusNotFound, errorResponse("Receipt not found"))
		return
	}
	c.JSON(http.StatusOK, successResponse("Receipt retrieved successfully", sale))
}
