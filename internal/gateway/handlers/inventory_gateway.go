package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"feedmart-pos/internal/access"
	"feedmart-pos/internal/catalog"
	"feedmart-pos/internal/gateway/middleware"
	"feedmart-pos/internal/models"
	"feedmart-pos/internal/money"

	"github.com/gin-gonic/gin"
)

type CatalogSource interface {
	Products(ctx context.Context) ([]models.Product, error)
	Product(ctx context.Context, id int64) (models.Product, error)
}

type InventoryHTTPHandler struct {
	catalog CatalogSource
	now     func() time.Time
}

func NewInventoryHTTPHandler(catalog CatalogSource) *InventoryHTTPHandler {
	return &InventoryHTTPHandler{catalog: catalog, now: time.Now}
}

type ListProductsQuery struct {
	catalog.Query
	ExpiringDays int `form:"expiring_within_days"`
}

type ProductView struct {
	ID            int64       `json:"product_id"`
	Name          string      `json:"name"`
	Price         string      `json:"price"`
	StockQuantity int         `json:"stock_quantity"`
	UnitType      models.Unit `json:"unit_type"`
	WeightPerBag  *int        `json:"weight_per_bag,omitempty"`
	ReorderLevel  *int        `json:"reorder_level,omitempty"`
	ExpiryDate    *string     `json:"expiry_date,omitempty"`
	LowStock      bool        `json:"low_stock"`
	ExpiringSoon  bool        `json:"expiring_soon"`

	CostPrice *string `json:"cost_price,omitempty"`
	Margin    *string `json:"margin_percent,omitempty"`
}

const expiryWarningDays = 30

func (h *InventoryHTTPHandler) productView(p models.Product, role access.Role) ProductView {
	v := ProductView{
		ID:            p.ID,
		Name:          p.Name,
		Price:         money.Format(money.Parse(p.Price)),
		StockQuantity: p.StockQuantity,
		UnitType:      p.UnitType,
		WeightPerBag:  p.WeightPerBag,
		ReorderLevel:  p.ReorderLevel,
		ExpiryDate:    p.ExpiryDate,
		LowStock:      catalog.IsLowStock(p),
		ExpiringSoon:  catalog.ExpiresWithin(p, h.now(), expiryWarningDays),
	}
	if role.Can(access.ViewCost) {
		cost := money.Format(money.Parse(p.CostPrice))
		margin := catalog.Margin(p).StringFixed(2)
		v.CostPrice = &cost
		v.Margin = &margin
	}
	return v
}

func (h *InventoryHTTPHandler) ListProducts(c *gin.Context) {
	var q ListProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters: "+err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	products, err := h.catalog.Products(ctx)
	if err != nil {
		handleError(c, err)
		return
	}

	role := middleware.RoleFrom(c)
	filtered := catalog.Filter(products, q.Query)
	views := make([]ProductView, 0, len(filtered))
	for _, p := range filtered {
		if q.ExpiringDays > 0 && !catalog.ExpiresWithin(p, h.now(), q.ExpiringDays) {
			continue
		}
		views = append(views, h.productView(p, role))
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Products retrieved successfully", views, gin.H{
		"total":    len(views),
		"catalog":  len(products),
		"currency": money.Currency,
	}))
}

func (h *InventoryHTTPHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid product ID"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	p, err := h.catalog.Product(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Product retrieved successfully", h.productView(p, middleware.RoleFrom(c))))
}
