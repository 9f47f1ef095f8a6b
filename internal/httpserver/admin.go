package httpserver

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/service/order"
	"storefront/internal/service/settings"
)

const (
	recentOrders    = 5
	defaultDays     = 7
	maxDailyBuckets = 90
)

type stockRequest struct {
	InStock *bool `json:"inStock"`
}

type statusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

type dashboardResponse struct {
	Metrics order.Metrics      `json:"metrics"`
	Daily   []order.DailyPoint `json:"daily"`
	Recent  []domain.Order     `json:"recent"`
}

func (h *handlers) adminListProducts(c *gin.Context) {
	c.JSON(http.StatusOK, h.Catalog.Products())
}

func (h *handlers) createProduct(c *gin.Context) {
	var in domain.Product
	if err := c.ShouldBindJSON(&in); err != nil {
		h.bindError(c, err)
		return
	}
	p, err := h.Catalog.CreateProduct(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handlers) updateProduct(c *gin.Context) {
	var in domain.Product
	if err := c.ShouldBindJSON(&in); err != nil {
		h.bindError(c, err)
		return
	}
	in.ID = c.Param("id")
	p, err := h.Catalog.UpdateProduct(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) setStock(c *gin.Context) {
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}
	if req.InStock == nil {
		h.writeError(c, fmt.Errorf("inStock required: %w", domain.ErrValidation))
		return
	}
	p, err := h.Catalog.SetStock(c.Request.Context(), c.Param("id"), *req.InStock)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) deleteProduct(c *gin.Context) {
	h.Catalog.DeleteProduct(c.Request.Context(), c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *handlers) createCategory(c *gin.Context) {
	var in domain.Category
	if err := c.ShouldBindJSON(&in); err != nil {
		h.bindError(c, err)
		return
	}
	cat, err := h.Catalog.CreateCategory(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *handlers) updateCategory(c *gin.Context) {
	var in domain.Category
	if err := c.ShouldBindJSON(&in); err != nil {
		h.bindError(c, err)
		return
	}
	in.ID = c.Param("id")
	cat, err := h.Catalog.UpdateCategory(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *handlers) deleteCategory(c *gin.Context) {
	h.Catalog.DeleteCategory(c.Request.Context(), c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *handlers) listCoupons(c *gin.Context) {
	c.JSON(http.StatusOK, h.Coupons.List())
}

func (h *handlers) createCoupon(c *gin.Context) {
	var in domain.Coupon
	if err := c.ShouldBindJSON(&in); err != nil {
		h.bindError(c, err)
		return
	}
	cp, err := h.Coupons.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cp)
}

func (h *handlers) updateCoupon(c *gin.Context) {
	var in domain.Coupon
	if err := c.ShouldBindJSON(&in); err != nil {
		h.bindError(c, err)
		return
	}
	in.ID = c.Param("id")
	cp, err := h.Coupons.Update(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cp)
}

func (h *handlers) deleteCoupon(c *gin.Context) {
	h.Coupons.Delete(c.Request.Context(), c.Param("id"))
	c.Status(http.StatusNoContent)
}

// listOrders returns the ledger, most recent first, optionally filtered by
// ?status=.
func (h *handlers) listOrders(c *gin.Context) {
	orders := h.Orders.List()
	if raw := c.Query("status"); raw != "" {
		status := domain.OrderStatus(raw)
		if !status.Valid() {
			h.writeError(c, fmt.Errorf("status %q: %w", raw, domain.ErrValidation))
			return
		}
		filtered := orders[:0]
		for _, o := range orders {
			if o.Status == status {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}
	c.JSON(http.StatusOK, orEmptyOrders(orders))
}

func (h *handlers) getOrder(c *gin.Context) {
	o, err := h.Orders.Get(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handlers) updateOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}
	o, err := h.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.logger.Info("order status changed", zap.String("order_id", o.ID), zap.String("status", string(o.Status)))
	c.JSON(http.StatusOK, o)
}

func (h *handlers) deleteOrder(c *gin.Context) {
	h.Orders.Delete(c.Request.Context(), c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *handlers) listCustomers(c *gin.Context) {
	c.JSON(http.StatusOK, toUserViews(h.Customers.List()))
}

func (h *handlers) deleteCustomer(c *gin.Context) {
	if err := h.Customers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// metrics serves the dashboard: ?window=today|week|month|all and ?days=N for
// the daily revenue chart.
func (h *handlers) metrics(c *gin.Context) {
	window, err := order.ParseWindow(c.Query("window"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	days := defaultDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxDailyBuckets {
			h.writeError(c, fmt.Errorf("days %q: %w", raw, domain.ErrValidation))
			return
		}
		days = n
	}
	c.JSON(http.StatusOK, dashboardResponse{
		Metrics: h.Orders.Metrics(window),
		Daily:   h.Orders.DailyRevenue(days),
		Recent:  orEmptyOrders(h.Orders.Recent(recentOrders)),
	})
}

func (h *handlers) updateSettings(c *gin.Context) {
	var in domain.StoreConfig
	if err := c.ShouldBindJSON(&in); err != nil {
		h.bindError(c, err)
		return
	}
	// The icon is managed through the upload endpoint.
	in.IconURL = h.Settings.Get().IconURL
	cfg, err := h.Settings.Update(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// uploadIcon accepts a multipart "icon" file.
func (h *handlers) uploadIcon(c *gin.Context) {
	fh, err := c.FormFile("icon")
	if err != nil {
		h.bindError(c, err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, settings.MaxIconBytes+1))
	if err != nil {
		h.writeError(c, err)
		return
	}
	cfg, err := h.Settings.SetIcon(c.Request.Context(), data)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}
