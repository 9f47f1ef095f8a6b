package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/service/checkout"
	"storefront/internal/service/coupon"
)

type couponRequest struct {
	Code string `json:"code"`
}

type quoteResponse struct {
	coupon.Quote
	Message string `json:"message"`
}

type orderResponse struct {
	Order   domain.Order `json:"order"`
	Message string       `json:"message"`
}

func (h *handlers) applyCoupon(c *gin.Context) {
	var req couponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}
	sess, _ := currentSession(c)
	q, err := h.Checkout.ApplyCoupon(c.Request.Context(), sess.ID, req.Code)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, quoteResponse{Quote: q, Message: h.Messages.T(language(c), "coupon.valid")})
}

func (h *handlers) checkout(c *gin.Context) {
	var in checkout.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		h.bindError(c, err)
		return
	}
	sess, _ := currentSession(c)
	o, err := h.Checkout.Checkout(c.Request.Context(), sess, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.logger.Info("order placed", zap.String("order_id", o.ID), zap.String("total", o.Total.String()))
	c.JSON(http.StatusCreated, orderResponse{Order: o, Message: h.Messages.T(language(c), "checkout.success")})
}
