package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/service/assistant"
	"storefront/internal/service/session"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

type errorMapping struct {
	target error
	status int
	key    string
}

// Order matters: the first matching sentinel wins.
var errorMappings = []errorMapping{
	{session.ErrInvalidToken, http.StatusUnauthorized, "session.invalid"},
	{domain.ErrLoginRequired, http.StatusUnauthorized, "auth.login_required"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "auth.invalid_credentials"},
	{domain.ErrForbidden, http.StatusForbidden, "auth.forbidden"},
	{domain.ErrNotFound, http.StatusNotFound, "error.not_found"},
	{domain.ErrDuplicateEmail, http.StatusConflict, "auth.duplicate_email"},
	{domain.ErrAlreadyExists, http.StatusConflict, "error.conflict"},
	{domain.ErrPasswordMismatch, http.StatusBadRequest, "auth.password_mismatch"},
	{domain.ErrCouponInvalid, http.StatusUnprocessableEntity, "coupon.invalid"},
	{domain.ErrCouponExhausted, http.StatusUnprocessableEntity, "coupon.expired"},
	{domain.ErrEmptyCart, http.StatusBadRequest, "checkout.empty_cart"},
	{domain.ErrSenderRequired, http.StatusBadRequest, "checkout.sender_required"},
	{domain.ErrOutOfStock, http.StatusConflict, "checkout.out_of_stock"},
	{domain.ErrCheckoutInProgress, http.StatusConflict, "checkout.in_progress"},
	{domain.ErrInvalidTransition, http.StatusConflict, "order.invalid_transition"},
	{errConfirmRequired, http.StatusPreconditionRequired, "admin.confirm_required"},
	{assistant.ErrClosed, http.StatusGone, "assistant.closed"},
	{domain.ErrValidation, http.StatusBadRequest, "error.validation"},
	{context.DeadlineExceeded, http.StatusServiceUnavailable, "error.unavailable"},
	{context.Canceled, http.StatusServiceUnavailable, "error.unavailable"},
}

// writeError maps a service error to a status code and a message in the
// request language.
func (h *handlers) writeError(c *gin.Context, err error) {
	status, key := http.StatusInternalServerError, "error.internal"
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			status, key = m.status, m.key
			break
		}
	}

	resp := errorResponse{Code: key, Message: h.Messages.T(language(c), key)}
	switch {
	case status == http.StatusInternalServerError:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	case key == "error.validation" || key == "checkout.out_of_stock":
		resp.Detail = err.Error()
	}
	_ = c.Error(err)
	c.JSON(status, resp)
}

// bindError reports a malformed request body.
func (h *handlers) bindError(c *gin.Context, err error) {
	h.writeError(c, fmt.Errorf("%w: %v", domain.ErrValidation, err))
}
