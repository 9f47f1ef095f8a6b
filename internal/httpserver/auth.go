package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/service/customer"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// register creates the account and logs it in on the calling session.
func (h *handlers) register(c *gin.Context) {
	var req customer.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}
	u, err := h.Customers.Register(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	sess, _ := currentSession(c)
	if _, err := h.Sessions.SetUser(c.Request.Context(), sess.ID, u.ID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserView(u))
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}
	u, err := h.Customers.Login(req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	sess, _ := currentSession(c)
	if _, err := h.Sessions.SetUser(c.Request.Context(), sess.ID, u.ID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserView(u))
}

// logout keeps the session's cart and wishlist.
func (h *handlers) logout(c *gin.Context) {
	sess, _ := currentSession(c)
	if _, err := h.Sessions.ClearUser(c.Request.Context(), sess.ID); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) me(c *gin.Context) {
	u, _ := currentUser(c)
	c.JSON(http.StatusOK, toUserView(u))
}

func (h *handlers) myOrders(c *gin.Context) {
	u, _ := currentUser(c)
	c.JSON(http.StatusOK, orEmptyOrders(h.Orders.ListByUser(u.ID)))
}
