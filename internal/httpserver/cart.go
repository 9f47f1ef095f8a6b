package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

type addToCartRequest struct {
	ProductID string `json:"productId"`
	OptionID  string `json:"optionId"`
	Quantity  int    `json:"quantity"`
}

func (h *handlers) getCart(c *gin.Context) {
	sess, _ := currentSession(c)
	c.JSON(http.StatusOK, h.cartView(c, sess.ID))
}

func (h *handlers) addToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}
	if req.ProductID == "" {
		h.writeError(c, fmt.Errorf("productId required: %w", domain.ErrValidation))
		return
	}
	p, err := h.Catalog.Product(req.ProductID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	sess, _ := currentSession(c)
	if _, err := h.Cart.Add(c.Request.Context(), sess.ID, p, req.OptionID, req.Quantity); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.cartView(c, sess.ID))
}

func (h *handlers) removeFromCart(c *gin.Context) {
	sess, _ := currentSession(c)
	h.Cart.Remove(c.Request.Context(), sess.ID, c.Param("productId"), c.Query("optionId"))
	c.JSON(http.StatusOK, h.cartView(c, sess.ID))
}

func (h *handlers) clearCart(c *gin.Context) {
	sess, _ := currentSession(c)
	h.Cart.Clear(c.Request.Context(), sess.ID)
	c.JSON(http.StatusOK, h.cartView(c, sess.ID))
}

func (h *handlers) cartView(c *gin.Context, sessionID string) cartView {
	ctx := c.Request.Context()
	items := h.Cart.Items(ctx, sessionID)
	if items == nil {
		items = []domain.CartItem{}
	}
	return cartView{
		Items: items,
		Count: h.Cart.Count(ctx, sessionID),
		Total: h.Cart.Total(ctx, sessionID),
	}
}

func (h *handlers) getWishlist(c *gin.Context) {
	sess, _ := currentSession(c)
	lang := language(c)
	list := h.Wishlist.List(c.Request.Context(), sess.ID)
	out := make([]productView, 0, len(list))
	for _, p := range list {
		out = append(out, toProductView(p, lang, true))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) toggleWishlist(c *gin.Context) {
	p, err := h.Catalog.Product(c.Param("productId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	sess, _ := currentSession(c)
	on := h.Wishlist.Toggle(c.Request.Context(), sess.ID, p)
	c.JSON(http.StatusOK, gin.H{"productId": p.ID, "wishlisted": on})
}
