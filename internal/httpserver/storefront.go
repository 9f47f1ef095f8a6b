package httpserver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/i18n"
)

type languageRequest struct {
	Language string `json:"language"`
}

func (h *handlers) issueSession(c *gin.Context) {
	var req languageRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.bindError(c, err)
			return
		}
	}
	lang := req.Language
	if lang == "" {
		lang = language(c)
	}
	sess, err := h.Sessions.Issue(c.Request.Context(), lang)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header(sessionHeader, sess.ID)
	c.JSON(http.StatusCreated, h.sessionView(c, sess, true))
}

func (h *handlers) getSession(c *gin.Context) {
	sess, _ := currentSession(c)
	c.JSON(http.StatusOK, h.sessionView(c, sess, false))
}

func (h *handlers) setLanguage(c *gin.Context) {
	var req languageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}
	if !i18n.Supported(req.Language) {
		h.writeError(c, fmt.Errorf("language %q: %w", req.Language, domain.ErrValidation))
		return
	}
	sess, _ := currentSession(c)
	updated, err := h.Sessions.SetLanguage(c.Request.Context(), sess.ID, req.Language)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Set(ctxLanguage, updated.Language)
	c.JSON(http.StatusOK, h.sessionView(c, updated, false))
}

func (h *handlers) sessionView(c *gin.Context, sess domain.Session, withToken bool) sessionView {
	lang, dir := languageView(sess.Language)
	view := sessionView{
		Language:  lang,
		Direction: dir,
		CartCount: h.Cart.Count(c.Request.Context(), sess.ID),
	}
	if withToken {
		view.Token = sess.ID
		view.ExpiresIn = h.Sessions.TTLSeconds()
	}
	if sess.UserID != "" {
		if u, err := h.Customers.Get(sess.UserID); err == nil {
			uv := toUserView(u)
			view.User = &uv
		}
	}
	return view
}

// listProducts searches by name/description in the request language and
// filters by category; "All" or an empty category disables the filter.
func (h *handlers) listProducts(c *gin.Context) {
	lang := language(c)
	products := h.Catalog.Search(strings.TrimSpace(c.Query("q")), c.Query("category"), lang)
	sess, hasSession := currentSession(c)
	out := make([]productView, 0, len(products))
	for _, p := range products {
		wished := hasSession && h.Wishlist.Contains(c.Request.Context(), sess.ID, p.ID)
		out = append(out, toProductView(p, lang, wished))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.Catalog.Product(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	sess, hasSession := currentSession(c)
	wished := hasSession && h.Wishlist.Contains(c.Request.Context(), sess.ID, p.ID)
	c.JSON(http.StatusOK, toProductView(p, language(c), wished))
}

func (h *handlers) listCategories(c *gin.Context) {
	lang := language(c)
	cats := h.Catalog.Categories()
	out := make([]categoryView, 0, len(cats))
	for _, cat := range cats {
		out = append(out, toCategoryView(cat, lang))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) getStore(c *gin.Context) {
	c.JSON(http.StatusOK, h.Settings.Get())
}
