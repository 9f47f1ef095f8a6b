package httpserver

import (
	"errors"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/i18n"
	"storefront/internal/service/session"
)

const (
	sessionHeader = "X-Session-Token"

	ctxSession  = "storefront.session"
	ctxLanguage = "storefront.language"
	ctxUser     = "storefront.user"
)

var errConfirmRequired = errors.New("destructive action requires confirm=true")

// requestLogger logs one line per request. Session tokens are never logged.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("http request", fields...)
		default:
			logger.Info("http request", fields...)
		}
	}
}

func recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.ByteString("stack", debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"code": "error.internal"})
			}
		}()
		c.Next()
	}
}

// resolveSession attaches the session named by the header, when valid, and the
// request language: the session's preference, else Accept-Language.
func (h *handlers) resolveSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := ""
		if token := c.GetHeader(sessionHeader); token != "" {
			if sess, err := h.Sessions.Lookup(c.Request.Context(), token); err == nil {
				c.Set(ctxSession, sess)
				lang = sess.Language
			}
		}
		if lang == "" {
			lang = i18n.FromAcceptLanguage(c.GetHeader("Accept-Language"))
		}
		c.Set(ctxLanguage, lang)
		c.Next()
	}
}

func (h *handlers) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentSession(c); !ok {
			h.abort(c, session.ErrInvalidToken)
			return
		}
		c.Next()
	}
}

func (h *handlers) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _ := currentSession(c)
		if sess.UserID == "" {
			h.abort(c, domain.ErrLoginRequired)
			return
		}
		u, err := h.Customers.Get(sess.UserID)
		if err != nil {
			h.abort(c, domain.ErrLoginRequired)
			return
		}
		c.Set(ctxUser, u)
		c.Next()
	}
}

func (h *handlers) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := currentUser(c)
		if !ok || !u.IsAdmin() {
			h.abort(c, domain.ErrForbidden)
			return
		}
		c.Next()
	}
}

// requireConfirm guards deletes behind ?confirm=true.
func (h *handlers) requireConfirm() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, _ := strconv.ParseBool(c.Query("confirm"))
		if !ok {
			h.abort(c, errConfirmRequired)
			return
		}
		c.Next()
	}
}

func (h *handlers) abort(c *gin.Context, err error) {
	h.writeError(c, err)
	c.Abort()
}

func currentSession(c *gin.Context) (domain.Session, bool) {
	v, ok := c.Get(ctxSession)
	if !ok {
		return domain.Session{}, false
	}
	sess, ok := v.(domain.Session)
	return sess, ok
}

func currentUser(c *gin.Context) (domain.User, bool) {
	v, ok := c.Get(ctxUser)
	if !ok {
		return domain.User{}, false
	}
	u, ok := v.(domain.User)
	return u, ok
}

func language(c *gin.Context) string {
	return c.GetString(ctxLanguage)
}
