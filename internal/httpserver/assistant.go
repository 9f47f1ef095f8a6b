package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Text string `json:"text"`
}

func (h *handlers) openChat(c *gin.Context) {
	sess, _ := currentSession(c)
	c.JSON(http.StatusOK, h.Assistant.Open(sess.ID, language(c)))
}

func (h *handlers) chatHistory(c *gin.Context) {
	sess, _ := currentSession(c)
	c.JSON(http.StatusOK, h.Assistant.History(sess.ID))
}

func (h *handlers) sendChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}
	sess, _ := currentSession(c)
	reply, err := h.Assistant.Send(c.Request.Context(), sess.ID, req.Text, language(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (h *handlers) closeChat(c *gin.Context) {
	sess, _ := currentSession(c)
	h.Assistant.Close(sess.ID)
	c.Status(http.StatusNoContent)
}
