package handler

import (
	"errors"
	"net/http"

	"finteach/internal/chat"
	"finteach/internal/util"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	Relay *chat.Relay
}

func NewChatHandler(relay *chat.Relay) *ChatHandler {
	return &ChatHandler{Relay: relay}
}

type chatReq struct {
	Message string `json:"message"`
}

// Chat relays one message to the assistant. Upstream trouble is answered
// with a fallback reply, never an error status.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatReq
	// a missing or malformed body is treated as an empty message
	_ = c.ShouldBindJSON(&req)

	reply, err := h.Relay.Ask(c.Request.Context(), req.Message)
	if errors.Is(err, chat.ErrEmptyMessage) {
		c.JSON(http.StatusBadRequest, util.Response{"reply": "Please enter a message."})
		return
	}
	if err != nil {
		writeServiceError(c, err)
		return
	}
	util.Success(c, util.Response{"reply": reply})
}
