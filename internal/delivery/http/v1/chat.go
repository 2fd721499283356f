package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mlevkov/go-todo-backend/internal/chat"
	"github.com/mlevkov/go-todo-backend/internal/models"
	"github.com/mlevkov/go-todo-backend/internal/services"
)

type chatMessage struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required"`
}

type chatRequest struct {
	// ConversationID continues an existing conversation; when empty a
	// new one is started.
	ConversationID string        `json:"conversation_id,omitempty"`
	Messages       []chatMessage `json:"messages" binding:"required,min=1,dive"`
}

type chatResponse struct {
	Response       string   `json:"response"`
	Suggestions    []string `json:"suggestions"`
	ConversationID string   `json:"conversation_id,omitempty"`
}

func (h *handlerImpl) HandleChat(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req chatRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind chat request")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	messages := make([]chat.Message, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = chat.Message{Role: msg.Role, Content: msg.Content}
	}

	result, err := h.chat.Respond(c, userID, messages)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to respond to chat")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	conversationID := h.persistExchange(c, userID, req, result)

	c.JSON(http.StatusOK, chatResponse{
		Response:       result.Response,
		Suggestions:    result.Suggestions,
		ConversationID: conversationID,
	})
}

// persistExchange records the last user message and the reply. Chat is
// best-effort end to end, so persistence failures degrade to an
// unrecorded exchange instead of failing the request.
func (h *handlerImpl) persistExchange(c *gin.Context, userID string, req chatRequest, result *chat.Result) string {
	conversationID := req.ConversationID
	if conversationID == "" {
		conversation, err := h.conversations.CreateConversation(c, userID)
		if err != nil {
			h.logger.Error().
				Err(err).
				Msg("failed to create conversation")
			return ""
		}
		conversationID = conversation.ID
	}

	last := req.Messages[len(req.Messages)-1]
	_, err := h.conversations.AppendMessage(c, conversationID, userID, services.AppendMessageParams{
		Role:    models.RoleUser,
		Content: last.Content,
	})
	if err != nil {
		if errors.Is(err, services.ErrConversationNotFound) {
			h.logger.Warn().
				Str("conversation_id", conversationID).
				Msg("conversation not found, exchange not recorded")
			return ""
		}
		h.logger.Error().
			Err(err).
			Msg("failed to append user message")
		return ""
	}

	_, err = h.conversations.AppendMessage(c, conversationID, userID, services.AppendMessageParams{
		Role:    models.RoleAssistant,
		Content: result.Response,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to append assistant message")
	}
	return conversationID
}
