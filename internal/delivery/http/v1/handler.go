package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mlevkov/go-todo-backend/internal/auth"
	"github.com/mlevkov/go-todo-backend/internal/chat"
	"github.com/mlevkov/go-todo-backend/internal/services"
)

type Handler interface {
	HandleSignup(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleCreateTodo(c *gin.Context)
	HandleGetTodos(c *gin.Context)
	HandleGetTodo(c *gin.Context)
	HandleUpdateTodo(c *gin.Context)
	HandleToggleTodo(c *gin.Context)
	HandleDeleteTodo(c *gin.Context)

	HandleChat(c *gin.Context)
}

type handlerImpl struct {
	logger        zerolog.Logger
	tokens        *auth.TokenIssuer
	auth          services.AuthService
	todos         services.TodoService
	conversations services.ConversationService
	chat          *chat.Service
}

func New(
	logger zerolog.Logger,
	tokens *auth.TokenIssuer,
	authService services.AuthService,
	todoService services.TodoService,
	conversationService services.ConversationService,
	chatService *chat.Service,
) Handler {
	return &handlerImpl{
		logger:        logger,
		tokens:        tokens,
		auth:          authService,
		todos:         todoService,
		conversations: conversationService,
		chat:          chatService,
	}
}
