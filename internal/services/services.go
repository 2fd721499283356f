package services

import (
	"context"
	"errors"
	"time"

	"github.com/mlevkov/go-todo-backend/internal/models"
)

var (
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrTodoNotFound         = errors.New("todo not found")
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrValidation wraps every field-constraint failure so handlers
	// can map the whole family to a 400.
	ErrValidation = errors.New("validation failed")
)

type AuthService interface {
	// Register creates a user with a hashed password.
	//
	// It returns ErrUserAlreadyExists if the email is taken.
	Register(ctx context.Context, email, password string) (*models.User, error)

	// Login authenticates the user by email and password and issues
	// an access token.
	//
	// It returns ErrInvalidCredentials for both an unknown email and
	// a wrong password, so callers cannot enumerate accounts.
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

type TodoService interface {
	Create(ctx context.Context, userID string, params CreateTodoParams) (*models.Todo, error)
	List(ctx context.Context, userID string, filter ListTodosFilter) ([]models.Todo, error)

	// Get and every other lookup below filter by todo id AND owner
	// id. A todo id alone never grants access; another user's todo
	// is ErrTodoNotFound.
	Get(ctx context.Context, todoID, userID string) (*models.Todo, error)
	Update(ctx context.Context, todoID, userID string, params UpdateTodoParams) (*models.Todo, error)
	Delete(ctx context.Context, todoID, userID string) error
	ToggleCompletion(ctx context.Context, todoID, userID string) (*models.Todo, error)
}

type ConversationService interface {
	CreateConversation(ctx context.Context, userID string) (*models.Conversation, error)
	AppendMessage(ctx context.Context, conversationID, userID string, params AppendMessageParams) (*models.Message, error)
	ListMessages(ctx context.Context, conversationID, userID string) ([]models.Message, error)
}

type LoginResult struct {
	User                 *models.User
	AccessToken          string
	AccessTokenExpiresAt time.Time
}

type CreateTodoParams struct {
	Title       string
	Description string
}

type ListTodosFilter struct {
	Completed *bool
	Offset    int
	Limit     int
}

// UpdateTodoParams applies only the fields that are non-nil; absent
// fields keep their stored values.
type UpdateTodoParams struct {
	Title       *string
	Description *string
	Completed   *bool
}

type AppendMessageParams struct {
	Role    string
	Content string
	// TodoID optionally links the message to one of the user's todos.
	TodoID string
}
