package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlevkov/go-todo-backend/internal/auth"
	"github.com/mlevkov/go-todo-backend/internal/chat"
	"github.com/mlevkov/go-todo-backend/internal/config"
	"github.com/mlevkov/go-todo-backend/internal/services"
	"github.com/mlevkov/go-todo-backend/internal/storage"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gateway, err := storage.Open(zerolog.Nop(), config.DatabaseConfig{
		URL:         filepath.Join(t.TempDir(), "test.db"),
		PingTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = gateway.Close() })
	require.NoError(t, gateway.Init(context.Background()))

	tokens := auth.NewTokenIssuer("todo-api", []byte("test-signing-key"), 30*time.Minute)
	authService := services.NewAuthService(zerolog.Nop(), gateway, tokens)
	todoService := services.NewTodoService(zerolog.Nop(), gateway)
	conversationService := services.NewConversationService(zerolog.Nop(), gateway)
	chatService := chat.NewService(zerolog.Nop(), nil, todoService)

	handler := New(zerolog.Nop(), tokens, authService, todoService, conversationService, chatService)

	router := gin.New()
	apiRouter := router.Group("/api")

	authRouter := apiRouter.Group("/auth")
	authRouter.POST("/signup", handler.HandleSignup)
	authRouter.POST("/login", handler.HandleLogin)

	todosRouter := apiRouter.Group("/todos", handler.HandleAuthMiddleware)
	todosRouter.POST("", handler.HandleCreateTodo)
	todosRouter.GET("", handler.HandleGetTodos)
	todosRouter.GET("/:id", handler.HandleGetTodo)
	todosRouter.PUT("/:id", handler.HandleUpdateTodo)
	todosRouter.PATCH("/:id/complete", handler.HandleToggleTodo)
	todosRouter.DELETE("/:id", handler.HandleDeleteTodo)

	apiRouter.POST("/chat", handler.HandleAuthMiddleware, handler.HandleChat)

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func signupAndLogin(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()

	recorder := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	token, ok := decodeBody(t, recorder)["access_token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func TestSignup(t *testing.T) {
	router := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, "alice@example.com", body["email"])
	assert.Equal(t, true, body["is_active"])
	assert.NotEmpty(t, body["id"])
	assert.NotContains(t, body, "password_hash")
}

func TestSignup_DuplicateEmail(t *testing.T) {
	router := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = doJSON(t, router, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email":    "alice@example.com",
		"password": "password456",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Email already registered", decodeBody(t, recorder)["error"])
}

func TestSignup_InvalidBody(t *testing.T) {
	router := newTestRouter(t)

	for name, body := range map[string]gin.H{
		"missing email":    {"password": "password123"},
		"malformed email":  {"email": "not-an-email", "password": "password123"},
		"short password":   {"email": "a@example.com", "password": "short"},
		"missing password": {"email": "a@example.com"},
	} {
		recorder := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", body)
		assert.Equal(t, http.StatusBadRequest, recorder.Code, name)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	router := newTestRouter(t)
	signupAndLogin(t, router, "alice@example.com")

	recorder := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "Bearer", recorder.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "Incorrect email or password", decodeBody(t, recorder)["error"])
}

func TestLogin_QueryParameters(t *testing.T) {
	router := newTestRouter(t)
	signupAndLogin(t, router, "alice@example.com")

	recorder := doJSON(t, router, http.MethodPost,
		"/api/auth/login?email=alice@example.com&password=password123", "", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "bearer", decodeBody(t, recorder)["token_type"])
}

func TestTodos_RequireAuthentication(t *testing.T) {
	router := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodGet, "/api/todos", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "Bearer", recorder.Header().Get("WWW-Authenticate"))

	recorder = doJSON(t, router, http.MethodGet, "/api/todos", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestTodos_FullLifecycle(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndLogin(t, router, "alice@example.com")

	// Create.
	recorder := doJSON(t, router, http.MethodPost, "/api/todos", token, gin.H{
		"title":       "Buy milk",
		"description": "Two liters",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)
	created := decodeBody(t, recorder)
	todoID, ok := created["id"].(string)
	require.True(t, ok)
	assert.Equal(t, "Buy milk", created["title"])
	assert.Equal(t, "Two liters", created["description"])
	assert.Equal(t, false, created["is_completed"])

	// Read back.
	recorder = doJSON(t, router, http.MethodGet, "/api/todos/"+todoID, token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "Buy milk", decodeBody(t, recorder)["title"])

	// Toggle completion.
	recorder = doJSON(t, router, http.MethodPatch, "/api/todos/"+todoID+"/complete", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, decodeBody(t, recorder)["is_completed"])

	// Partial update.
	recorder = doJSON(t, router, http.MethodPut, "/api/todos/"+todoID, token, gin.H{
		"title": "Buy oat milk",
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	updated := decodeBody(t, recorder)
	assert.Equal(t, "Buy oat milk", updated["title"])
	assert.Equal(t, "Two liters", updated["description"])
	assert.Equal(t, true, updated["is_completed"])

	// List.
	recorder = doJSON(t, router, http.MethodGet, "/api/todos", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var todos []map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &todos))
	require.Len(t, todos, 1)

	// Delete.
	recorder = doJSON(t, router, http.MethodDelete, "/api/todos/"+todoID, token, nil)
	require.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = doJSON(t, router, http.MethodGet, "/api/todos/"+todoID, token, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "Todo not found", decodeBody(t, recorder)["error"])
}

func TestTodos_NullDescription(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndLogin(t, router, "alice@example.com")

	recorder := doJSON(t, router, http.MethodPost, "/api/todos", token, gin.H{
		"title": "No details",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	body := decodeBody(t, recorder)
	value, present := body["description"]
	assert.True(t, present)
	assert.Nil(t, value)
}

func TestTodos_ValidationErrors(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndLogin(t, router, "alice@example.com")

	recorder := doJSON(t, router, http.MethodPost, "/api/todos", token, gin.H{"title": ""})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = doJSON(t, router, http.MethodGet, "/api/todos?completed=maybe", token, nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = doJSON(t, router, http.MethodGet, "/api/todos?skip=-1", token, nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestTodos_ListFilterAndPagination(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndLogin(t, router, "alice@example.com")

	var firstID string
	for i, title := range []string{"one", "two", "three"} {
		recorder := doJSON(t, router, http.MethodPost, "/api/todos", token, gin.H{"title": title})
		require.Equal(t, http.StatusCreated, recorder.Code)
		if i == 0 {
			firstID = decodeBody(t, recorder)["id"].(string)
		}
	}

	recorder := doJSON(t, router, http.MethodPatch, "/api/todos/"+firstID+"/complete", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, router, http.MethodGet, "/api/todos?completed=true", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var completed []map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &completed))
	require.Len(t, completed, 1)
	assert.Equal(t, "one", completed[0]["title"])

	recorder = doJSON(t, router, http.MethodGet, "/api/todos?skip=1&limit=1", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var page []map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &page))
	require.Len(t, page, 1)
	assert.Equal(t, "two", page[0]["title"])
}

func TestTodos_CrossUserAccessIsNotFound(t *testing.T) {
	router := newTestRouter(t)
	aliceToken := signupAndLogin(t, router, "alice@example.com")
	bobToken := signupAndLogin(t, router, "bob@example.com")

	recorder := doJSON(t, router, http.MethodPost, "/api/todos", aliceToken, gin.H{"title": "Alice's"})
	require.Equal(t, http.StatusCreated, recorder.Code)
	todoID := decodeBody(t, recorder)["id"].(string)

	for _, attempt := range []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/todos/" + todoID, nil},
		{http.MethodPut, "/api/todos/" + todoID, gin.H{"title": "stolen"}},
		{http.MethodPatch, "/api/todos/" + todoID + "/complete", nil},
		{http.MethodDelete, "/api/todos/" + todoID, nil},
	} {
		recorder := doJSON(t, router, attempt.method, attempt.path, bobToken, attempt.body)
		assert.Equal(t, http.StatusNotFound, recorder.Code,
			fmt.Sprintf("%s %s", attempt.method, attempt.path))
	}
}

func TestChat_DegradedWithoutModel(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndLogin(t, router, "alice@example.com")

	recorder := doJSON(t, router, http.MethodPost, "/api/chat", token, gin.H{
		"messages": []gin.H{{"role": "user", "content": "what should I do?"}},
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	assert.NotEmpty(t, body["response"])
	assert.NotEmpty(t, body["suggestions"])
	assert.NotEmpty(t, body["conversation_id"])
}

func TestChat_ContinuesConversation(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndLogin(t, router, "alice@example.com")

	recorder := doJSON(t, router, http.MethodPost, "/api/chat", token, gin.H{
		"messages": []gin.H{{"role": "user", "content": "hello"}},
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	conversationID := decodeBody(t, recorder)["conversation_id"].(string)
	require.NotEmpty(t, conversationID)

	recorder = doJSON(t, router, http.MethodPost, "/api/chat", token, gin.H{
		"conversation_id": conversationID,
		"messages":        []gin.H{{"role": "user", "content": "and now?"}},
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, conversationID, decodeBody(t, recorder)["conversation_id"])
}

func TestChat_RejectsInvalidBody(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndLogin(t, router, "alice@example.com")

	recorder := doJSON(t, router, http.MethodPost, "/api/chat", token, gin.H{
		"messages": []gin.H{},
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = doJSON(t, router, http.MethodPost, "/api/chat", token, gin.H{
		"messages": []gin.H{{"role": "system", "content": "hi"}},
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
