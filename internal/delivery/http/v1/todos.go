package v1

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mlevkov/go-todo-backend/internal/models"
	"github.com/mlevkov/go-todo-backend/internal/services"
)

type todoResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newTodoResponse(todo *models.Todo) todoResponse {
	resp := todoResponse{
		ID:        todo.ID,
		UserID:    todo.UserID,
		Title:     todo.Title,
		Completed: todo.Completed,
		CreatedAt: todo.CreatedAt,
		UpdatedAt: todo.UpdatedAt,
	}
	if todo.Description != "" {
		resp.Description = &todo.Description
	}
	return resp
}

// abortTodoError maps service errors to responses. Not-found and
// not-owned intentionally collapse into the same 404.
func (h *handlerImpl) abortTodoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTodoNotFound):
		abort(c, newNotFoundError("Todo not found"))
	case errors.Is(err, services.ErrValidation):
		abort(c, newBadRequestError(err.Error()))
	default:
		h.logger.Error().
			Err(err).
			Msg("todo operation failed")
		abort(c, newStatusTextError(http.StatusInternalServerError))
	}
}

type createTodoRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description,omitempty"`
}

func (h *handlerImpl) HandleCreateTodo(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req createTodoRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind create todo request")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	params := services.CreateTodoParams{Title: req.Title}
	if req.Description != nil {
		params.Description = *req.Description
	}

	todo, err := h.todos.Create(c, userID, params)
	if err != nil {
		h.abortTodoError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTodoResponse(todo))
}

func (h *handlerImpl) HandleGetTodos(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var filter services.ListTodosFilter
	if raw := c.Query("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			abort(c, newBadRequestError("completed must be a boolean"))
			return
		}
		filter.Completed = &completed
	}
	if raw := c.Query("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			abort(c, newBadRequestError("skip must be a non-negative integer"))
			return
		}
		filter.Offset = skip
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			abort(c, newBadRequestError("limit must be a non-negative integer"))
			return
		}
		filter.Limit = limit
	}

	todos, err := h.todos.List(c, userID, filter)
	if err != nil {
		h.abortTodoError(c, err)
		return
	}

	response := make([]todoResponse, len(todos))
	for i := range todos {
		response[i] = newTodoResponse(&todos[i])
	}

	c.JSON(http.StatusOK, response)
}

func (h *handlerImpl) HandleGetTodo(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	todo, err := h.todos.Get(c, c.Param("id"), userID)
	if err != nil {
		h.abortTodoError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTodoResponse(todo))
}

type updateTodoRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"is_completed,omitempty"`
}

func (h *handlerImpl) HandleUpdateTodo(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req updateTodoRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind update todo request")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	todo, err := h.todos.Update(c, c.Param("id"), userID, services.UpdateTodoParams{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		h.abortTodoError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTodoResponse(todo))
}

func (h *handlerImpl) HandleToggleTodo(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	todo, err := h.todos.ToggleCompletion(c, c.Param("id"), userID)
	if err != nil {
		h.abortTodoError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTodoResponse(todo))
}

func (h *handlerImpl) HandleDeleteTodo(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	err := h.todos.Delete(c, c.Param("id"), userID)
	if err != nil {
		h.abortTodoError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
