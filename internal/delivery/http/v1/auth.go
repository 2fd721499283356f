package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mlevkov/go-todo-backend/internal/models"
	"github.com/mlevkov/go-todo-backend/internal/services"
)

type signupRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email,max=255"`
	Password string `json:"password" form:"password" binding:"required,min=6,max=255"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// newUserResponse never carries the password hash; it does not leave
// the auth service in any response shape.
func newUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func (h *handlerImpl) HandleSignup(c *gin.Context) {
	var req signupRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind signup request")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	user, err := h.auth.Register(c, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUserAlreadyExists) {
			abort(c, newBadRequestError("Email already registered"))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to register user")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(user))
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	// Credentials are accepted from the JSON body or, matching the
	// older client, from query parameters.
	var req loginRequest
	if err := c.ShouldBindBodyWithJSON(&req); err != nil || req.Email == "" {
		req.Email = c.Query("email")
		req.Password = c.Query("password")
	}

	if req.Email == "" || req.Password == "" {
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	result, err := h.auth.Login(c, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			abortUnauthorized(c, "Incorrect email or password")
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to login")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "bearer",
	})
}
