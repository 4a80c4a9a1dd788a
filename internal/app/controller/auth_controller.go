package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/model"
	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/service"
	apperrors "github.com/Oyshik-ICT/ecommerce-backend/internal/errors"
	"github.com/Oyshik-ICT/ecommerce-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=8"`
}

// Register creates a new account and returns a token pair.
// POST /api/v1/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.ValidationError(c, err)
		return
	}

	user, tokens, err := ctrl.authService.Register(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			apperrors.FieldErrors(c, map[string]string{"email": "Email is already registered"})
			return
		}
		log.Error("Registration failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.InternalError(c, "Failed to register user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":   user,
		"tokens": tokens,
	})
}

// Login authenticates credentials and returns a token pair.
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.ValidationError(c, err)
		return
	}

	user, tokens, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.Unauthorized(c, "Invalid email or password")
			return
		}
		log.Error("Login failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.InternalError(c, "Failed to log in")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   user,
		"tokens": tokens,
	})
}

// GetMe returns the authenticated user's account.
// GET /api/v1/auth/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "User not authenticated")
		return
	}

	user, err := ctrl.authService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, "User not found")
			return
		}
		apperrors.InternalError(c, "Failed to fetch user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ListUsers returns all accounts for admins and only the caller's own
// account otherwise.
// GET /api/v1/users
func (ctrl *AuthController) ListUsers(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	users, err := ctrl.authService.ListUsers(userID, role)
	if err != nil {
		apperrors.InternalError(c, "Failed to list users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"count": len(users),
	})
}

// GetUser returns one account, restricted to its owner or an admin.
// GET /api/v1/users/:id
func (ctrl *AuthController) GetUser(c *gin.Context) {
	targetID, ok := parseUserID(c)
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)
	if role != model.RoleAdmin && userID != targetID {
		apperrors.Forbidden(c, "You do not have permission to view this user")
		return
	}

	user, err := ctrl.authService.GetUserByID(targetID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, "User not found")
			return
		}
		apperrors.InternalError(c, "Failed to fetch user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateUser changes an account's email or password.
// PUT /api/v1/users/:id
func (ctrl *AuthController) UpdateUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	targetID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.ValidationError(c, err)
		return
	}

	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	user, err := ctrl.authService.UpdateUser(userID, role, targetID, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotOwner):
			apperrors.Forbidden(c, "You do not have permission to update this user")
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, "User not found")
		case errors.Is(err, service.ErrEmailAlreadyExists):
			apperrors.FieldErrors(c, map[string]string{"email": "Email is already registered"})
		default:
			log.Error("Failed to update user", err, map[string]interface{}{
				"user_id": targetID,
			})
			apperrors.InternalError(c, "Failed to update user")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DeleteUser removes an account.
// DELETE /api/v1/users/:id
func (ctrl *AuthController) DeleteUser(c *gin.Context) {
	targetID, ok := parseUserID(c)
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	err := ctrl.authService.DeleteUser(userID, role, targetID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotOwner):
			apperrors.Forbidden(c, "You do not have permission to delete this user")
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, "User not found")
		default:
			apperrors.InternalError(c, "Failed to delete user")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

func parseUserID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, "Invalid user id")
		return 0, false
	}
	return uint(id), true
}
