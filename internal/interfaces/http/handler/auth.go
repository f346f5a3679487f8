package handler

import (
	"github.com/gin-gonic/gin"

	identityapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/identity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/interfaces/http/middleware"
)

// AuthHandler handles login, logout, token refresh and password changes
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
	userService *identityapp.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identityapp.AuthService, userService *identityapp.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// Login authenticates a user and returns a token pair
func (h *AuthHandler) Login(c *gin.Context) {
	var input identityapp.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	input.SourceIP = c.ClientIP()
	input.UserAgent = c.Request.UserAgent()

	result, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Refresh exchanges a refresh token for a new token pair
func (h *AuthHandler) Refresh(c *gin.Context) {
	var input identityapp.RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Logout revokes the current access token
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		h.BadRequest(c, "Missing token")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims, c.ClientIP(), c.Request.UserAgent()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ChangePassword changes the current user's password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid user context")
		return
	}

	var input identityapp.ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, input, c.ClientIP(), c.Request.UserAgent()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Me returns the current user's account
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid user context")
		return
	}

	user, err := h.userService.Get(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}
