package handlers

import (
	"net/http"

	"bookmarkd/internal/middleware"
	"bookmarkd/internal/services"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type LoginResponse struct {
	Refresh  string `json:"refresh"`
	Access   string `json:"access"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// currentUser returns the id RequireToken stored for this request.
func currentUser(c *gin.Context) uint {
	id, _ := middleware.UserID(c)
	return id
}

func (h *Handler) RegisterUser(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, email and password are required"})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.auditService.LogAction(&user.ID, services.ActionRegister, user.Username, nil, c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusOK, gin.H{
		"message": "User created",
		"user":    UserResponse{Username: user.Username, Email: user.Email},
	})
}

func (h *Handler) LoginUser(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	user, pair, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.auditService.LogAction(nil, services.ActionLoginFailed, "", map[string]string{"email": req.Email}, c.ClientIP(), c.Request.UserAgent())
		h.respondError(c, err)
		return
	}

	h.auditService.LogAction(&user.ID, services.ActionLogin, user.Username, nil, c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusOK, gin.H{
		"user": LoginResponse{
			Refresh:  pair.Refresh,
			Access:   pair.Access,
			Username: user.Username,
			Email:    user.Email,
		},
	})
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, UserResponse{Username: user.Username, Email: user.Email})
}

func (h *Handler) RefreshToken(c *gin.Context) {
	access, err := h.authService.Refresh(currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": access})
}
