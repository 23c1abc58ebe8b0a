package handler

import (
	"finteach/internal/service"
	"finteach/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves registration and the token endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// ---------- register ----------

type registerReq struct {
	Username string `json:"username" binding:"required,username"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Email    string `json:"email" binding:"omitempty,email,max=254"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username must be 3-150 letters, digits or @.+-_ and password 8-72 characters")
		return
	}

	user, err := h.Auth.Register(c.Request.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	util.Created(c, util.Response{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// ---------- token ----------

type tokenReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Token(c *gin.Context) {
	var req tokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username and password are required")
		return
	}

	pair, err := h.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	util.Success(c, util.Response{
		"access":  pair.Access,
		"refresh": pair.Refresh,
	})
}

type refreshReq struct {
	Refresh string `json:"refresh" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "refresh is required")
		return
	}

	access, err := h.Auth.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	util.Success(c, util.Response{"access": access})
}

// Revoke logs a refresh token out.
func (h *AuthHandler) Revoke(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "refresh is required")
		return
	}

	if err := h.Auth.Revoke(c.Request.Context(), req.Refresh); err != nil {
		writeServiceError(c, err)
		return
	}
	util.Success(c, util.Response{"success": true})
}
