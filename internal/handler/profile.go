package handler

import (
	"finteach/internal/util"

	"github.com/gin-gonic/gin"
)

type updateProfileReq struct {
	Email string `json:"email" binding:"omitempty,email,max=254"`
}

type changePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// UpdateProfile changes the current user's email.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Enter a valid email address.")
		return
	}

	if err := h.Auth.UpdateEmail(c.Request.Context(), user, req.Email); err != nil {
		writeServiceError(c, err)
		return
	}

	util.Success(c, util.Response{
		"username": user.Username,
		"email":    user.Email,
	})
}

// ChangePassword sets a new password. Existing refresh tokens stop working.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req changePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "old_password and a new_password of 8-72 characters are required")
		return
	}

	if err := h.Auth.ChangePassword(c.Request.Context(), user, req.OldPassword, req.NewPassword); err != nil {
		writeServiceError(c, err)
		return
	}
	util.Success(c, util.Response{"success": true})
}
