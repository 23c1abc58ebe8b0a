package handler

import (
	"finteach/internal/util"

	"github.com/gin-gonic/gin"
)

// GetUser returns the logged in user (requires AuthMiddleware).
func GetUser(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	util.Success(c, util.Response{
		"username": user.Username,
		"email":    user.Email,
	})
}
