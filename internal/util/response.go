package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is a flat JSON object body.
type Response map[string]interface{}

// Error codes carried next to the HTTP status.
const (
	CodeInvalidParam = 40001
	CodeAuth         = 40101
	CodeNotFound     = 40401
	CodeServerErr    = 50001
)

// Success writes a 200 response with the payload as the top-level object.
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, data)
}

// Created writes a 201 response.
func Created(c *gin.Context, data Response) {
	c.JSON(http.StatusCreated, data)
}

// Error writes {"code": code, "error": msg} with the given status.
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":  code,
		"error": msg,
	})
}
