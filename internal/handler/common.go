package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"finteach/internal/logger"
	"finteach/internal/middleware"
	"finteach/internal/models"
	"finteach/internal/service"
	"finteach/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const activityDateLayout = "2006-01-02 15:04"

// requireUser returns the authenticated user or writes a 401.
func requireUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Authentication credentials were not provided.")
		return nil, false
	}
	return user, true
}

// writeServiceError maps service sentinels to HTTP responses. Unexpected
// errors are logged and hidden behind a generic message.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, clientMessage(err, service.ErrInvalidRequest))
	case errors.Is(err, service.ErrNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Not found.")
	case errors.Is(err, service.ErrUnauthorized):
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, clientMessage(err, service.ErrUnauthorized))
	default:
		logger.GetGinLogger(c).Error("request failed", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Internal server error")
	}
}

// clientMessage strips the sentinel prefix from "sentinel: detail".
func clientMessage(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}

func badRequest(c *gin.Context, msg string) {
	util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, msg)
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Not found.")
		return 0, false
	}
	return uint(id), true
}

// money renders a decimal as a JSON number.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

type goalResp struct {
	ID      uint    `json:"id"`
	Name    string  `json:"name"`
	Current float64 `json:"current"`
	Target  float64 `json:"target"`
}

func toGoalResp(g models.Goal) goalResp {
	return goalResp{
		ID:      g.ID,
		Name:    g.Name,
		Current: money(g.Current),
		Target:  money(g.Target),
	}
}

type activityResp struct {
	Type   string `json:"type"`
	Detail string `json:"detail"`
	Date   string `json:"date"`
}

func toActivityResp(a models.Activity) activityResp {
	return activityResp{
		Type:   a.Type,
		Detail: a.Detail,
		Date:   a.CreatedAt.Format(activityDateLayout),
	}
}
