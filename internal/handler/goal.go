package handler

import (
	"finteach/internal/service"
	"finteach/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *LedgerHandler) ListGoals(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	goals, err := h.Ledger.ListGoals(c.Request.Context(), user.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	items := make([]goalResp, 0, len(goals))
	for _, g := range goals {
		items = append(items, toGoalResp(g))
	}
	util.Success(c, util.Response{"goals": items})
}

type createGoalReq struct {
	Name    string           `json:"name" binding:"required,max=100"`
	Target  *decimal.Decimal `json:"target" binding:"required"`
	Current *decimal.Decimal `json:"current"`
}

func (h *LedgerHandler) CreateGoal(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req createGoalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Name and target required")
		return
	}

	goal, err := h.Ledger.CreateGoal(c.Request.Context(), user.ID, service.GoalInput{
		Name:    req.Name,
		Target:  req.Target,
		Current: req.Current,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp := toGoalResp(*goal)
	util.Created(c, util.Response{
		"id":      resp.ID,
		"name":    resp.Name,
		"target":  resp.Target,
		"current": resp.Current,
	})
}

type editGoalReq struct {
	Name    *string          `json:"name" binding:"omitempty,max=100"`
	Target  *decimal.Decimal `json:"target"`
	Current *decimal.Decimal `json:"current"`
}

func (h *LedgerHandler) EditGoal(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	goalID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req editGoalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid data")
		return
	}

	goal, err := h.Ledger.EditGoal(c.Request.Context(), user.ID, goalID, service.GoalPatch{
		Name:    req.Name,
		Target:  req.Target,
		Current: req.Current,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp := toGoalResp(*goal)
	util.Success(c, util.Response{
		"id":      resp.ID,
		"name":    resp.Name,
		"target":  resp.Target,
		"current": resp.Current,
	})
}

func (h *LedgerHandler) DeleteGoal(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	goalID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.Ledger.DeleteGoal(c.Request.Context(), user.ID, goalID); err != nil {
		writeServiceError(c, err)
		return
	}
	util.Success(c, util.Response{"success": true})
}
