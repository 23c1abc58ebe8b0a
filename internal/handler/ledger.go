package handler

import (
	"finteach/internal/service"
	"finteach/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// LedgerHandler serves the dashboard, transactions, budget and goals.
type LedgerHandler struct {
	Ledger *service.LedgerService
}

func NewLedgerHandler(ledger *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{Ledger: ledger}
}

// Dashboard returns balances, budget, goals and the latest activity.
func (h *LedgerHandler) Dashboard(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	sum, err := h.Ledger.Summary(c.Request.Context(), user.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	goals := make([]goalResp, 0, len(sum.Goals))
	for _, g := range sum.Goals {
		goals = append(goals, toGoalResp(g))
	}
	recent := make([]activityResp, 0, len(sum.RecentActivity))
	for _, a := range sum.RecentActivity {
		recent = append(recent, toActivityResp(a))
	}

	util.Success(c, util.Response{
		"checking_balance":   money(sum.CheckingBalance),
		"savings_balance":    money(sum.SavingsBalance),
		"investment_balance": money(sum.InvestmentBalance),
		"monthly_budget":     money(sum.MonthlyBudget),
		"goals":              goals,
		"recent_activity":    recent,
	})
}

type transactionReq struct {
	Type    string           `json:"type" binding:"required"`
	Account string           `json:"account" binding:"required"`
	Amount  *decimal.Decimal `json:"amount" binding:"required"`
	Note    string           `json:"note"`
	GoalID  *uint            `json:"goal_id"`
}

// Transaction records a deposit or an expense.
func (h *LedgerHandler) Transaction(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid data")
		return
	}

	err := h.Ledger.RecordTransaction(c.Request.Context(), user.ID, service.TransactionInput{
		Type:    req.Type,
		Account: req.Account,
		Amount:  *req.Amount,
		Note:    req.Note,
		GoalID:  req.GoalID,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	util.Success(c, util.Response{"success": true})
}

type budgetReq struct {
	MonthlyBudget *decimal.Decimal `json:"monthly_budget"`
}

// UpdateBudget overwrites the monthly budget figure.
func (h *LedgerHandler) UpdateBudget(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req budgetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid data")
		return
	}

	value, err := h.Ledger.UpdateBudget(c.Request.Context(), user.ID, req.MonthlyBudget)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	util.Success(c, util.Response{"monthly_budget": money(value)})
}
