package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"finteach/internal/models"
	"finteach/internal/util"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	AccountChecking   = "checking"
	AccountSavings    = "savings"
	AccountInvestment = "investment"
)

const (
	maxTransactionAttempts = 5
	maxDetailLen           = 255
)

// LedgerService applies balance changes and maintains goals, budgets and
// the activity log of each user.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// TransactionInput describes one deposit or expense.
type TransactionInput struct {
	Type    string
	Account string
	Amount  decimal.Decimal
	Note    string
	GoalID  *uint
}

// RecordTransaction applies a deposit or expense to one of the user's
// balances and appends an activity entry. Expenses clamp the balance at
// zero. A savings deposit with a goal the user owns also adds to that goal;
// an unknown or foreign goal is ignored.
func (s *LedgerService) RecordTransaction(ctx context.Context, userID uint, in TransactionInput) error {
	amount, err := roundMoney("amount", in.Amount)
	if err != nil {
		return err
	}
	if err := util.ValidateAmount(amount); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if !validAccount(in.Account) {
		return fmt.Errorf("%w: unknown account %q", ErrInvalidRequest, in.Account)
	}
	if in.Type != models.ActivityDeposit && in.Type != models.ActivityExpense {
		return fmt.Errorf("%w: unknown transaction type %q", ErrInvalidRequest, in.Type)
	}
	in.Amount = amount
	in.Note = strings.TrimSpace(in.Note)

	for attempt := 0; attempt < maxTransactionAttempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return applyTransaction(tx, userID, in)
		})
		if !errors.Is(err, ErrConcurrentUpdate) {
			return err
		}
	}
	return err
}

func applyTransaction(tx *gorm.DB, userID uint, in TransactionInput) error {
	acct, err := getOrCreate(tx, userID, models.Account{UserID: userID})
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}

	balance := balanceOf(acct, in.Account)
	accountName := cases.Title(language.English).String(in.Account)
	amountStr := in.Amount.StringFixed(2)

	var detail string
	if in.Type == models.ActivityDeposit {
		next := balance.Add(in.Amount)
		if err := util.CheckMoney(next); err != nil {
			return fmt.Errorf("%w: %s balance would exceed the account limit", ErrInvalidRequest, in.Account)
		}
		*balance = next
		detail = fmt.Sprintf("Deposited ₱%s to %s", amountStr, accountName)
	} else {
		*balance = decimal.Max(decimal.Zero, balance.Sub(in.Amount))
		detail = fmt.Sprintf("Spent ₱%s from %s", amountStr, accountName)
		if in.Note != "" {
			detail += fmt.Sprintf(" (%s)", in.Note)
		}
	}

	// The account write goes first: it is the per-user serialization point,
	// so the goal read below always sees the latest committed state.
	if err := saveAccount(tx, acct); err != nil {
		return err
	}

	if in.Type == models.ActivityDeposit && in.Account == AccountSavings && in.GoalID != nil {
		var goal models.Goal
		err := tx.Where("id = ? AND user_id = ?", *in.GoalID, userID).First(&goal).Error
		switch {
		case err == nil:
			current := goal.Current.Add(in.Amount)
			if err := util.CheckMoney(current); err != nil {
				return fmt.Errorf("%w: goal %q would exceed the amount limit", ErrInvalidRequest, goal.Name)
			}
			if err := tx.Model(&goal).Update("current", current).Error; err != nil {
				return fmt.Errorf("update goal: %w", err)
			}
			detail += fmt.Sprintf(" (Goal: %s)", goal.Name)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("load goal: %w", err)
		}
	}

	activity := models.Activity{
		UserID: userID,
		Type:   in.Type,
		Detail: truncate(detail, maxDetailLen),
	}
	if err := tx.Create(&activity).Error; err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

// saveAccount writes balances only if nobody else did since the row was
// read, bumping the version on success.
func saveAccount(tx *gorm.DB, acct *models.Account) error {
	result := tx.Model(&models.Account{}).
		Where("id = ? AND version = ?", acct.ID, acct.Version).
		Updates(map[string]interface{}{
			"checking_balance":   acct.CheckingBalance,
			"savings_balance":    acct.SavingsBalance,
			"investment_balance": acct.InvestmentBalance,
			"version":            acct.Version + 1,
		})
	if result.Error != nil {
		return fmt.Errorf("save account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrConcurrentUpdate
	}
	acct.Version++
	return nil
}

// getOrCreate loads the per-user row of T, inserting fresh when it does not
// exist yet. A concurrent insert of the same row is absorbed by the unique
// user_id index.
func getOrCreate[T any](tx *gorm.DB, userID uint, fresh T) (*T, error) {
	var row T
	err := tx.Where("user_id = ?", userID).First(&row).Error
	if err == nil {
		return &row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&fresh).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func validAccount(name string) bool {
	switch name {
	case AccountChecking, AccountSavings, AccountInvestment:
		return true
	}
	return false
}

func balanceOf(acct *models.Account, name string) *decimal.Decimal {
	switch name {
	case AccountSavings:
		return &acct.SavingsBalance
	case AccountInvestment:
		return &acct.InvestmentBalance
	default:
		return &acct.CheckingBalance
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// roundMoney bounds a client supplied value and rounds it to cents.
func roundMoney(field string, d decimal.Decimal) (decimal.Decimal, error) {
	if err := util.CheckMoney(d); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrInvalidRequest, field, err)
	}
	return d.Round(2), nil
}
