package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"finteach/internal/config"
	"finteach/internal/database"
	"finteach/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type LedgerSuite struct {
	suite.Suite
	db    *gorm.DB
	svc   *LedgerService
	ctx   context.Context
	alice uint
	bob   uint
}

func (s *LedgerSuite) SetupTest() {
	path := filepath.Join(s.T().TempDir(), "ledger.db")
	db, err := database.Init(config.DatabaseConfig{Driver: "sqlite", Path: path}, nil)
	require.NoError(s.T(), err)
	require.NoError(s.T(), database.AutoMigrate(db))

	s.db = db
	s.svc = NewLedgerService(db)
	s.ctx = context.Background()
	s.alice = s.createUser("alice")
	s.bob = s.createUser("bob")
}

func (s *LedgerSuite) TearDownTest() {
	_ = database.Close(s.db)
}

func (s *LedgerSuite) createUser(name string) uint {
	u := models.User{Username: name, PasswordHash: "x"}
	require.NoError(s.T(), s.db.Create(&u).Error)
	return u.ID
}

func (s *LedgerSuite) account(userID uint) models.Account {
	var acct models.Account
	require.NoError(s.T(), s.db.Where("user_id = ?", userID).First(&acct).Error)
	return acct
}

func (s *LedgerSuite) activities(userID uint) []models.Activity {
	var items []models.Activity
	require.NoError(s.T(), s.db.Where("user_id = ?", userID).Order("id ASC").Find(&items).Error)
	return items
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func (s *LedgerSuite) assertDecimal(want string, got decimal.Decimal) {
	s.T().Helper()
	assert.True(s.T(), dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func (s *LedgerSuite) record(userID uint, in TransactionInput) {
	s.T().Helper()
	require.NoError(s.T(), s.svc.RecordTransaction(s.ctx, userID, in))
}

func (s *LedgerSuite) TestDepositThenClampedExpense() {
	s.record(s.alice, TransactionInput{Type: "deposit", Account: "checking", Amount: dec("100.00")})
	s.assertDecimal("100.00", s.account(s.alice).CheckingBalance)

	s.record(s.alice, TransactionInput{Type: "expense", Account: "checking", Amount: dec("150.00"), Note: "rent"})
	s.assertDecimal("0", s.account(s.alice).CheckingBalance)

	acts := s.activities(s.alice)
	require.Len(s.T(), acts, 2)
	assert.Equal(s.T(), "deposit", acts[0].Type)
	assert.Equal(s.T(), "Deposited ₱100.00 to Checking", acts[0].Detail)
	assert.Equal(s.T(), "expense", acts[1].Type)
	assert.Equal(s.T(), "Spent ₱150.00 from Checking (rent)", acts[1].Detail)
}

func (s *LedgerSuite) TestDepositsAreExact() {
	amounts := []string{"0.10", "0.20", "1234.56", "0.01", "99.99"}
	want := decimal.Zero
	for _, a := range amounts {
		s.record(s.alice, TransactionInput{Type: "deposit", Account: "investment", Amount: dec(a)})
		want = want.Add(dec(a))
		s.assertDecimal(want.String(), s.account(s.alice).InvestmentBalance)
	}
	s.assertDecimal("1334.86", s.account(s.alice).InvestmentBalance)
	assert.Len(s.T(), s.activities(s.alice), len(amounts))
}

func (s *LedgerSuite) TestExpenseNeverNegative() {
	s.record(s.alice, TransactionInput{Type: "deposit", Account: "savings", Amount: dec("50")})
	s.record(s.alice, TransactionInput{Type: "expense", Account: "savings", Amount: dec("20.25")})
	s.assertDecimal("29.75", s.account(s.alice).SavingsBalance)

	s.record(s.alice, TransactionInput{Type: "expense", Account: "savings", Amount: dec("1000")})
	acct := s.account(s.alice)
	s.assertDecimal("0", acct.SavingsBalance)
	assert.False(s.T(), acct.SavingsBalance.IsNegative())

	acts := s.activities(s.alice)
	require.Len(s.T(), acts, 3)
	assert.Equal(s.T(), "Spent ₱20.25 from Savings", acts[1].Detail)
}

func (s *LedgerSuite) TestOtherBalancesUntouched() {
	s.record(s.alice, TransactionInput{Type: "deposit", Account: "checking", Amount: dec("10")})
	s.record(s.alice, TransactionInput{Type: "deposit", Account: "investment", Amount: dec("5.5")})

	acct := s.account(s.alice)
	s.assertDecimal("10", acct.CheckingBalance)
	s.assertDecimal("0", acct.SavingsBalance)
	s.assertDecimal("5.5", acct.InvestmentBalance)
	assert.Equal(s.T(), "Deposited ₱5.50 to Investment", s.activities(s.alice)[1].Detail)
}

func (s *LedgerSuite) TestInvalidTransactionsDoNotMutate() {
	cases := []TransactionInput{
		{Type: "deposit", Account: "checking", Amount: dec("0")},
		{Type: "deposit", Account: "checking", Amount: dec("-5")},
		{Type: "deposit", Account: "checking", Amount: dec("0.001")},
		{Type: "deposit", Account: "brokerage", Amount: dec("5")},
		{Type: "deposit", Account: "", Amount: dec("5")},
		{Type: "transfer", Account: "checking", Amount: dec("5")},
		{Type: "deposit", Account: "checking", Amount: dec("10000000000")},
	}
	for _, in := range cases {
		err := s.svc.RecordTransaction(s.ctx, s.alice, in)
		assert.ErrorIs(s.T(), err, ErrInvalidRequest, "input %+v", in)
	}

	var count int64
	require.NoError(s.T(), s.db.Model(&models.Account{}).Count(&count).Error)
	assert.Zero(s.T(), count)
	assert.Empty(s.T(), s.activities(s.alice))
}

func (s *LedgerSuite) TestHugeExponentsRejectedBeforeRounding() {
	for _, raw := range []string{"1e2000000000", "1e-2000000000", "-1e2000000000"} {
		done := make(chan struct{})
		go func() {
			defer close(done)
			err := s.svc.RecordTransaction(s.ctx, s.alice, TransactionInput{Type: "deposit", Account: "checking", Amount: dec(raw)})
			assert.ErrorIs(s.T(), err, ErrInvalidRequest, raw)

			_, err = s.svc.UpdateBudget(s.ctx, s.alice, decPtr(raw))
			assert.ErrorIs(s.T(), err, ErrInvalidRequest, raw)

			_, err = s.svc.CreateGoal(s.ctx, s.alice, GoalInput{Name: "Moon", Target: decPtr(raw)})
			assert.ErrorIs(s.T(), err, ErrInvalidRequest, raw)
			_, err = s.svc.CreateGoal(s.ctx, s.alice, GoalInput{Name: "Moon", Target: decPtr("10"), Current: decPtr(raw)})
			assert.ErrorIs(s.T(), err, ErrInvalidRequest, raw)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			s.T().Fatalf("validation of %s did not return", raw)
		}
	}

	goal, err := s.svc.CreateGoal(s.ctx, s.alice, GoalInput{Name: "Car", Target: decPtr("500000")})
	require.NoError(s.T(), err)
	_, err = s.svc.EditGoal(s.ctx, s.alice, goal.ID, GoalPatch{Target: decPtr("1e2000000000")})
	assert.ErrorIs(s.T(), err, ErrInvalidRequest)
	_, err = s.svc.EditGoal(s.ctx, s.alice, goal.ID, GoalPatch{Current: decPtr("-10000000000")})
	assert.ErrorIs(s.T(), err, ErrInvalidRequest)

	var reloaded models.Goal
	require.NoError(s.T(), s.db.First(&reloaded, goal.ID).Error)
	s.assertDecimal("500000", reloaded.Target)
	s.assertDecimal("0", reloaded.Current)
	assert.Empty(s.T(), s.activities(s.alice))
}

func (s *LedgerSuite) TestDepositCannotOverflowBalance() {
	s.record(s.alice, TransactionInput{Type: "deposit", Account: "savings", Amount: dec("9999999999.99")})

	err := s.svc.RecordTransaction(s.ctx, s.alice, TransactionInput{Type: "deposit", Account: "savings", Amount: dec("0.01")})
	assert.ErrorIs(s.T(), err, ErrInvalidRequest)
	s.assertDecimal("9999999999.99", s.account(s.alice).SavingsBalance)
	assert.Len(s.T(), s.activities(s.alice), 1)

	// expenses still clamp as usual
	s.record(s.alice, TransactionInput{Type: "expense", Account: "savings", Amount: dec("0.99")})
	s.assertDecimal("9999999999.00", s.account(s.alice).SavingsBalance)
}

func (s *LedgerSuite) TestGoalCreditCannotOverflow() {
	s.record(s.alice, TransactionInput{Type: "deposit", Account: "savings", Amount: dec("1")})
	goal, err := s.svc.CreateGoal(s.ctx, s.alice, GoalInput{Name: "Big", Target: decPtr("1"), Current: decPtr("9999999999")})
	require.NoError(s.T(), err)

	err = s.svc.RecordTransaction(s.ctx, s.alice, TransactionInput{Type: "deposit", Account: "savings", Amount: dec("5"), GoalID: &goal.ID})
	assert.ErrorIs(s.T(), err, ErrInvalidRequest)

	var reloaded models.Goal
	require.NoError(s.T(), s.db.First(&reloaded, goal.ID).Error)
	s.assertDecimal("9999999999", reloaded.Current)
	s.assertDecimal("1", s.account(s.alice).SavingsBalance)
}

func (s *LedgerSuite) TestSavingsDepositToOwnGoal() {
	goal, err := s.svc.CreateGoal(s.ctx, s.alice, GoalInput{Name: "Emergency Fund", Target: decPtr("1000")})
	require.NoError(s.T(), err)

	s.record(s.alice, TransactionInput{Type: "deposit", Account: "savings", Amount: dec("250"), GoalID: &goal.ID})

	var reloaded models.Goal
	require.NoError(s.T(), s.db.First(&reloaded, goal.ID).Error)
	s.assertDecimal("250", reloaded.Current)
	s.assertDecimal("250", s.account(s.alice).SavingsBalance)

	acts := s.activities(s.alice)
	require.Len(s.T(), acts, 1)
	assert.Equal(s.T(), "Deposited ₱250.00 to Savings (Goal: Emergency Fund)", acts[0].Detail)
}

func (s *LedgerSuite) TestSavingsDepositToForeignGoalIsIgnored() {
	goal, err := s.svc.CreateGoal(s.ctx, s.bob, GoalInput{Name: "Bob's car", Target: decPtr("5000"), Current: decPtr("10")})
	require.NoError(s.T(), err)

	s.record(s.alice, TransactionInput{Type: "deposit", Account: "savings", Amount: dec("75"), GoalID: &goal.ID})

	var reloaded models.Goal
	require.NoError(s.T(), s.db.First(&reloaded, goal.ID).Error)
	s.assertDecimal("10", reloaded.Current)
	s.assertDecimal("75", s.account(s.alice).SavingsBalance)
	assert.Equal(s.T(), "Deposited ₱75.00 to Savings", s.activities(s.alice)[0].Detail)

	missing := uint(9999)
	s.record(s.alice, TransactionInput{Type: "deposit", Account: "savings", Amount: dec("5"), GoalID: &missing})
	s.assertDecimal("80", s.account(s.alice).SavingsBalance)
}

func (s *LedgerSuite) TestGoalIgnoredOutsideSavingsDeposits() {
	goal, err := s.svc.CreateGoal(s.ctx, s.alice, GoalInput{Name: "Trip", Target: decPtr("300")})
	require.NoError(s.T(), err)

	s.record(s.alice, TransactionInput{Type: "deposit", Account: "checking", Amount: dec("40"), GoalID: &goal.ID})
	s.record(s.alice, TransactionInput{Type: "expense", Account: "savings", Amount: dec("40"), GoalID: &goal.ID})

	var reloaded models.Goal
	require.NoError(s.T(), s.db.First(&reloaded, goal.ID).Error)
	s.assertDecimal("0", reloaded.Current)
}

func (s *LedgerSuite) TestExpenseNoteIsTrimmedAndTruncated() {
	s.record(s.alice, TransactionInput{Type: "expense", Account: "checking", Amount: dec("1"), Note: "   "})
	long := ""
	for i := 0; i < 300; i++ {
		long += "x"
	}
	s.record(s.alice, TransactionInput{Type: "expense", Account: "checking", Amount: dec("1"), Note: long})

	acts := s.activities(s.alice)
	require.Len(s.T(), acts, 2)
	assert.Equal(s.T(), "Spent ₱1.00 from Checking", acts[0].Detail)
	assert.Len(s.T(), []rune(acts[1].Detail), maxDetailLen)
}

func (s *LedgerSuite) TestConcurrentDepositsAreNotLost() {
	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.svc.RecordTransaction(s.ctx, s.alice, TransactionInput{
				Type: "deposit", Account: "checking", Amount: dec("1.25"),
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(s.T(), err)
	}

	s.assertDecimal("25", s.account(s.alice).CheckingBalance)
	assert.Len(s.T(), s.activities(s.alice), workers)
	assert.Equal(s.T(), int64(workers), s.account(s.alice).Version)
}

func (s *LedgerSuite) TestSummaryLazyCreation() {
	sum, err := s.svc.Summary(s.ctx, s.alice)
	require.NoError(s.T(), err)

	s.assertDecimal("0", sum.CheckingBalance)
	s.assertDecimal("0", sum.SavingsBalance)
	s.assertDecimal("0", sum.InvestmentBalance)
	s.assertDecimal("0", sum.MonthlyBudget)
	assert.Empty(s.T(), sum.Goals)
	assert.Empty(s.T(), sum.RecentActivity)

	var accounts, budgets int64
	s.db.Model(&models.Account{}).Where("user_id = ?", s.alice).Count(&accounts)
	s.db.Model(&models.Budget{}).Where("user_id = ?", s.alice).Count(&budgets)
	assert.Equal(s.T(), int64(1), accounts)
	assert.Equal(s.T(), int64(1), budgets)

	_, err = s.svc.Summary(s.ctx, s.alice)
	require.NoError(s.T(), err)
	s.db.Model(&models.Account{}).Where("user_id = ?", s.alice).Count(&accounts)
	assert.Equal(s.T(), int64(1), accounts)
}

func (s *LedgerSuite) TestSummaryRecentActivityNewestFirst() {
	for i := 1; i <= 7; i++ {
		s.record(s.alice, TransactionInput{Type: "deposit", Account: "checking", Amount: dec(fmt.Sprintf("%d", i))})
	}
	s.record(s.bob, TransactionInput{Type: "deposit", Account: "checking", Amount: dec("500")})
	_, err := s.svc.UpdateBudget(s.ctx, s.alice, decPtr("1500"))
	require.NoError(s.T(), err)
	_, err = s.svc.CreateGoal(s.ctx, s.alice, GoalInput{Name: "A", Target: decPtr("10")})
	require.NoError(s.T(), err)
	_, err = s.svc.CreateGoal(s.ctx, s.alice, GoalInput{Name: "B", Target: decPtr("20")})
	require.NoError(s.T(), err)

	sum, err := s.svc.Summary(s.ctx, s.alice)
	require.NoError(s.T(), err)

	s.assertDecimal("28", sum.CheckingBalance)
	s.assertDecimal("1500", sum.MonthlyBudget)
	require.Len(s.T(), sum.RecentActivity, 5)
	assert.Equal(s.T(), "Deposited ₱7.00 to Checking", sum.RecentActivity[0].Detail)
	assert.Equal(s.T(), "Deposited ₱3.00 to Checking", sum.RecentActivity[4].Detail)
	for i := 1; i < len(sum.RecentActivity); i++ {
		assert.False(s.T(), sum.RecentActivity[i].CreatedAt.After(sum.RecentActivity[i-1].CreatedAt))
	}
	require.Len(s.T(), sum.Goals, 2)
	assert.Equal(s.T(), "A", sum.Goals[0].Name)
	assert.Equal(s.T(), "B", sum.Goals[1].Name)
}

func (s *LedgerSuite) TestCreateGoalValidation() {
	_, err := s.svc.CreateGoal(s.ctx, s.alice, GoalInput{Name: "", Target: decPtr("10")})
	assert.ErrorIs(s.T(), err, ErrInvalidRequest)

	_, err = s.svc.CreateGoal(s.ctx, s.alice, GoalInput{Name: "House"})
	assert.ErrorIs(s.T(), err, ErrInvalidRequest)

	goal, err := s.svc.CreateGoal(s.ctx, s.alice, GoalInput{Name: "  House  ", Target: decPtr("200000")})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "House", goal.Name)
	s.assertDecimal("0", goal.Current)
	assert.NotZero(s.T(), goal.ID)
}

func (s *LedgerSuite) TestEditGoal() {
	goal, err := s.svc.CreateGoal(s.ctx, s.alice, GoalInput{Name: "Laptop", Target: decPtr("1200"), Current: decPtr("100")})
	require.NoError(s.T(), err)

	edited, err := s.svc.EditGoal(s.ctx, s.alice, goal.ID, GoalPatch{Current: decPtr("-50")})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Laptop", edited.Name)
	s.assertDecimal("1200", edited.Target)
	s.assertDecimal("-50", edited.Current)

	name := "Gaming laptop"
	edited, err = s.svc.EditGoal(s.ctx, s.alice, goal.ID, GoalPatch{Name: &name, Target: decPtr("2000")})
	require.NoError(s.T(), err)

	var reloaded models.Goal
	require.NoError(s.T(), s.db.First(&reloaded, goal.ID).Error)
	assert.Equal(s.T(), "Gaming laptop", reloaded.Name)
	s.assertDecimal("2000", reloaded.Target)
	s.assertDecimal("-50", reloaded.Current)
	assert.Equal(s.T(), edited.Name, reloaded.Name)
}

func (s *LedgerSuite) TestEditGoalNotOwned() {
	goal, err := s.svc.CreateGoal(s.ctx, s.bob, GoalInput{Name: "Bike", Target: decPtr("800")})
	require.NoError(s.T(), err)

	_, err = s.svc.EditGoal(s.ctx, s.alice, goal.ID, GoalPatch{Target: decPtr("1")})
	assert.ErrorIs(s.T(), err, ErrNotFound)

	_, err = s.svc.EditGoal(s.ctx, s.alice, 424242, GoalPatch{})
	assert.ErrorIs(s.T(), err, ErrNotFound)

	var reloaded models.Goal
	require.NoError(s.T(), s.db.First(&reloaded, goal.ID).Error)
	s.assertDecimal("800", reloaded.Target)
}

func (s *LedgerSuite) TestDeleteGoal() {
	mine, err := s.svc.CreateGoal(s.ctx, s.alice, GoalInput{Name: "Mine", Target: decPtr("1")})
	require.NoError(s.T(), err)
	theirs, err := s.svc.CreateGoal(s.ctx, s.bob, GoalInput{Name: "Theirs", Target: decPtr("1")})
	require.NoError(s.T(), err)

	assert.ErrorIs(s.T(), s.svc.DeleteGoal(s.ctx, s.alice, theirs.ID), ErrNotFound)
	assert.ErrorIs(s.T(), s.svc.DeleteGoal(s.ctx, s.alice, 777), ErrNotFound)

	var count int64
	s.db.Model(&models.Goal{}).Count(&count)
	assert.Equal(s.T(), int64(2), count)

	require.NoError(s.T(), s.svc.DeleteGoal(s.ctx, s.alice, mine.ID))
	assert.ErrorIs(s.T(), s.svc.DeleteGoal(s.ctx, s.alice, mine.ID), ErrNotFound)

	s.db.Model(&models.Goal{}).Count(&count)
	assert.Equal(s.T(), int64(1), count)
}

func (s *LedgerSuite) TestUpdateBudget() {
	_, err := s.svc.UpdateBudget(s.ctx, s.alice, nil)
	assert.ErrorIs(s.T(), err, ErrInvalidRequest)

	got, err := s.svc.UpdateBudget(s.ctx, s.alice, decPtr("2500.5"))
	require.NoError(s.T(), err)
	s.assertDecimal("2500.50", got)

	got, err = s.svc.UpdateBudget(s.ctx, s.alice, decPtr("-10"))
	require.NoError(s.T(), err)
	s.assertDecimal("-10", got)

	var budgets []models.Budget
	require.NoError(s.T(), s.db.Where("user_id = ?", s.alice).Find(&budgets).Error)
	require.Len(s.T(), budgets, 1)
	s.assertDecimal("-10", budgets[0].MonthlyBudget)
}

func (s *LedgerSuite) TestListActivityPagination() {
	for i := 1; i <= 25; i++ {
		s.record(s.alice, TransactionInput{Type: "deposit", Account: "checking", Amount: dec(fmt.Sprintf("%d", i))})
	}

	items, total, err := s.svc.ListActivity(s.ctx, s.alice, 1, 10)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(25), total)
	require.Len(s.T(), items, 10)
	assert.Equal(s.T(), "Deposited ₱25.00 to Checking", items[0].Detail)

	items, _, err = s.svc.ListActivity(s.ctx, s.alice, 3, 10)
	require.NoError(s.T(), err)
	require.Len(s.T(), items, 5)
	assert.Equal(s.T(), "Deposited ₱1.00 to Checking", items[4].Detail)

	all, err := s.svc.AllActivity(s.ctx, s.alice)
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 25)

	none, total, err := s.svc.ListActivity(s.ctx, s.bob, 1, 10)
	require.NoError(s.T(), err)
	assert.Zero(s.T(), total)
	assert.Empty(s.T(), none)
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}
