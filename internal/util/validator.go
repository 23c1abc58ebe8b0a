package util

import (
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// maxAmount is the capacity of a decimal(12,2) column.
var maxAmount = decimal.New(1, 10)

// Exponent bounds accepted from clients. Rounding a value outside them
// would allocate a coefficient proportional to the exponent.
const (
	maxExponent = 10
	minExponent = -20
)

// CheckMoney rejects values a decimal(12,2) column cannot hold. It must run
// before any rounding or comparison of client input.
func CheckMoney(d decimal.Decimal) error {
	if exp := d.Exponent(); exp > maxExponent || exp < minExponent {
		return fmt.Errorf("amount out of range")
	}
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("amount too large, got %s", d.String())
	}
	return nil
}

// ValidateAmount requires a positive amount that fits the ledger columns.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", amount.String())
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("amount too large, got %s", amount.String())
	}
	return nil
}

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9@.+\-_]{3,150}$`)

// ValidUsername reports whether s is 3-150 letters, digits or @.+-_
func ValidUsername(s string) bool {
	return usernameRe.MatchString(s)
}

// RegisterValidators adds the custom binding tags used by request structs.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidUsername(fl.Field().String())
	})
}
