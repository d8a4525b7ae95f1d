package handlers

import (
	"fmt"
	"reflect"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RegisterValidators teaches gin's validator about decimal amounts and adds the "wei" tag.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	v.RegisterCustomTypeFunc(decimalAsString, decimal.Decimal{})
	return v.RegisterValidation("wei", validateWei)
}

// decimalAsString renders amounts for string-based tags. Values that are not
// valid amounts become "", which no amount tag accepts.
func decimalAsString(field reflect.Value) any {
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	if d.Sign() == 0 {
		return "0"
	}
	if err := domain.CheckAmount(d); err != nil {
		return ""
	}
	return d.String()
}

// validateWei accepts whole, non-negative amounts of the smallest unit.
func validateWei(fl validator.FieldLevel) bool {
	d, err := domain.ParseAmount(fl.Field().String())
	return err == nil && !d.IsNegative()
}
