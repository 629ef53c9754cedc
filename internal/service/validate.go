package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"receipt-ledger/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json names so errors line up with request bodies
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// checkStruct runs the validate tags of in and records failures in ve.
func checkStruct(ve *ValidationError, in any) {
	err := validate.Struct(in)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		ve.Add("body", err.Error())
		return
	}
	for _, fe := range fieldErrs {
		ve.Add(fieldKey(fe.Namespace()), tagMessage(fe))
	}
}

// fieldKey drops the root struct name: "ReceiptInput.expenses[0].amount" -> "expenses[0].amount".
func fieldKey(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func checkAmount(ve *ValidationError, field string, amount *decimal.Decimal) {
	if amount == nil {
		return
	}
	if err := util.ValidateAmount(*amount); err != nil {
		ve.Add(field, err.Error())
	}
}

func parseDate(ve *ValidationError, field, raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := util.ParseDate(raw)
	if err != nil {
		ve.Add(field, "must be a valid date")
	}
	return t
}

func parseDateTime(ve *ValidationError, field, raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := util.ParseDateTime(raw)
	if err != nil {
		ve.Add(field, "must be a valid date or date-time")
	}
	return t
}
