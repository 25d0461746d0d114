// Package validation checks expense forms against the base and per-variant
// schemas and reports failures keyed by dotted field path.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	tagDateOrder   = "date_order"
	tagSubCategory = "sub_category"
	tagUnknownType = "unknown_type"
	tagConfirm     = "confirmed"
	tagMoneyGT     = "money_gt"
	tagMoneyGTE    = "money_gte"
	tagMoneyLTE    = "money_lte"
	tagMoneyScale  = "money_scale"

	detailsPrefix = "details."
)

// Result is the outcome of a validation run. A nil or empty Errors map means valid.
type Result struct {
	Errors map[string]string `json:"errors,omitempty"`
}

// Valid reports whether no field failed.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Err converts the result into an *apperrors.ValidationError, or nil when valid.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return apperrors.NewValidationError(r.Errors)
}

func (r *Result) add(path, msg string) {
	if r.Errors == nil {
		r.Errors = map[string]string{}
	}
	if _, exists := r.Errors[path]; !exists {
		r.Errors[path] = msg
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func engine() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		// money reaches the money_* tags as its exact decimal string
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.String()
			}
			return nil
		}, decimal.Decimal{})
		mustRegister(v, tagMoneyGT, moneyCompare(func(d, bound decimal.Decimal) bool { return d.GreaterThan(bound) }))
		mustRegister(v, tagMoneyGTE, moneyCompare(func(d, bound decimal.Decimal) bool { return d.GreaterThanOrEqual(bound) }))
		mustRegister(v, tagMoneyLTE, moneyCompare(func(d, bound decimal.Decimal) bool { return d.LessThanOrEqual(bound) }))
		mustRegister(v, tagMoneyScale, moneyScale)
		v.RegisterStructValidation(travelDateOrder, travelSchema{})
		v.RegisterStructValidation(maintenanceSubCategory, maintenanceSchema{})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s: %v", tag, err))
	}
}

func fieldDecimal(fl validator.FieldLevel) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(fl.Field().String())
	return d, err == nil
}

func moneyCompare(cmp func(d, bound decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, ok := fieldDecimal(fl)
		if !ok {
			return false
		}
		bound, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return cmp(d, bound)
	}
}

// moneyScale rejects amounts with more precision than the NUMERIC(14, 2) columns keep.
func moneyScale(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	if !ok {
		return false
	}
	places, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return d.Equal(d.Round(int32(places)))
}

// Validate runs the base schema and the schema selected by form.Type.
func Validate(form domain.ExpenseForm) Result {
	var res Result
	check(&res, "", baseSchema{
		TotalAmount: form.TotalAmount,
		Currency:    form.Currency,
		Description: form.Description,
	})

	switch form.Type {
	case domain.TypeTravel:
		check(&res, detailsPrefix, travelSchemaFrom(form))
	case domain.TypeMaintenance:
		check(&res, detailsPrefix, maintenanceSchemaFrom(form))
	case domain.TypeRequisition:
		check(&res, detailsPrefix, requisitionSchemaFrom(form))
	default:
		res.add("type", message(tagUnknownType, "type", ""))
	}
	return res
}

// ValidateForCreate adds the business purpose minimum that a draft must meet
// before it is first stored.
func ValidateForCreate(form domain.ExpenseForm) Result {
	res := Validate(form)
	check(&res, "", submissionSchema{BusinessPurpose: form.BusinessPurpose})
	return res
}

// ValidateForSubmission adds the three confirmations on top of ValidateForCreate.
func ValidateForSubmission(form domain.ExpenseForm, confirmations domain.Confirmations) Result {
	res := ValidateForCreate(form)
	if !confirmations.Accuracy {
		res.add("confirmations.accuracy", message(tagConfirm, "accuracy", ""))
	}
	if !confirmations.ReceiptsAttached {
		res.add("confirmations.receiptsAttached", message(tagConfirm, "receiptsAttached", ""))
	}
	if !confirmations.Legitimacy {
		res.add("confirmations.legitimacy", message(tagConfirm, "legitimacy", ""))
	}
	return res
}

// ValidateRecord re-validates a persisted or incoming record. Records are never
// trusted from storage.
func ValidateRecord(e domain.Expense) error {
	if !e.Type.IsValid() {
		return fmt.Errorf("validate expense %q: %w", e.Type, apperrors.ErrUnknownExpenseType)
	}
	if e.Details == nil || e.Details.ExpenseType() != e.Type {
		return apperrors.NewValidationError(map[string]string{
			"details.type": "Details do not match the expense type",
		})
	}
	return Validate(domain.RecordToForm(e)).Err()
}

// ValidateSubmittable re-checks the server-side submission minimums of a stored
// draft. Confirmations are a client concern and are not stored.
func ValidateSubmittable(e domain.Expense) error {
	if err := ValidateRecord(e); err != nil {
		return err
	}
	var res Result
	check(&res, "", submissionSchema{BusinessPurpose: e.BusinessPurpose})
	return res.Err()
}

func check(res *Result, prefix string, schema any) {
	err := engine().Struct(schema)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		res.add(strings.TrimSuffix(prefix, ".")+"_", err.Error())
		return
	}
	for _, fe := range fieldErrs {
		res.add(prefix+fe.Field(), message(fe.Tag(), fe.Field(), fe.Param()))
	}
}
