package validation

import (
	"fmt"
	"strings"
	"unicode"
)

// labels overrides the generated label where the field name reads poorly.
var labels = map[string]string{
	"totalAmount":      "Total amount",
	"subType":          "Service sub-type",
	"subCategory":      "Sub-category",
	"perDiemRate":      "Per diem rate",
	"receiptsAttached": "Receipts attached",
}

// label turns a camelCase field name into a sentence-case label.
func label(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteByte(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func message(tag, field, param string) string {
	name := label(field)
	switch tag {
	case "required":
		return name + " is required"
	case "gt", tagMoneyGT:
		return fmt.Sprintf("%s must be greater than %s", name, param)
	case "gte", tagMoneyGTE:
		return fmt.Sprintf("%s must be %s or more", name, param)
	case "lte", tagMoneyLTE:
		if field == "totalAmount" {
			return name + " must not exceed 10,000,000"
		}
		return fmt.Sprintf("%s must not exceed %s", name, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(param, " ", ", "))
	case "datetime":
		return name + " must be a date in YYYY-MM-DD format"
	case tagMoneyScale:
		return fmt.Sprintf("%s must have at most %s decimal places", name, param)
	case tagDateOrder:
		return "End date must be on or after the start date"
	case tagSubCategory:
		return fmt.Sprintf("Sub-category is not valid for category %q", param)
	case tagUnknownType:
		return "Expense type must be one of: travel, maintenance, requisition"
	case tagConfirm:
		return name + " must be confirmed"
	default:
		return fmt.Sprintf("%s is invalid (%s)", name, tag)
	}
}
