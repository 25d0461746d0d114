package validation_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/core/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTravel() domain.ExpenseForm {
	f := domain.NewEmptyForm()
	f.TotalAmount = decimal.NewFromInt(1500)
	f.Description = "Site inspection trip"
	f.BusinessPurpose = strings.Repeat("p", 200)
	f.TransportationType = "bus"
	f.StartLocation = "Dhaka"
	f.EndLocation = "Sylhet"
	f.StartDate = "2024-06-01"
	f.EndDate = "2024-06-02"
	f.VehicleOwnership = domain.VehiclePublic
	return f
}

func validMaintenance() domain.ExpenseForm {
	f := domain.NewEmptyForm()
	f.Type = domain.TypeMaintenance
	f.TotalAmount = decimal.NewFromInt(300)
	f.Description = "Printer drum replacement"
	f.MaintenanceCategory = domain.MaintenancePurchases
	f.SubCategory = "spare_parts"
	f.ServiceDate = "2024-06-05"
	f.VendorName = "Office Depot BD"
	return f
}

func validRequisition() domain.ExpenseForm {
	f := domain.NewEmptyForm()
	f.Type = domain.TypeRequisition
	f.TotalAmount = decimal.NewFromInt(600)
	f.Description = "Security guard service"
	f.ServiceType = "security"
	f.ServiceSubType = "guard"
	f.RequiredByDate = "2024-07-01"
	f.Quantity = 2
	f.UnitPrice = decimal.NewFromInt(300)
	f.UrgencyLevel = domain.UrgencyHigh
	return f
}

func allConfirmed() domain.Confirmations {
	return domain.Confirmations{Accuracy: true, ReceiptsAttached: true, Legitimacy: true}
}

func TestValidate_ValidVariants(t *testing.T) {
	for name, f := range map[string]domain.ExpenseForm{
		"travel":      validTravel(),
		"maintenance": validMaintenance(),
		"requisition": validRequisition(),
	} {
		t.Run(name, func(t *testing.T) {
			res := validation.Validate(f)
			assert.True(t, res.Valid(), "unexpected errors: %v", res.Errors)
			assert.NoError(t, res.Err())
		})
	}
}

func TestValidate_TotalAmountBounds(t *testing.T) {
	tests := []struct {
		amount string
		valid  bool
	}{
		{"0", false},
		{"-5", false},
		{"0.01", true},
		{"10000000", true},
		{"10000000.00", true},
		{"10000000.01", false},
		{"10000000.0000000001", false},
		{"0.0000000000000000000000001", false},
		{"12.345", false},
		{"12.340", true},
	}
	for _, tt := range tests {
		f := validTravel()
		f.TotalAmount = decimal.RequireFromString(tt.amount)
		res := validation.Validate(f)
		if tt.valid {
			assert.NotContains(t, res.Errors, "totalAmount", tt.amount)
		} else {
			assert.Contains(t, res.Errors, "totalAmount", tt.amount)
		}
	}
}

func TestValidate_TotalAmountMessages(t *testing.T) {
	f := validTravel()
	f.TotalAmount = decimal.RequireFromString("1e-25")
	assert.Equal(t, "Total amount must be greater than 0", validation.Validate(f).Errors["totalAmount"])

	f.TotalAmount = decimal.RequireFromString("10000000.0000000001")
	assert.Equal(t, "Total amount must not exceed 10,000,000", validation.Validate(f).Errors["totalAmount"])

	f.TotalAmount = decimal.RequireFromString("99.999")
	assert.Equal(t, "Total amount must have at most 2 decimal places", validation.Validate(f).Errors["totalAmount"])
}

func TestValidate_DetailMoneyPrecision(t *testing.T) {
	f := validTravel()
	f.FuelCost = decimal.RequireFromString("-0.000001")
	assert.Contains(t, validation.Validate(f).Errors, "details.fuelCost")

	f.FuelCost = decimal.RequireFromString("10.005")
	assert.Contains(t, validation.Validate(f).Errors, "details.fuelCost")

	r := validRequisition()
	r.UnitPrice = decimal.RequireFromString("300.00")
	assert.True(t, validation.Validate(r).Valid())
}

func TestValidate_DescriptionLength(t *testing.T) {
	f := validTravel()
	f.Description = "too short"
	res := validation.Validate(f)
	assert.Equal(t, "Description must be at least 10 characters", res.Errors["description"])

	f.Description = strings.Repeat("d", 10)
	assert.NotContains(t, validation.Validate(f).Errors, "description")

	f.Description = strings.Repeat("d", 1001)
	assert.Contains(t, validation.Validate(f).Errors, "description")
}

func TestValidate_TravelDateOrder(t *testing.T) {
	f := validTravel()
	f.EndDate = f.StartDate
	assert.True(t, validation.Validate(f).Valid(), "same-day trip must pass")

	f.EndDate = "2024-05-31"
	res := validation.Validate(f)
	require.Contains(t, res.Errors, "details.endDate")
	assert.Equal(t, "End date must be on or after the start date", res.Errors["details.endDate"])
}

func TestValidate_TravelBadDateFormat(t *testing.T) {
	f := validTravel()
	f.StartDate = "01/06/2024"
	res := validation.Validate(f)
	assert.Contains(t, res.Errors, "details.startDate")
	assert.NotContains(t, res.Errors, "details.endDate")
}

func TestValidate_TravelRequiredFields(t *testing.T) {
	f := validTravel()
	f.StartLocation = ""
	f.VehicleOwnership = "borrowed"
	res := validation.Validate(f)
	assert.Equal(t, "Start location is required", res.Errors["details.startLocation"])
	assert.Contains(t, res.Errors["details.vehicleOwnership"], "own, rental, public")
}

func TestValidate_MaintenanceSubCategory(t *testing.T) {
	f := validMaintenance()
	f.SubCategory = "building"
	res := validation.Validate(f)
	assert.Contains(t, res.Errors, "details.subCategory")

	f.MaintenanceCategory = domain.MaintenanceRepairs
	assert.True(t, validation.Validate(f).Valid())
}

func TestValidate_RequisitionQuantity(t *testing.T) {
	f := validRequisition()
	f.Quantity = 0
	res := validation.Validate(f)
	assert.Contains(t, res.Errors, "details.quantity")
}

func TestValidate_UnknownType(t *testing.T) {
	f := validTravel()
	f.Type = "flight"
	res := validation.Validate(f)
	assert.Contains(t, res.Errors, "type")
	assert.True(t, errors.Is(res.Err(), apperrors.ErrValidation))
}

func TestValidateForSubmission_BusinessPurposeBoundary(t *testing.T) {
	f := validTravel()
	f.BusinessPurpose = strings.Repeat("p", 199)
	res := validation.ValidateForSubmission(f, allConfirmed())
	assert.Contains(t, res.Errors, "businessPurpose")

	f.BusinessPurpose = strings.Repeat("p", 200)
	res = validation.ValidateForSubmission(f, allConfirmed())
	assert.True(t, res.Valid(), "unexpected errors: %v", res.Errors)
}

func TestValidateForCreate(t *testing.T) {
	f := validTravel()
	assert.True(t, validation.ValidateForCreate(f).Valid())

	f.BusinessPurpose = strings.Repeat("p", 199)
	res := validation.ValidateForCreate(f)
	assert.Contains(t, res.Errors, "businessPurpose")
	assert.NotContains(t, res.Errors, "confirmations.accuracy")
}

func TestValidateForSubmission_Confirmations(t *testing.T) {
	res := validation.ValidateForSubmission(validTravel(), domain.Confirmations{Accuracy: true})
	assert.Contains(t, res.Errors, "confirmations.receiptsAttached")
	assert.Contains(t, res.Errors, "confirmations.legitimacy")
	assert.NotContains(t, res.Errors, "confirmations.accuracy")
}

func TestValidateRecord(t *testing.T) {
	rec, err := domain.FormToRecord(validMaintenance(), "u1")
	require.NoError(t, err)
	assert.NoError(t, validation.ValidateRecord(rec))

	rec.Type = domain.TypeTravel
	err = validation.ValidateRecord(rec)
	fields, ok := apperrors.FieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fields, "details.type")

	rec.Type = "flight"
	assert.True(t, errors.Is(validation.ValidateRecord(rec), apperrors.ErrUnknownExpenseType))
}

func TestValidateSubmittable(t *testing.T) {
	f := validTravel()
	f.BusinessPurpose = "short"
	rec, err := domain.FormToRecord(f, "u1")
	require.NoError(t, err)

	fields, ok := apperrors.FieldErrors(validation.ValidateSubmittable(rec))
	require.True(t, ok)
	assert.Contains(t, fields, "businessPurpose")
}

func TestValidate_ConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, validation.Validate(validRequisition()).Valid())
		}()
	}
	wg.Wait()
}
