package validation

import (
	"time"

	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// baseSchema covers the envelope fields shared by every variant.
type baseSchema struct {
	TotalAmount decimal.Decimal `json:"totalAmount" validate:"money_gt=0,money_lte=10000000,money_scale=2"`
	Currency    string          `json:"currency" validate:"required"`
	Description string          `json:"description" validate:"required,min=10,max=1000"`
}

// submissionSchema adds the checks applied only when a draft is submitted.
type submissionSchema struct {
	BusinessPurpose string `json:"businessPurpose" validate:"min=200"`
}

type travelSchema struct {
	TransportationType string          `json:"transportationType" validate:"required"`
	StartLocation      string          `json:"startLocation" validate:"required"`
	EndLocation        string          `json:"endLocation" validate:"required"`
	StartDate          string          `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate            string          `json:"endDate" validate:"required,datetime=2006-01-02"`
	VehicleOwnership   string          `json:"vehicleOwnership" validate:"required,oneof=own rental public"`
	FuelCost           decimal.Decimal `json:"fuelCost" validate:"money_gte=0,money_scale=2"`
	TollCharges        decimal.Decimal `json:"tollCharges" validate:"money_gte=0,money_scale=2"`
	AccommodationCost  decimal.Decimal `json:"accommodationCost" validate:"money_gte=0,money_scale=2"`
	PerDiemRate        decimal.Decimal `json:"perDiemRate" validate:"money_gte=0,money_scale=2"`
}

type maintenanceSchema struct {
	Category    string `json:"category" validate:"required,oneof=charges purchases repairs"`
	SubCategory string `json:"subCategory" validate:"required"`
	ServiceDate string `json:"serviceDate" validate:"required,datetime=2006-01-02"`
	VendorName  string `json:"vendorName" validate:"required"`
}

type requisitionSchema struct {
	ServiceType    string          `json:"serviceType" validate:"required"`
	SubType        string          `json:"subType" validate:"required"`
	RequiredByDate string          `json:"requiredByDate" validate:"required,datetime=2006-01-02"`
	Quantity       int             `json:"quantity" validate:"gt=0"`
	UnitPrice      decimal.Decimal `json:"unitPrice" validate:"money_gte=0,money_scale=2"`
	UrgencyLevel   string          `json:"urgencyLevel" validate:"required,oneof=low medium high urgent"`
}

func travelSchemaFrom(f domain.ExpenseForm) travelSchema {
	return travelSchema{
		TransportationType: f.TransportationType,
		StartLocation:      f.StartLocation,
		EndLocation:        f.EndLocation,
		StartDate:          f.StartDate,
		EndDate:            f.EndDate,
		VehicleOwnership:   string(f.VehicleOwnership),
		FuelCost:           f.FuelCost,
		TollCharges:        f.TollCharges,
		AccommodationCost:  f.AccommodationCost,
		PerDiemRate:        f.PerDiemRate,
	}
}

func maintenanceSchemaFrom(f domain.ExpenseForm) maintenanceSchema {
	return maintenanceSchema{
		Category:    string(f.MaintenanceCategory),
		SubCategory: f.SubCategory,
		ServiceDate: f.ServiceDate,
		VendorName:  f.VendorName,
	}
}

func requisitionSchemaFrom(f domain.ExpenseForm) requisitionSchema {
	return requisitionSchema{
		ServiceType:    f.ServiceType,
		SubType:        f.ServiceSubType,
		RequiredByDate: f.RequiredByDate,
		Quantity:       f.Quantity,
		UnitPrice:      f.UnitPrice,
		UrgencyLevel:   string(f.UrgencyLevel),
	}
}

// travelDateOrder reports endDate before startDate. Unparseable dates are left
// to the datetime tag.
func travelDateOrder(sl validator.StructLevel) {
	s := sl.Current().Interface().(travelSchema)
	start, errStart := time.Parse(dateLayout, s.StartDate)
	end, errEnd := time.Parse(dateLayout, s.EndDate)
	if errStart != nil || errEnd != nil {
		return
	}
	if end.Before(start) {
		sl.ReportError(s.EndDate, "endDate", "EndDate", tagDateOrder, "")
	}
}

func maintenanceSubCategory(sl validator.StructLevel) {
	s := sl.Current().Interface().(maintenanceSchema)
	category := domain.MaintenanceCategory(s.Category)
	if s.SubCategory == "" || !category.IsValid() {
		return
	}
	if !category.IsValidSubCategory(s.SubCategory) {
		sl.ReportError(s.SubCategory, "subCategory", "SubCategory", tagSubCategory, s.Category)
	}
}
