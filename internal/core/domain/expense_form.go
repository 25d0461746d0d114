package domain

import (
	"fmt"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/shopspring/decimal"
)

// ExpenseForm is the flat, in-progress representation edited by the wizards.
// Fields of the variants other than Type are ignored when packing.
type ExpenseForm struct {
	ID              string          `json:"id,omitempty"`
	Type            ExpenseType     `json:"type"`
	Status          ExpenseStatus   `json:"status"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Currency        string          `json:"currency"`
	Description     string          `json:"description"`
	BusinessPurpose string          `json:"businessPurpose"`

	// travel
	TransportationType string           `json:"transportationType,omitempty"`
	StartLocation      string           `json:"startLocation,omitempty"`
	EndLocation        string           `json:"endLocation,omitempty"`
	StartDate          string           `json:"startDate,omitempty"`
	EndDate            string           `json:"endDate,omitempty"`
	VehicleOwnership   VehicleOwnership `json:"vehicleOwnership,omitempty"`
	IsRoundTrip        bool             `json:"isRoundTrip,omitempty"`
	FuelCost           decimal.Decimal  `json:"fuelCost"`
	TollCharges        decimal.Decimal  `json:"tollCharges"`
	AccommodationCost  decimal.Decimal  `json:"accommodationCost"`
	PerDiemRate        decimal.Decimal  `json:"perDiemRate"`

	// maintenance
	MaintenanceCategory MaintenanceCategory `json:"maintenanceCategory,omitempty"`
	SubCategory         string              `json:"subCategory,omitempty"`
	ServiceDate         string              `json:"serviceDate,omitempty"`
	VendorName          string              `json:"vendorName,omitempty"`
	InvoiceNumber       string              `json:"invoiceNumber,omitempty"`
	WarrantyApplicable  bool                `json:"warrantyApplicable,omitempty"`
	AssetID             *string             `json:"assetId,omitempty"`
	VehicleID           *string             `json:"vehicleId,omitempty"`

	// requisition
	ServiceType     string          `json:"serviceType,omitempty"`
	ServiceSubType  string          `json:"serviceSubType,omitempty"`
	Duration        string          `json:"duration,omitempty"`
	Frequency       string          `json:"frequency,omitempty"`
	RequiredByDate  string          `json:"requiredByDate,omitempty"`
	Quantity        int             `json:"quantity,omitempty"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	UrgencyLevel    UrgencyLevel    `json:"urgencyLevel,omitempty"`
	PreferredVendor string          `json:"preferredVendor,omitempty"`
}

// Confirmations are the three attestations required before submission.
type Confirmations struct {
	Accuracy         bool `json:"accuracy"`
	ReceiptsAttached bool `json:"receiptsAttached"`
	Legitimacy       bool `json:"legitimacy"`
}

// All reports whether every confirmation is checked.
func (c Confirmations) All() bool {
	return c.Accuracy && c.ReceiptsAttached && c.Legitimacy
}

// NewEmptyForm returns the initial travel draft with zeroed costs.
func NewEmptyForm() ExpenseForm {
	return ExpenseForm{
		Type:              TypeTravel,
		Status:            StatusDraft,
		Currency:          DefaultCurrency,
		TotalAmount:       decimal.Zero,
		FuelCost:          decimal.Zero,
		TollCharges:       decimal.Zero,
		AccommodationCost: decimal.Zero,
		PerDiemRate:       decimal.Zero,
		UnitPrice:         decimal.Zero,
	}
}

// DetailsFromForm packs the variant fields selected by form.Type.
func DetailsFromForm(form ExpenseForm) (ExpenseDetails, error) {
	switch form.Type {
	case TypeTravel:
		return TravelDetails{
			TransportationType: form.TransportationType,
			StartLocation:      form.StartLocation,
			EndLocation:        form.EndLocation,
			StartDate:          form.StartDate,
			EndDate:            form.EndDate,
			VehicleOwnership:   form.VehicleOwnership,
			IsRoundTrip:        form.IsRoundTrip,
			FuelCost:           form.FuelCost,
			TollCharges:        form.TollCharges,
			AccommodationCost:  form.AccommodationCost,
			PerDiemRate:        form.PerDiemRate,
		}, nil
	case TypeMaintenance:
		return MaintenanceDetails{
			Category:           form.MaintenanceCategory,
			SubCategory:        form.SubCategory,
			ServiceDate:        form.ServiceDate,
			VendorName:         form.VendorName,
			InvoiceNumber:      form.InvoiceNumber,
			WarrantyApplicable: form.WarrantyApplicable,
			AssetID:            cloneString(form.AssetID),
			VehicleID:          cloneString(form.VehicleID),
		}, nil
	case TypeRequisition:
		return RequisitionDetails{
			ServiceType:     form.ServiceType,
			SubType:         form.ServiceSubType,
			Duration:        form.Duration,
			Frequency:       form.Frequency,
			RequiredByDate:  form.RequiredByDate,
			Quantity:        form.Quantity,
			UnitPrice:       form.UnitPrice,
			UrgencyLevel:    form.UrgencyLevel,
			PreferredVendor: form.PreferredVendor,
		}, nil
	default:
		return nil, fmt.Errorf("pack %q form: %w", form.Type, apperrors.ErrUnknownExpenseType)
	}
}

// FormToRecord converts the wizard form into a persistence record owned by userID.
// Missing status defaults to draft and missing currency to DefaultCurrency.
func FormToRecord(form ExpenseForm, userID string) (Expense, error) {
	details, err := DetailsFromForm(form)
	if err != nil {
		return Expense{}, err
	}
	status := form.Status
	if status == "" {
		status = StatusDraft
	}
	currency := form.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	return Expense{
		ID:              form.ID,
		UserID:          userID,
		Status:          status,
		Type:            form.Type,
		TotalAmount:     form.TotalAmount,
		Currency:        currency,
		Description:     form.Description,
		BusinessPurpose: form.BusinessPurpose,
		Details:         details,
	}, nil
}

// RecordToForm unpacks a persisted record for editing.
func RecordToForm(e Expense) ExpenseForm {
	form := ExpenseForm{
		ID:              e.ID,
		Type:            e.Type,
		Status:          e.Status,
		TotalAmount:     e.TotalAmount,
		Currency:        e.Currency,
		Description:     e.Description,
		BusinessPurpose: e.BusinessPurpose,
	}
	switch d := e.Details.(type) {
	case TravelDetails:
		form.TransportationType = d.TransportationType
		form.StartLocation = d.StartLocation
		form.EndLocation = d.EndLocation
		form.StartDate = d.StartDate
		form.EndDate = d.EndDate
		form.VehicleOwnership = d.VehicleOwnership
		form.IsRoundTrip = d.IsRoundTrip
		form.FuelCost = d.FuelCost
		form.TollCharges = d.TollCharges
		form.AccommodationCost = d.AccommodationCost
		form.PerDiemRate = d.PerDiemRate
	case MaintenanceDetails:
		form.MaintenanceCategory = d.Category
		form.SubCategory = d.SubCategory
		form.ServiceDate = d.ServiceDate
		form.VendorName = d.VendorName
		form.InvoiceNumber = d.InvoiceNumber
		form.WarrantyApplicable = d.WarrantyApplicable
		form.AssetID = cloneString(d.AssetID)
		form.VehicleID = cloneString(d.VehicleID)
	case RequisitionDetails:
		form.ServiceType = d.ServiceType
		form.ServiceSubType = d.SubType
		form.Duration = d.Duration
		form.Frequency = d.Frequency
		form.RequiredByDate = d.RequiredByDate
		form.Quantity = d.Quantity
		form.UnitPrice = d.UnitPrice
		form.UrgencyLevel = d.UrgencyLevel
		form.PreferredVendor = d.PreferredVendor
	}
	return form
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
