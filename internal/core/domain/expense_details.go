package domain

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/shopspring/decimal"
)

// ExpenseDetails is the variant-specific payload of an expense.
type ExpenseDetails interface {
	ExpenseType() ExpenseType
}

// VehicleOwnership describes who owns the vehicle used for travel.
type VehicleOwnership string

const (
	VehicleOwn    VehicleOwnership = "own"
	VehicleRental VehicleOwnership = "rental"
	VehiclePublic VehicleOwnership = "public"
)

// TravelDetails is the travel variant payload. Dates are YYYY-MM-DD.
type TravelDetails struct {
	TransportationType string           `json:"transportationType"`
	StartLocation      string           `json:"startLocation"`
	EndLocation        string           `json:"endLocation"`
	StartDate          string           `json:"startDate"`
	EndDate            string           `json:"endDate"`
	VehicleOwnership   VehicleOwnership `json:"vehicleOwnership"`
	IsRoundTrip        bool             `json:"isRoundTrip"`
	FuelCost           decimal.Decimal  `json:"fuelCost"`
	TollCharges        decimal.Decimal  `json:"tollCharges"`
	AccommodationCost  decimal.Decimal  `json:"accommodationCost"`
	PerDiemRate        decimal.Decimal  `json:"perDiemRate"`
}

func (TravelDetails) ExpenseType() ExpenseType { return TypeTravel }

// MaintenanceCategory groups maintenance sub-categories.
type MaintenanceCategory string

const (
	MaintenanceCharges   MaintenanceCategory = "charges"
	MaintenancePurchases MaintenanceCategory = "purchases"
	MaintenanceRepairs   MaintenanceCategory = "repairs"
)

// MaintenanceSubCategories enumerates the allowed sub-categories per category.
var MaintenanceSubCategories = map[MaintenanceCategory][]string{
	MaintenanceCharges:   {"utility", "service_fee", "license", "subscription", "other"},
	MaintenancePurchases: {"spare_parts", "tools", "consumables", "equipment", "other"},
	MaintenanceRepairs:   {"vehicle", "building", "equipment", "it", "other"},
}

// IsValid reports whether c is a known category.
func (c MaintenanceCategory) IsValid() bool {
	_, ok := MaintenanceSubCategories[c]
	return ok
}

// IsValidSubCategory reports whether sub belongs to the category c.
func (c MaintenanceCategory) IsValidSubCategory(sub string) bool {
	for _, s := range MaintenanceSubCategories[c] {
		if s == sub {
			return true
		}
	}
	return false
}

// MaintenanceDetails is the maintenance variant payload.
type MaintenanceDetails struct {
	Category           MaintenanceCategory `json:"category"`
	SubCategory        string              `json:"subCategory"`
	ServiceDate        string              `json:"serviceDate"`
	VendorName         string              `json:"vendorName"`
	InvoiceNumber      string              `json:"invoiceNumber"`
	WarrantyApplicable bool                `json:"warrantyApplicable"`
	AssetID            *string             `json:"assetId,omitempty"`
	VehicleID          *string             `json:"vehicleId,omitempty"`
}

func (MaintenanceDetails) ExpenseType() ExpenseType { return TypeMaintenance }

// UrgencyLevel ranks how soon a requisition is needed.
type UrgencyLevel string

const (
	UrgencyLow    UrgencyLevel = "low"
	UrgencyMedium UrgencyLevel = "medium"
	UrgencyHigh   UrgencyLevel = "high"
	UrgencyUrgent UrgencyLevel = "urgent"
)

// RequisitionDetails is the requisition variant payload.
type RequisitionDetails struct {
	ServiceType     string          `json:"serviceType"`
	SubType         string          `json:"subType"`
	Duration        string          `json:"duration"`
	Frequency       string          `json:"frequency"`
	RequiredByDate  string          `json:"requiredByDate"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	UrgencyLevel    UrgencyLevel    `json:"urgencyLevel"`
	PreferredVendor string          `json:"preferredVendor"`
}

func (RequisitionDetails) ExpenseType() ExpenseType { return TypeRequisition }

type detailsTag struct {
	Type ExpenseType `json:"type"`
}

// EncodeDetails serializes a payload as a JSON object carrying its own "type" key.
func EncodeDetails(d ExpenseDetails) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("encode details: %w", apperrors.ErrUnknownExpenseType)
	}
	body, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode %s details: %w", d.ExpenseType(), err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("encode %s details: %w", d.ExpenseType(), err)
	}
	tag, _ := json.Marshal(d.ExpenseType())
	fields["type"] = tag
	return json.Marshal(fields)
}

// DecodeDetails parses a tagged payload. The embedded tag must match expected.
func DecodeDetails(expected ExpenseType, raw []byte) (ExpenseDetails, error) {
	var tag detailsTag
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, apperrors.NewValidationError(map[string]string{"details": "Details payload is not a JSON object"})
	}
	if tag.Type != expected {
		return nil, apperrors.NewValidationError(map[string]string{
			"details.type": fmt.Sprintf("Details type %q does not match expense type %q", tag.Type, expected),
		})
	}

	var (
		d   ExpenseDetails
		err error
	)
	switch expected {
	case TypeTravel:
		var t TravelDetails
		err = json.Unmarshal(raw, &t)
		d = t
	case TypeMaintenance:
		var m MaintenanceDetails
		err = json.Unmarshal(raw, &m)
		d = m
	case TypeRequisition:
		var r RequisitionDetails
		err = json.Unmarshal(raw, &r)
		d = r
	default:
		return nil, fmt.Errorf("decode details %q: %w", expected, apperrors.ErrUnknownExpenseType)
	}
	if err != nil {
		return nil, apperrors.NewValidationError(map[string]string{"details": "Invalid " + string(expected) + " details: " + err.Error()})
	}
	return d, nil
}
