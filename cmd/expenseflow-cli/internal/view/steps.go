package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/core/form"
	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"
)

// stepForm is the huh group of one wizard step and the patch it produces.
type stepForm struct {
	group  *huh.Group
	fields []string
	patch  func() (map[string]any, error)
}

// buildStep returns the inputs of step id prefilled from draft.
func buildStep(id form.StepID, t domain.ExpenseType, draft domain.ExpenseForm) (stepForm, error) {
	switch id {
	case "basics":
		return basicsStep(draft), nil
	case "purpose":
		return purposeStep(draft), nil
	}

	switch t {
	case domain.TypeTravel:
		switch id {
		case "trip":
			return tripStep(draft), nil
		case "costs":
			return costsStep(draft), nil
		}
	case domain.TypeMaintenance:
		switch id {
		case "service":
			return maintenanceServiceStep(draft), nil
		case "vendor":
			return maintenanceVendorStep(draft), nil
		case "assets":
			return assetsStep(draft), nil
		}
	case domain.TypeRequisition:
		switch id {
		case "service":
			return requisitionServiceStep(draft), nil
		case "schedule":
			return scheduleStep(draft), nil
		case "pricing":
			return pricingStep(draft), nil
		case "vendor":
			return preferredVendorStep(draft), nil
		}
	}
	return stepForm{}, fmt.Errorf("no inputs for step %q of %s", id, t)
}

func basicsStep(draft domain.ExpenseForm) stepForm {
	amount := moneyString(draft.TotalAmount)
	currency := draft.Currency
	description := draft.Description

	return stepForm{
		group: huh.NewGroup(
			huh.NewInput().Title("Total amount").Value(&amount).Validate(validateMoney(true)),
			huh.NewInput().Title("Currency").Value(&currency).CharLimit(3),
			huh.NewText().Title("Description").Value(&description).CharLimit(domain.MaxDescriptionLength),
		),
		fields: []string{"totalAmount", "currency", "description"},
		patch: func() (map[string]any, error) {
			total, err := parseMoney(amount)
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"totalAmount": total,
				"currency":    strings.ToUpper(strings.TrimSpace(currency)),
				"description": strings.TrimSpace(description),
			}, nil
		},
	}
}

func purposeStep(draft domain.ExpenseForm) stepForm {
	purpose := draft.BusinessPurpose
	return stepForm{
		group: huh.NewGroup(
			huh.NewText().
				Title("Business purpose").
				Description(fmt.Sprintf("At least %d characters", domain.MinBusinessPurposeLength)).
				Value(&purpose),
		),
		fields: []string{"businessPurpose"},
		patch: func() (map[string]any, error) {
			return map[string]any{"businessPurpose": strings.TrimSpace(purpose)}, nil
		},
	}
}

func tripStep(draft domain.ExpenseForm) stepForm {
	transport := draft.TransportationType
	from, to := draft.StartLocation, draft.EndLocation
	start, end := draft.StartDate, draft.EndDate
	ownership := string(draft.VehicleOwnership)
	roundTrip := draft.IsRoundTrip

	return stepForm{
		group: huh.NewGroup(
			huh.NewInput().Title("Transportation").Placeholder("car, bus, flight").Value(&transport),
			huh.NewInput().Title("From").Value(&from),
			huh.NewInput().Title("To").Value(&to),
			huh.NewInput().Title("Start date").Placeholder("YYYY-MM-DD").Value(&start).Validate(validateDate),
			huh.NewInput().Title("End date").Placeholder("YYYY-MM-DD").Value(&end).Validate(validateDate),
			huh.NewSelect[string]().Title("Vehicle").Options(
				huh.NewOption("Own vehicle", string(domain.VehicleOwn)),
				huh.NewOption("Rental", string(domain.VehicleRental)),
				huh.NewOption("Public transport", string(domain.VehiclePublic)),
			).Value(&ownership),
			huh.NewConfirm().Title("Round trip?").Value(&roundTrip),
		),
		fields: []string{"transportationType", "startLocation", "endLocation", "startDate", "endDate", "vehicleOwnership", "isRoundTrip"},
		patch: func() (map[string]any, error) {
			return map[string]any{
				"transportationType": strings.TrimSpace(transport),
				"startLocation":      strings.TrimSpace(from),
				"endLocation":        strings.TrimSpace(to),
				"startDate":          strings.TrimSpace(start),
				"endDate":            strings.TrimSpace(end),
				"vehicleOwnership":   ownership,
				"isRoundTrip":        roundTrip,
			}, nil
		},
	}
}

func costsStep(draft domain.ExpenseForm) stepForm {
	fuel := moneyString(draft.FuelCost)
	tolls := moneyString(draft.TollCharges)
	lodging := moneyString(draft.AccommodationCost)
	perDiem := moneyString(draft.PerDiemRate)

	return stepForm{
		group: huh.NewGroup(
			huh.NewInput().Title("Fuel").Value(&fuel).Validate(validateMoney(false)),
			huh.NewInput().Title("Tolls").Value(&tolls).Validate(validateMoney(false)),
			huh.NewInput().Title("Accommodation").Value(&lodging).Validate(validateMoney(false)),
			huh.NewInput().Title("Per diem").Value(&perDiem).Validate(validateMoney(false)),
		),
		fields: []string{"fuelCost", "tollCharges", "accommodationCost", "perDiemRate"},
		patch: func() (map[string]any, error) {
			out := map[string]any{}
			for key, raw := range map[string]string{"fuelCost": fuel, "tollCharges": tolls, "accommodationCost": lodging, "perDiemRate": perDiem} {
				v, err := parseMoney(raw)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", key, err)
				}
				out[key] = v
			}
			return out, nil
		},
	}
}

func maintenanceServiceStep(draft domain.ExpenseForm) stepForm {
	category := string(draft.MaintenanceCategory)
	if category == "" {
		category = string(domain.MaintenanceCharges)
	}
	sub := draft.SubCategory
	serviceDate := draft.ServiceDate

	return stepForm{
		group: huh.NewGroup(
			huh.NewSelect[string]().Title("Category").Options(
				huh.NewOption("Charges", string(domain.MaintenanceCharges)),
				huh.NewOption("Purchases", string(domain.MaintenancePurchases)),
				huh.NewOption("Repairs", string(domain.MaintenanceRepairs)),
			).Value(&category),
			huh.NewSelect[string]().Title("Sub-category").OptionsFunc(func() []huh.Option[string] {
				return huh.NewOptions(domain.MaintenanceSubCategories[domain.MaintenanceCategory(category)]...)
			}, &category).Value(&sub),
			huh.NewInput().Title("Service date").Placeholder("YYYY-MM-DD").Value(&serviceDate).Validate(validateDate),
		),
		fields: []string{"maintenanceCategory", "subCategory", "serviceDate"},
		patch: func() (map[string]any, error) {
			return map[string]any{
				"maintenanceCategory": category,
				"subCategory":         sub,
				"serviceDate":         strings.TrimSpace(serviceDate),
			}, nil
		},
	}
}

func maintenanceVendorStep(draft domain.ExpenseForm) stepForm {
	vendor, invoice := draft.VendorName, draft.InvoiceNumber
	warranty := draft.WarrantyApplicable

	return stepForm{
		group: huh.NewGroup(
			huh.NewInput().Title("Vendor").Value(&vendor),
			huh.NewInput().Title("Invoice number").Value(&invoice),
			huh.NewConfirm().Title("Covered by warranty?").Value(&warranty),
		),
		fields: []string{"vendorName", "invoiceNumber", "warrantyApplicable"},
		patch: func() (map[string]any, error) {
			return map[string]any{
				"vendorName":         strings.TrimSpace(vendor),
				"invoiceNumber":      strings.TrimSpace(invoice),
				"warrantyApplicable": warranty,
			}, nil
		},
	}
}

func assetsStep(draft domain.ExpenseForm) stepForm {
	asset := deref(draft.AssetID)
	vehicle := deref(draft.VehicleID)

	return stepForm{
		group: huh.NewGroup(
			huh.NewInput().Title("Asset ID").Value(&asset),
			huh.NewInput().Title("Vehicle ID").Value(&vehicle),
		),
		fields: []string{"assetId", "vehicleId"},
		patch: func() (map[string]any, error) {
			return map[string]any{
				"assetId":   optional(asset),
				"vehicleId": optional(vehicle),
			}, nil
		},
	}
}

func requisitionServiceStep(draft domain.ExpenseForm) stepForm {
	serviceType, subType := draft.ServiceType, draft.ServiceSubType
	return stepForm{
		group: huh.NewGroup(
			huh.NewInput().Title("Service type").Value(&serviceType),
			huh.NewInput().Title("Sub-type").Value(&subType),
		),
		fields: []string{"serviceType", "serviceSubType"},
		patch: func() (map[string]any, error) {
			return map[string]any{
				"serviceType":    strings.TrimSpace(serviceType),
				"serviceSubType": strings.TrimSpace(subType),
			}, nil
		},
	}
}

func scheduleStep(draft domain.ExpenseForm) stepForm {
	duration, frequency := draft.Duration, draft.Frequency
	requiredBy := draft.RequiredByDate
	urgency := string(draft.UrgencyLevel)
	if urgency == "" {
		urgency = string(domain.UrgencyMedium)
	}

	return stepForm{
		group: huh.NewGroup(
			huh.NewInput().Title("Duration").Placeholder("e.g. 3 months").Value(&duration),
			huh.NewInput().Title("Frequency").Placeholder("e.g. weekly").Value(&frequency),
			huh.NewInput().Title("Required by").Placeholder("YYYY-MM-DD").Value(&requiredBy).Validate(validateDate),
			huh.NewSelect[string]().Title("Urgency").Options(
				huh.NewOption("Low", string(domain.UrgencyLow)),
				huh.NewOption("Medium", string(domain.UrgencyMedium)),
				huh.NewOption("High", string(domain.UrgencyHigh)),
				huh.NewOption("Urgent", string(domain.UrgencyUrgent)),
			).Value(&urgency),
		),
		fields: []string{"duration", "frequency", "requiredByDate", "urgencyLevel"},
		patch: func() (map[string]any, error) {
			return map[string]any{
				"duration":       strings.TrimSpace(duration),
				"frequency":      strings.TrimSpace(frequency),
				"requiredByDate": strings.TrimSpace(requiredBy),
				"urgencyLevel":   urgency,
			}, nil
		},
	}
}

func pricingStep(draft domain.ExpenseForm) stepForm {
	quantity := ""
	if draft.Quantity > 0 {
		quantity = strconv.Itoa(draft.Quantity)
	}
	unitPrice := moneyString(draft.UnitPrice)

	return stepForm{
		group: huh.NewGroup(
			huh.NewInput().Title("Quantity").Value(&quantity).Validate(validateQuantity),
			huh.NewInput().Title("Unit price").Value(&unitPrice).Validate(validateMoney(false)),
		),
		fields: []string{"quantity", "unitPrice"},
		patch: func() (map[string]any, error) {
			q, err := parseQuantity(quantity)
			if err != nil {
				return nil, err
			}
			price, err := parseMoney(unitPrice)
			if err != nil {
				return nil, err
			}
			return map[string]any{"quantity": q, "unitPrice": price}, nil
		},
	}
}

func preferredVendorStep(draft domain.ExpenseForm) stepForm {
	vendor := draft.PreferredVendor
	return stepForm{
		group:  huh.NewGroup(huh.NewInput().Title("Preferred vendor").Value(&vendor)),
		fields: []string{"preferredVendor"},
		patch: func() (map[string]any, error) {
			return map[string]any{"preferredVendor": strings.TrimSpace(vendor)}, nil
		},
	}
}

var errNotAPositiveAmount = errors.New("enter an amount greater than zero")

func parseMoney(raw string) (decimal.Decimal, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not an amount", raw)
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("amount cannot be negative")
	}
	return d, nil
}

func validateMoney(positive bool) func(string) error {
	return func(raw string) error {
		d, err := parseMoney(raw)
		if err != nil {
			return err
		}
		if positive && !d.IsPositive() {
			return errNotAPositiveAmount
		}
		return nil
	}
}

func parseQuantity(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	q, err := strconv.Atoi(raw)
	if err != nil || q < 0 {
		return 0, fmt.Errorf("%q is not a quantity", raw)
	}
	return q, nil
}

func validateQuantity(raw string) error {
	_, err := parseQuantity(raw)
	return err
}

// validateDate accepts an empty value so drafts can be saved incomplete.
func validateDate(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", raw); err != nil {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

func moneyString(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// stepErrors picks the validation messages that belong to fields.
func stepErrors(errs map[string]string, fields []string) []string {
	var out []string
	for _, f := range fields {
		for _, key := range []string{f, "details." + f} {
			if msg, ok := errs[key]; ok {
				out = append(out, msg)
			}
		}
	}
	return out
}
