package view

import (
	"fmt"
	"sort"
	"strings"

	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).PaddingTop(1)
	faintStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	panelStyle   = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(22)
)

var statusColors = map[domain.ExpenseStatus]lipgloss.Color{
	domain.StatusDraft:     lipgloss.Color("245"),
	domain.StatusSubmitted: lipgloss.Color("214"),
	domain.StatusApproved:  lipgloss.Color("46"),
	domain.StatusRejected:  lipgloss.Color("196"),
}

func row(label, value string) string {
	if value == "" {
		value = "-"
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

func renderSummary(f domain.ExpenseForm) string {
	rows := []string{
		row("Type", string(f.Type)),
		row("Amount", f.TotalAmount.StringFixed(2)+" "+f.Currency),
		row("Description", f.Description),
	}
	switch f.Type {
	case domain.TypeTravel:
		rows = append(rows,
			row("Route", strings.TrimSpace(f.StartLocation+" → "+f.EndLocation)),
			row("Dates", f.StartDate+" to "+f.EndDate),
			row("Vehicle", string(f.VehicleOwnership)),
			row("Fuel / tolls", f.FuelCost.StringFixed(2)+" / "+f.TollCharges.StringFixed(2)),
			row("Lodging / per diem", f.AccommodationCost.StringFixed(2)+" / "+f.PerDiemRate.StringFixed(2)),
		)
	case domain.TypeMaintenance:
		rows = append(rows,
			row("Category", string(f.MaintenanceCategory)+" / "+f.SubCategory),
			row("Service date", f.ServiceDate),
			row("Vendor", f.VendorName),
			row("Invoice", f.InvoiceNumber),
		)
	case domain.TypeRequisition:
		rows = append(rows,
			row("Service", f.ServiceType+" / "+f.ServiceSubType),
			row("Required by", f.RequiredByDate),
			row("Urgency", string(f.UrgencyLevel)),
			row("Quantity x price", fmt.Sprintf("%d x %s", f.Quantity, f.UnitPrice.StringFixed(2))),
		)
	}
	rows = append(rows, row("Business purpose", fmt.Sprintf("%d characters", len([]rune(f.BusinessPurpose)))))
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderErrors lists field errors in a stable order.
func renderErrors(errs map[string]string) string {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, "• "+errs[k])
	}
	return strings.Join(lines, "\n")
}

// RenderExpenses formats a list of expenses as a table.
func RenderExpenses(expenses []domain.Expense) string {
	if len(expenses) == 0 {
		return faintStyle.Render("No expenses found.")
	}
	lines := make([]string, 0, len(expenses)+1)
	lines = append(lines, faintStyle.Render(fmt.Sprintf("%-22s %-12s %-10s %14s  %s", "Number", "Type", "Status", "Amount", "Description")))
	for _, e := range expenses {
		number := e.ExpenseNumber
		if number == "" {
			number = "(draft)"
		}
		status := lipgloss.NewStyle().Foreground(statusColors[e.Status]).Render(fmt.Sprintf("%-10s", e.Status))
		lines = append(lines, fmt.Sprintf("%-22s %-12s %s %14s  %s", number, e.Type, status, e.TotalAmount.StringFixed(2), truncate(e.Description, 40)))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

// Success renders a confirmation line.
func Success(msg string) string { return successStyle.Render(msg) }

// Failure renders an error line.
func Failure(msg string) string { return errorStyle.Render(msg) }

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
