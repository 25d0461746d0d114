package domain

import "github.com/shopspring/decimal"

// SummaryRow aggregates expenses sharing a status and type.
type SummaryRow struct {
	Status ExpenseStatus   `json:"status"`
	Type   ExpenseType     `json:"type"`
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// ExpenseSummary is the finance overview of all expenses.
type ExpenseSummary struct {
	Rows       []SummaryRow    `json:"rows"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
	TotalCount int64           `json:"totalCount"`
	Currency   string          `json:"currency"`
}
