package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/expenseflow/internal/client"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func sampleResponse(id string) dto.ExpenseResponse {
	e := domain.Expense{
		ID:          id,
		UserID:      "user-1",
		Status:      domain.StatusDraft,
		Type:        domain.TypeTravel,
		TotalAmount: decimal.NewFromInt(1200),
		Currency:    "BDT",
		Description: "Client visit",
		Details:     domain.TravelDetails{StartLocation: "Dhaka", EndLocation: "Sylhet", FuelCost: decimal.NewFromInt(800)},
		CreatedAt:   time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	return dto.ToExpenseResponse(e)
}

func newTestClient(t *testing.T, handler http.Handler, opts ...client.Option) *client.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := client.New(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsNonHTTPURL(t *testing.T) {
	_, err := client.New("ftp://example.com")
	assert.Error(t, err)
}

func TestListExpenses_SendsFiltersAndCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/expenses", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "xf_key", r.Header.Get("x-api-key"))
		assert.Equal(t, "submitted", r.URL.Query().Get("status"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		next := "page-2"
		writeJSON(w, http.StatusOK, dto.ListExpensesResponse{Expenses: []dto.ExpenseResponse{sampleResponse("exp-1")}, NextToken: &next})
	})
	c := newTestClient(t, mux, client.WithAPIKey("xf_key"))

	expenses, next, err := c.ListExpenses(context.Background(), client.ListOptions{Status: domain.StatusSubmitted, Limit: 10})
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "exp-1", expenses[0].ID)
	details, ok := expenses[0].Details.(domain.TravelDetails)
	require.True(t, ok)
	assert.Equal(t, "Sylhet", details.EndLocation)
	require.NotNil(t, next)
	assert.Equal(t, "page-2", *next)
}

func TestSaveDraft_CreatesThenUpdates(t *testing.T) {
	var methods []string
	mux := http.NewServeMux()
	handle := func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		var req dto.ExpenseRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.Expense)
		assert.Equal(t, "Dhaka", req.Expense.StartLocation)
		writeJSON(w, http.StatusOK, dto.ExpenseEnvelope{Expense: sampleResponse("exp-9"), Message: "Draft saved"})
	}
	mux.HandleFunc("POST /api/expenses", handle)
	mux.HandleFunc("PUT /api/expenses/exp-9", handle)
	c := newTestClient(t, mux, client.WithBearerToken("jwt"))

	record := domain.Expense{
		Type:        domain.TypeTravel,
		TotalAmount: decimal.NewFromInt(1200),
		Description: "Client visit",
		Details:     domain.TravelDetails{StartLocation: "Dhaka"},
	}
	saved, err := c.SaveDraft(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, "exp-9", saved.ID)

	record.ID = saved.ID
	_, err = c.SaveDraft(context.Background(), record)
	require.NoError(t, err)

	assert.Equal(t, []string{http.MethodPost, http.MethodPut}, methods)
}

func TestDo_DecodesAPIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/expenses", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "Missing required fields",
			"details": map[string]string{"description": "Description is required"},
		})
	})
	c := newTestClient(t, mux)

	_, err := c.CreateExpense(context.Background(), domain.NewEmptyForm())
	require.Error(t, err)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Missing required fields", apiErr.Message)
	assert.Equal(t, "Description is required", apiErr.Details["description"])
	assert.True(t, client.IsStatus(err, http.StatusBadRequest))
}

func TestDo_Timeout(t *testing.T) {
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/profile", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	c := newTestClient(t, mux, client.WithTimeout(50*time.Millisecond))
	defer close(release)

	_, err := c.Profile(context.Background())
	assert.ErrorIs(t, err, client.ErrTimeout)
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := client.New(url)
	require.NoError(t, err)
	_, err = c.Profile(context.Background())
	assert.ErrorIs(t, err, client.ErrNetwork)
}

func TestDecide_SendsAction(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/expenses/exp-1/approve", func(w http.ResponseWriter, r *http.Request) {
		var req dto.DecisionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "rejected", req.Action)
		require.NotNil(t, req.Notes)
		assert.Equal(t, "Missing receipts", *req.Notes)
		writeJSON(w, http.StatusOK, dto.DecisionResponse{Message: "Expense rejected successfully", Status: domain.StatusRejected})
	})
	c := newTestClient(t, mux)

	notes := "Missing receipts"
	status, err := c.Decide(context.Background(), "exp-1", domain.ActionReject, &notes)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, status)
}

func TestDeleteExpense_NoContent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/expenses/exp-1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, mux)

	assert.NoError(t, c.DeleteExpense(context.Background(), "exp-1"))
}
