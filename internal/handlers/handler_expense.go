package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/SscSPs/expenseflow/internal/dto"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// expenseHandler serves drafts, submission and export.
type expenseHandler struct {
	expenseService    portssvc.ExpenseSvcFacade
	submissionService portssvc.SubmissionSvc
	reportingService  portssvc.ReportingService
}

func newExpenseHandler(expenseSvc portssvc.ExpenseSvcFacade, submissionSvc portssvc.SubmissionSvc, reportingSvc portssvc.ReportingService) *expenseHandler {
	return &expenseHandler{
		expenseService:    expenseSvc,
		submissionService: submissionSvc,
		reportingService:  reportingSvc,
	}
}

// RegisterExpenseRoutes registers draft, submission and export routes under rg.
func RegisterExpenseRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newExpenseHandler(services.Expense, services.Submission, services.Reporting)

	expenses := rg.Group("/expenses")
	{
		expenses.GET("", h.listExpenses)
		expenses.POST("", h.createExpense)
		expenses.GET("/export", h.exportExpenses)
		expenses.GET("/:id", h.getExpense)
		expenses.PUT("/:id", h.updateExpense)
		expenses.DELETE("/:id", h.deleteExpense)
		expenses.POST("/:id/submit", h.submitExpense)
	}
}

// bindExpenseForm reads {expense: ...} and checks the fields every draft needs.
func bindExpenseForm(c *gin.Context) (*domain.ExpenseForm, bool) {
	var req dto.ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return nil, false
	}
	if req.Expense == nil {
		badRequest(c, "Missing expense payload")
		return nil, false
	}
	missing := map[string]string{}
	if req.Expense.Type == "" {
		missing["type"] = "Type is required"
	}
	if req.Expense.Description == "" {
		missing["description"] = "Description is required"
	}
	if req.Expense.TotalAmount.IsZero() {
		missing["totalAmount"] = "Total amount is required"
	}
	if len(missing) > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing required fields", Details: missing})
		return nil, false
	}
	return req.Expense, true
}

// listExpenses godoc
// @Summary List own expenses
// @Description Lists the caller's expenses, newest first, with keyset pagination.
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param type query string false "Filter by type"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Token of the next page"
// @Success 200 {object} dto.ListExpensesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /expenses [get]
func (h *expenseHandler) listExpenses(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var params dto.ListExpensesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, "Invalid query parameters")
		return
	}
	filter := params.Filter()
	if filter.Status != "" && !filter.Status.IsValid() {
		badRequest(c, "Invalid status filter")
		return
	}
	if filter.Type != "" && !filter.Type.IsValid() {
		badRequest(c, "Invalid type filter")
		return
	}

	expenses, next, err := h.expenseService.ListExpenses(c.Request.Context(), identity, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListExpensesResponse{Expenses: dto.ToExpenseResponseList(expenses), NextToken: next})
}

// createExpense godoc
// @Summary Create an expense draft
// @Description Validates the form and stores it as a draft owned by the caller.
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ExpenseRequest true "Expense form"
// @Success 200 {object} dto.ExpenseEnvelope
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /expenses [post]
func (h *expenseHandler) createExpense(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	form, ok := bindExpenseForm(c)
	if !ok {
		return
	}

	expense, err := h.submissionService.CreateDraft(c.Request.Context(), identity, *form)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ExpenseEnvelope{Expense: dto.ToExpenseResponse(*expense), Message: "Expense created successfully"})
}

// getExpense godoc
// @Summary Get an expense
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /expenses/{id} [get]
func (h *expenseHandler) getExpense(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	expense, err := h.expenseService.GetExpense(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseResponse(*expense))
}

// updateExpense godoc
// @Summary Update a draft
// @Description Replaces a draft owned by the caller. Used by auto-save.
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Param request body dto.ExpenseRequest true "Expense form"
// @Success 200 {object} dto.ExpenseEnvelope
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /expenses/{id} [put]
func (h *expenseHandler) updateExpense(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	form, ok := bindExpenseForm(c)
	if !ok {
		return
	}

	expense, err := h.expenseService.UpdateDraft(c.Request.Context(), identity, c.Param("id"), *form)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ExpenseEnvelope{Expense: dto.ToExpenseResponse(*expense), Message: "Draft saved"})
}

// deleteExpense godoc
// @Summary Delete a draft
// @Tags expenses
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /expenses/{id} [delete]
func (h *expenseHandler) deleteExpense(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	if err := h.expenseService.DeleteDraft(c.Request.Context(), identity, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// submitExpense godoc
// @Summary Submit a draft for approval
// @Description Moves the caller's draft to submitted. Managers and admins within their limit are approved immediately.
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Success 200 {object} dto.ExpenseEnvelope
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /expenses/{id}/submit [post]
func (h *expenseHandler) submitExpense(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	expense, err := h.submissionService.Submit(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	message := "Expense submitted for approval"
	if expense.Status == domain.StatusApproved {
		message = "Expense submitted and approved"
	}
	c.JSON(http.StatusOK, dto.ExpenseEnvelope{Expense: dto.ToExpenseResponse(*expense), Message: message})
}

// exportExpenses godoc
// @Summary Export own expenses
// @Description Downloads the caller's expenses as an xlsx workbook.
// @Tags expenses
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param type query string false "Filter by type"
// @Success 200 {file} file
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /expenses/export [get]
func (h *expenseHandler) exportExpenses(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var params dto.ListExpensesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, "Invalid query parameters")
		return
	}
	filter := params.Filter()
	if filter.Status != "" && !filter.Status.IsValid() {
		respondWithError(c, apperrors.NewBadRequestError("Invalid status filter"))
		return
	}

	data, err := h.reportingService.ExportExpenses(c.Request.Context(), identity, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	fileName := fmt.Sprintf("expenses-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, xlsxContentType, data)
}
