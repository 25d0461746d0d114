package handlers

import (
	"net/http"
	"strings"

	"github.com/SscSPs/expenseflow/internal/core/domain"
	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/SscSPs/expenseflow/internal/dto"
	"github.com/gin-gonic/gin"
)

type approvalHandler struct {
	submissionService portssvc.SubmissionSvc
}

// RegisterApprovalRoutes registers decision, note and queue routes under rg.
func RegisterApprovalRoutes(rg *gin.RouterGroup, submissionSvc portssvc.SubmissionSvc) {
	h := &approvalHandler{submissionService: submissionSvc}

	expenses := rg.Group("/expenses/:id")
	{
		expenses.POST("/approve", h.decide)
		expenses.POST("/notes", h.appendNote)
		expenses.GET("/approvals", h.listApprovals)
	}
	rg.GET("/approvals/pending", h.listPending)
}

// decide godoc
// @Summary Approve or reject an expense
// @Description Records the decision of a manager or admin on a submitted expense.
// @Tags approvals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Param request body dto.DecisionRequest true "Decision"
// @Success 200 {object} dto.DecisionResponse
// @Failure 400 {object} ErrorResponse "Invalid action or expense not submitted"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /expenses/{id}/approve [post]
func (h *approvalHandler) decide(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	action, valid := domain.ParseApprovalAction(req.Action)
	if !valid {
		badRequest(c, "Invalid action. Must be 'approved' or 'rejected'")
		return
	}

	expense, err := h.submissionService.Decide(c.Request.Context(), identity, c.Param("id"), action, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DecisionResponse{
		Message: "Expense " + string(expense.Status) + " successfully",
		Status:  expense.Status,
	})
}

// appendNote godoc
// @Summary Add a note to a decided expense
// @Tags approvals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Param request body dto.NoteRequest true "Note"
// @Success 201 {object} domain.ApprovalNote
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /expenses/{id}/notes [post]
func (h *approvalHandler) appendNote(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req dto.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Note) == "" {
		badRequest(c, "Note is required")
		return
	}

	note, err := h.submissionService.AppendNote(c.Request.Context(), identity, c.Param("id"), req.Note)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

// listApprovals godoc
// @Summary Approval history of an expense
// @Tags approvals
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Success 200 {object} domain.ApprovalHistory
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /expenses/{id}/approvals [get]
func (h *approvalHandler) listApprovals(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	history, err := h.submissionService.ListApprovals(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// listPending godoc
// @Summary Pending approval queue
// @Description Admins see every submitted expense, managers those of their direct reports.
// @Tags approvals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.PendingApprovalsResponse
// @Failure 403 {object} ErrorResponse
// @Router /approvals/pending [get]
func (h *approvalHandler) listPending(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	expenses, err := h.submissionService.ListPendingApprovals(c.Request.Context(), identity)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PendingApprovalsResponse{Expenses: dto.ToExpenseResponseList(expenses)})
}
