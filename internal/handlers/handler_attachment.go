package handlers

import (
	"net/http"
	"time"

	"github.com/SscSPs/expenseflow/internal/core/domain"
	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/SscSPs/expenseflow/internal/core/services"
	"github.com/SscSPs/expenseflow/internal/dto"
	"github.com/gin-gonic/gin"
)

// multipartOverhead allows for the form framing around the file part.
const multipartOverhead = 1 << 20

type attachmentHandler struct {
	attachmentService portssvc.AttachmentSvc
}

func registerAttachmentRoutes(rg *gin.RouterGroup, attachmentSvc portssvc.AttachmentSvc) {
	h := &attachmentHandler{attachmentService: attachmentSvc}

	attachments := rg.Group("/expenses/:id/attachments", h.requireStorage)
	{
		attachments.POST("", h.upload)
		attachments.GET("", h.list)
		attachments.GET("/:attachmentId", h.downloadURL)
		attachments.DELETE("/:attachmentId", h.delete)
	}
}

// requireStorage answers 503 when no receipt storage is configured.
func (h *attachmentHandler) requireStorage(c *gin.Context) {
	if h.attachmentService == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Receipt storage is not configured"})
		return
	}
	c.Next()
}

// upload godoc
// @Summary Upload a receipt
// @Description Attaches a PDF or image to a draft. The content type is detected from the file.
// @Tags attachments
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Param file formData file true "Receipt"
// @Success 201 {object} domain.Attachment
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /expenses/{id}/attachments [post]
func (h *attachmentHandler) upload(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, domain.MaxAttachmentSize+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "Missing file")
		return
	}
	file, err := header.Open()
	if err != nil {
		badRequest(c, "Unreadable file")
		return
	}
	defer file.Close()

	attachment, err := h.attachmentService.Upload(c.Request.Context(), identity, c.Param("id"), header.Filename, file)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, attachment)
}

// list godoc
// @Summary List receipts of an expense
// @Tags attachments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Success 200 {object} dto.AttachmentListResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /expenses/{id}/attachments [get]
func (h *attachmentHandler) list(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	attachments, err := h.attachmentService.List(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AttachmentListResponse{Attachments: attachments})
}

// downloadURL godoc
// @Summary Get a receipt download URL
// @Description Returns a URL valid for 15 minutes.
// @Tags attachments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Param attachmentId path string true "Attachment ID"
// @Success 200 {object} dto.DownloadURLResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /expenses/{id}/attachments/{attachmentId} [get]
func (h *attachmentHandler) downloadURL(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	url, err := h.attachmentService.DownloadURL(c.Request.Context(), identity, c.Param("id"), c.Param("attachmentId"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DownloadURLResponse{URL: url, ExpiresAt: time.Now().UTC().Add(services.DownloadURLTTL)})
}

// delete godoc
// @Summary Delete a receipt from a draft
// @Tags attachments
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Param attachmentId path string true "Attachment ID"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /expenses/{id}/attachments/{attachmentId} [delete]
func (h *attachmentHandler) delete(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	if err := h.attachmentService.Delete(c.Request.Context(), identity, c.Param("id"), c.Param("attachmentId")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
