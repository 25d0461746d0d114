package handlers

import (
	"net/http"
	"strings"

	"github.com/SscSPs/expenseflow/internal/core/policy"
	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/SscSPs/expenseflow/internal/dto"
	"github.com/gin-gonic/gin"
)

type userHandler struct {
	userService portssvc.UserSvcFacade
}

func registerUserRoutes(rg *gin.RouterGroup, userSvc portssvc.UserSvcFacade) {
	h := &userHandler{userService: userSvc}

	rg.GET("/profile", h.getProfile)
	rg.PUT("/profile", h.updateProfile)
	rg.PUT("/admin/users/:id", h.adminUpdateUser)
	rg.GET("/access", h.checkAccess)
}

// getProfile godoc
// @Summary Get own profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /profile [get]
func (h *userHandler) getProfile(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	profile, err := h.userService.GetUserByID(c.Request.Context(), identity.UserID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(profile))
}

// updateProfile godoc
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Profile changes"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /profile [put]
func (h *userHandler) updateProfile(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	profile, err := h.userService.UpdateProfile(c.Request.Context(), identity, req.ToDomain())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(profile))
}

// adminUpdateUser godoc
// @Summary Update a user's role, limits or manager
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body dto.AdminUpdateUserRequest true "Changes"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{id} [put]
func (h *userHandler) adminUpdateUser(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req dto.AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	update, valid := req.ToDomain()
	if !valid {
		badRequest(c, "Unknown role")
		return
	}

	profile, err := h.userService.AdminUpdateUser(c.Request.Context(), identity, c.Param("id"), update)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(profile))
}

// checkAccess godoc
// @Summary Check access to a UI route
// @Description Answers whether the caller's role may open path. Unknown paths are allowed.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param path query string true "Route path"
// @Success 200 {object} dto.AccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /access [get]
func (h *userHandler) checkAccess(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	path := strings.TrimSpace(c.Query("path"))
	if path == "" || !strings.HasPrefix(path, "/") {
		badRequest(c, "path must be an absolute route")
		return
	}

	profile, err := h.userService.GetUserByID(c.Request.Context(), identity.UserID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AccessResponse{
		Path:    path,
		Allowed: profile.IsActive && policy.CanAccessRoute(profile, path),
		Role:    profile.Role,
	})
}
