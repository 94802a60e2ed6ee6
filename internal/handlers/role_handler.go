package handlers

import (
	"net/http"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/models"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/services"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	BaseHandler
	gatekeeper services.GatekeeperService
}

func NewRoleHandler(gatekeeper services.GatekeeperService, logger utils.Logger) *RoleHandler {
	return &RoleHandler{
		BaseHandler: NewBaseHandler(logger),
		gatekeeper:  gatekeeper,
	}
}

type GrantRoleRequest struct {
	UID  string          `json:"uid" binding:"required"`
	Role models.UserRole `json:"role" binding:"required"`
}

// GrantRole writes a role record for a user. Admin only.
// @Summary Grant role
// @Tags roles
// @Accept json
// @Produce json
// @Param grant body GrantRoleRequest true "Role grant"
// @Success 201 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Router /roles [post]
func (h *RoleHandler) GrantRole(c *gin.Context) {
	var req GrantRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	caller := h.requireIdentity(c)
	if caller == nil {
		return
	}

	if err := h.gatekeeper.Grant(c.Request.Context(), caller, req.UID, req.Role); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Role granted", "target_uid", req.UID, "role", req.Role)
	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Role granted",
	})
}

// CheckRole reports whether the caller holds the given role. Used by
// clients to decide which surface to render.
func (h *RoleHandler) CheckRole(c *gin.Context) {
	role := models.UserRole(c.Param("role"))

	caller := h.requireIdentity(c)
	if caller == nil {
		return
	}

	err := h.gatekeeper.Authorize(c.Request.Context(), caller, role)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"uid": caller.UID, "role": role, "granted": true})
	case services.IsDenied(err):
		c.JSON(http.StatusOK, gin.H{"uid": caller.UID, "role": role, "granted": false})
	default:
		h.handleServiceError(c, err)
	}
}
