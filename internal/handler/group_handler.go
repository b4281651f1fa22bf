package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/reseller_portal/internal/models"
	"github.com/GTDGit/reseller_portal/internal/service"
	"github.com/GTDGit/reseller_portal/internal/utils"
)

// GroupHandler manages customer groups.
type GroupHandler struct {
	groupService *service.GroupService
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groupService *service.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// List handles GET /v1/groups.
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groupService.List(c.Request.Context(), partnerID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Groups retrieved", groups)
}

// Create handles POST /v1/groups.
func (h *GroupHandler) Create(c *gin.Context) {
	var req service.GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	g, err := h.groupService.Create(c.Request.Context(), partnerID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Group created", g)
}

// Update handles PUT /v1/groups/:id.
func (h *GroupHandler) Update(c *gin.Context) {
	var patch models.GroupPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	g, err := h.groupService.Update(c.Request.Context(), partnerID(c), c.Param("id"), &patch)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Group updated", g)
}

// Delete handles DELETE /v1/groups/:id.
func (h *GroupHandler) Delete(c *gin.Context) {
	if err := h.groupService.Delete(c.Request.Context(), partnerID(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Group deleted", nil)
}
