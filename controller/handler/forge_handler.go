package handler

import (
	"trivia-token-service/controller/respond"
	model "trivia-token-service/models"
	"trivia-token-service/service/forge_service"

	"github.com/gin-gonic/gin"
)

// ForgeHandler forge handler
type ForgeHandler struct {
	forgeService *forge_service.ForgeService
}

// NewForgeHandler create forge handler instance
func NewForgeHandler(forgeService *forge_service.ForgeService) *ForgeHandler {
	return &ForgeHandler{forgeService: forgeService}
}

// InitiateForgeRequest forge request
type InitiateForgeRequest struct {
	Type             string   `json:"type" binding:"required" example:"category_ultimate"`
	CategoryID       string   `json:"categoryId" example:"science"`
	OwnerKey         string   `json:"ownerKey" binding:"required"`
	InputIdentifiers []string `json:"inputIdentifiers" binding:"required"`
}

// GetProgress forge progress of an owner
// @Summary Forge progress
// @Description How many held tokens count towards each forge type
// @Tags Forge
// @Produce json
// @Param ownerKey path string true "Owner key"
// @Success 200 {object} respond.Response{data=respond.ForgeProgressResponse}
// @Router /api/v1/forge/progress/{ownerKey} [get]
func (h *ForgeHandler) GetProgress(c *gin.Context) {
	ownerKey := c.Param("ownerKey")
	entries, err := h.forgeService.Progress(c.Request.Context(), ownerKey)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Success(c, respond.ForgeProgressResponse{OwnerKey: ownerKey, Progress: entries})
}

// Initiate start a forge
// @Summary Initiate forge
// @Description Validate the inputs, then burn them and mint the ultimate token. Returns once the burn is submitted or queued.
// @Tags Forge
// @Accept json
// @Produce json
// @Param request body InitiateForgeRequest true "Forge request"
// @Success 200 {object} respond.Response{data=respond.ForgeOperationResponse}
// @Failure 200 {object} respond.Response{data=respond.ValidationResponse} "code 42200"
// @Router /api/v1/forge [post]
func (h *ForgeHandler) Initiate(c *gin.Context) {
	var req InitiateForgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidParam(c, err.Error())
		return
	}

	op, err := h.forgeService.Initiate(c.Request.Context(), forge_service.InitiateRequest{
		Type:             model.ForgeType(req.Type),
		CategoryID:       req.CategoryID,
		OwnerKey:         req.OwnerKey,
		InputIdentifiers: req.InputIdentifiers,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Success(c, respond.ToForgeOperationResponse(op))
}

// GetStatus get forge operation
// @Summary Forge status
// @Tags Forge
// @Produce json
// @Param id path string true "Forge ID"
// @Success 200 {object} respond.Response{data=respond.ForgeOperationResponse}
// @Router /api/v1/forge/{id} [get]
func (h *ForgeHandler) GetStatus(c *gin.Context) {
	op, err := h.forgeService.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Success(c, respond.ToForgeOperationResponse(op))
}

// Cancel cancel a pending forge
// @Summary Cancel forge
// @Tags Forge
// @Produce json
// @Param id path string true "Forge ID"
// @Success 200 {object} respond.Response{data=respond.ForgeOperationResponse}
// @Router /api/v1/forge/{id}/cancel [post]
func (h *ForgeHandler) Cancel(c *gin.Context) {
	op, err := h.forgeService.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Success(c, respond.ToForgeOperationResponse(op))
}

// ListStuck failed forges waiting for an operator
// @Summary Stuck forges
// @Tags Admin
// @Produce json
// @Success 200 {object} respond.Response{data=[]respond.ForgeOperationResponse}
// @Router /api/v1/admin/forge/stuck [get]
func (h *ForgeHandler) ListStuck(c *gin.Context) {
	ops, err := h.forgeService.ListStuck(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Success(c, respond.ToForgeOperationListResponse(ops))
}

// Reconcile re-derive a forge from its ledger references
// @Summary Reconcile forge
// @Tags Admin
// @Produce json
// @Param id path string true "Forge ID"
// @Success 200 {object} respond.Response{data=respond.ForgeOperationResponse}
// @Router /api/v1/admin/forge/{id}/reconcile [post]
func (h *ForgeHandler) Reconcile(c *gin.Context) {
	op, err := h.forgeService.Reconcile(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Success(c, respond.ToForgeOperationResponse(op))
}
