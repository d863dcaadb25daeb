package handler

import (
	"trivia-token-service/controller/respond"
	"trivia-token-service/service/eligibility_service"
	"trivia-token-service/service/mint_service"

	"github.com/gin-gonic/gin"
)

// EligibilityHandler eligibility and claim handler
type EligibilityHandler struct {
	eligibilityService *eligibility_service.EligibilityService
	mintService        *mint_service.MintService
}

// NewEligibilityHandler create eligibility handler instance
func NewEligibilityHandler(eligibilityService *eligibility_service.EligibilityService, mintService *mint_service.MintService) *EligibilityHandler {
	return &EligibilityHandler{
		eligibilityService: eligibilityService,
		mintService:        mintService,
	}
}

// CreateEligibilityRequest eligibility creation request
type CreateEligibilityRequest struct {
	PlayerID   string `json:"playerId" binding:"required" example:"player-42"`
	CategoryID string `json:"categoryId" binding:"required" example:"science"`
	IsGuest    bool   `json:"isGuest" example:"false"`
}

// ClaimRequest claim request
type ClaimRequest struct {
	OwnerKey string `json:"ownerKey" binding:"required" example:"02a1633cafcc01ebfb6d78e39f687a1f0995c62fc95f51ead10a02ee0be551b5dc"`
}

// CreateEligibility record a won round
// @Summary Create eligibility
// @Description Grant a player the right to claim one token of a category; guests get 25 minutes, players 60
// @Tags Eligibility
// @Accept json
// @Produce json
// @Param request body CreateEligibilityRequest true "Eligibility"
// @Success 200 {object} respond.Response{data=respond.EligibilityResponse}
// @Router /api/v1/eligibilities [post]
func (h *EligibilityHandler) CreateEligibility(c *gin.Context) {
	var req CreateEligibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidParam(c, err.Error())
		return
	}

	e, err := h.eligibilityService.Create(c.Request.Context(), req.PlayerID, req.CategoryID, req.IsGuest)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Success(c, respond.ToEligibilityResponse(e))
}

// GetEligibility get eligibility by id
// @Summary Get eligibility
// @Tags Eligibility
// @Produce json
// @Param id path string true "Eligibility ID"
// @Success 200 {object} respond.Response{data=respond.EligibilityResponse}
// @Router /api/v1/eligibilities/{id} [get]
func (h *EligibilityHandler) GetEligibility(c *gin.Context) {
	e, err := h.eligibilityService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Success(c, respond.ToEligibilityResponse(e))
}

// ListPlayerEligibilities list eligibilities of a player
// @Summary List player eligibilities
// @Tags Eligibility
// @Produce json
// @Param playerId path string true "Player ID"
// @Success 200 {object} respond.Response{data=[]respond.EligibilityResponse}
// @Router /api/v1/players/{playerId}/eligibilities [get]
func (h *EligibilityHandler) ListPlayerEligibilities(c *gin.Context) {
	list, err := h.eligibilityService.ListByPlayer(c.Request.Context(), c.Param("playerId"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Success(c, respond.ToEligibilityListResponse(list))
}

// Claim spend an eligibility and start the mint
// @Summary Claim token
// @Description Reserve a catalog design of the eligibility's category and submit its mint
// @Tags Eligibility
// @Accept json
// @Produce json
// @Param id path string true "Eligibility ID"
// @Param request body ClaimRequest true "Owner"
// @Success 200 {object} respond.Response{data=respond.MintOperationResponse}
// @Router /api/v1/eligibilities/{id}/claim [post]
func (h *EligibilityHandler) Claim(c *gin.Context) {
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidParam(c, err.Error())
		return
	}

	op, err := h.mintService.Claim(c.Request.Context(), c.Param("id"), req.OwnerKey)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Success(c, respond.ToMintOperationResponse(op))
}
