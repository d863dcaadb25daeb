package handler

import (
	"trivia-token-service/controller/respond"
	"trivia-token-service/service/mint_service"

	"github.com/gin-gonic/gin"
)

// TokenHandler mint and ownership queries
type TokenHandler struct {
	mintService *mint_service.MintService
}

// NewTokenHandler create token handler instance
func NewTokenHandler(mintService *mint_service.MintService) *TokenHandler {
	return &TokenHandler{mintService: mintService}
}

// GetMint get mint operation
// @Summary Get mint operation
// @Tags Token
// @Produce json
// @Param id path string true "Mint operation ID"
// @Success 200 {object} respond.Response{data=respond.MintOperationResponse}
// @Router /api/v1/mints/{id} [get]
func (h *TokenHandler) GetMint(c *gin.Context) {
	op, err := h.mintService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Success(c, respond.ToMintOperationResponse(op))
}

// ListTokens list tokens of an owner, burned ones included
// @Summary List owner tokens
// @Tags Token
// @Produce json
// @Param ownerKey path string true "Owner key"
// @Success 200 {object} respond.Response{data=respond.TokenListResponse}
// @Router /api/v1/owners/{ownerKey}/tokens [get]
func (h *TokenHandler) ListTokens(c *gin.Context) {
	ownerKey := c.Param("ownerKey")
	records, err := h.mintService.ListTokens(c.Request.Context(), ownerKey)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Success(c, respond.ToTokenListResponse(ownerKey, records))
}
