package respond

import (
	"time"

	"trivia-token-service/assetid"
	model "trivia-token-service/models"
	"trivia-token-service/service/forge_service"
)

// EligibilityResponse eligibility response structure
type EligibilityResponse struct {
	ID         string     `json:"id" example:"6f1c2a8e-3d4b-4c1e-9a77-0c5d1e2f3a4b"`
	PlayerID   string     `json:"player_id" example:"player-42"`
	CategoryID string     `json:"category_id" example:"science"`
	IsGuest    bool       `json:"is_guest" example:"false"`
	Status     string     `json:"status" example:"active"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
}

// ToEligibilityResponse convert Eligibility to response structure
func ToEligibilityResponse(e *model.Eligibility) EligibilityResponse {
	return EligibilityResponse{
		ID:         e.ID,
		PlayerID:   e.PlayerID,
		CategoryID: e.CategoryID,
		IsGuest:    e.IsGuest,
		Status:     string(e.Status),
		CreatedAt:  e.CreatedAt,
		ExpiresAt:  e.ExpiresAt,
		UsedAt:     e.UsedAt,
	}
}

// ToEligibilityListResponse convert Eligibility list
func ToEligibilityListResponse(list []*model.Eligibility) []EligibilityResponse {
	out := make([]EligibilityResponse, 0, len(list))
	for _, e := range list {
		out = append(out, ToEligibilityResponse(e))
	}
	return out
}

// MintOperationResponse mint operation response structure
type MintOperationResponse struct {
	ID               string    `json:"id" example:"0b6c0f0e-5a0e-4a53-9a4e-2c1d9f0e7b11"`
	EligibilityID    string    `json:"eligibility_id"`
	CatalogItemID    string    `json:"catalog_item_id"`
	OwnerKey         string    `json:"owner_key"`
	CategoryID       string    `json:"category_id" example:"science"`
	SeasonID         string    `json:"season_id,omitempty" example:"WI1"`
	AssetIdentifier  string    `json:"asset_identifier" example:"TNFT_V1_SCI_REG_12b3de7d"`
	TxRef            string    `json:"tx_ref,omitempty"`
	Status           string    `json:"status" example:"submitted"`
	FailureReason    string    `json:"failure_reason,omitempty"`
	Error            string    `json:"error,omitempty"`
	RequiresOperator bool      `json:"requires_operator"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ToMintOperationResponse convert MintOperation to response structure
func ToMintOperationResponse(op *model.MintOperation) MintOperationResponse {
	return MintOperationResponse{
		ID:               op.ID,
		EligibilityID:    op.EligibilityID,
		CatalogItemID:    op.CatalogItemID,
		OwnerKey:         op.OwnerKey,
		CategoryID:       op.CategoryID,
		SeasonID:         op.SeasonID,
		AssetIdentifier:  op.AssetIdentifier,
		TxRef:            op.TxRef,
		Status:           string(op.Status),
		FailureReason:    op.FailureReason,
		Error:            op.Error,
		RequiresOperator: op.RequiresOperator,
		CreatedAt:        op.CreatedAt,
		UpdatedAt:        op.UpdatedAt,
	}
}

// TokenResponse ownership record response structure
type TokenResponse struct {
	AssetIdentifier string    `json:"asset_identifier" example:"TNFT_V1_SCI_REG_12b3de7d"`
	Tier            string    `json:"tier" example:"category"`
	Source          string    `json:"source" example:"mint"`
	CategoryID      string    `json:"category_id,omitempty" example:"science"`
	SeasonID        string    `json:"season_id,omitempty" example:"WI1"`
	Status          string    `json:"status" example:"held"`
	ForgeID         string    `json:"forge_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// TokenListResponse tokens of one owner
type TokenListResponse struct {
	OwnerKey string          `json:"owner_key"`
	Total    int             `json:"total" example:"3"`
	Tokens   []TokenResponse `json:"tokens"`
}

// ToTokenListResponse convert ownership records to response structure
func ToTokenListResponse(ownerKey string, records []*model.OwnershipRecord) TokenListResponse {
	tokens := make([]TokenResponse, 0, len(records))
	for _, r := range records {
		tokens = append(tokens, TokenResponse{
			AssetIdentifier: r.AssetIdentifier,
			Tier:            r.Tier,
			Source:          r.Source,
			CategoryID:      r.CategoryID,
			SeasonID:        r.SeasonID,
			Status:          string(r.Status),
			ForgeID:         r.ForgeID,
			CreatedAt:       r.CreatedAt,
		})
	}
	return TokenListResponse{OwnerKey: ownerKey, Total: len(tokens), Tokens: tokens}
}

// ForgeOperationResponse forge operation response structure
type ForgeOperationResponse struct {
	ID               string    `json:"id"`
	Type             string    `json:"type" example:"category_ultimate"`
	OwnerKey         string    `json:"owner_key"`
	CategoryID       string    `json:"category_id,omitempty" example:"science"`
	SeasonID         string    `json:"season_id,omitempty"`
	InputIdentifiers []string  `json:"input_identifiers"`
	BurnTxRef        string    `json:"burn_tx_ref,omitempty"`
	MintTxRef        string    `json:"mint_tx_ref,omitempty"`
	OutputIdentifier string    `json:"output_identifier,omitempty" example:"TNFT_V1_SCI_ULT_9f8e7d6c"`
	Status           string    `json:"status" example:"burn_submitted"`
	FailureReason    string    `json:"failure_reason,omitempty"`
	Error            string    `json:"error,omitempty"`
	RequiresOperator bool      `json:"requires_operator"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ToForgeOperationResponse convert ForgeOperation to response structure
func ToForgeOperationResponse(op *model.ForgeOperation) ForgeOperationResponse {
	return ForgeOperationResponse{
		ID:               op.ID,
		Type:             string(op.Type),
		OwnerKey:         op.OwnerKey,
		CategoryID:       op.CategoryID,
		SeasonID:         op.SeasonID,
		InputIdentifiers: op.InputIdentifiers,
		BurnTxRef:        op.BurnTxRef,
		MintTxRef:        op.MintTxRef,
		OutputIdentifier: op.OutputIdentifier,
		Status:           string(op.Status),
		FailureReason:    op.FailureReason,
		Error:            op.Error,
		RequiresOperator: op.RequiresOperator,
		CreatedAt:        op.CreatedAt,
		UpdatedAt:        op.UpdatedAt,
	}
}

// ToForgeOperationListResponse convert ForgeOperation list
func ToForgeOperationListResponse(ops []*model.ForgeOperation) []ForgeOperationResponse {
	out := make([]ForgeOperationResponse, 0, len(ops))
	for _, op := range ops {
		out = append(out, ToForgeOperationResponse(op))
	}
	return out
}

// ForgeProgressResponse forge progress of one owner
type ForgeProgressResponse struct {
	OwnerKey string                        `json:"owner_key"`
	Progress []forge_service.ProgressEntry `json:"progress"`
}

// ValidationResponse data of a refused forge request
type ValidationResponse struct {
	Rule   string `json:"rule" example:"count_mismatch"`
	Detail string `json:"detail" example:"seasonal_ultimate needs 20 tokens, got 19"`
}

// IdentifierResponse identifier inspection result
type IdentifierResponse struct {
	Valid       bool                 `json:"valid" example:"true"`
	Description *assetid.Description `json:"description,omitempty"`
}

// ToIdentifierResponse inspect an identifier string
func ToIdentifierResponse(identifier string) IdentifierResponse {
	parsed := assetid.Parse(identifier)
	if parsed == nil {
		return IdentifierResponse{Valid: false}
	}
	d := assetid.Describe(parsed)
	return IdentifierResponse{Valid: true, Description: &d}
}

// AvailabilityResponse catalog availability of one category
type AvailabilityResponse struct {
	CategoryID string `json:"category_id" example:"science"`
	Available  int64  `json:"available" example:"120"`
}
