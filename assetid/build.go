package assetid

import (
	"fmt"
	"strings"

	"trivia-token-service/registry"
)

// BuildParams components of a standard identifier
type BuildParams struct {
	Tier         Tier
	CategoryCode string
	SeasonCode   string
	UniqueID     string
}

// Build assemble the standard identifier for params.
// Checks run in a fixed order: unique id, required fields, registry codes, length.
func Build(params BuildParams) (string, error) {
	if !isUniqueID(params.UniqueID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidUniqueID, params.UniqueID)
	}
	if !params.Tier.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTier, params.Tier)
	}

	if params.Tier.needsCategory() && params.CategoryCode == "" {
		return "", fmt.Errorf("%w: tier %s requires a category code", ErrMissingRequiredField, params.Tier)
	}
	if params.Tier.needsSeason() && params.SeasonCode == "" {
		return "", fmt.Errorf("%w: tier %s requires a season code", ErrMissingRequiredField, params.Tier)
	}

	var segments []string
	switch params.Tier {
	case TierCategory, TierCategoryUltimate:
		if !registry.IsCategoryCode(params.CategoryCode) {
			return "", &registry.RegistryError{Kind: registry.KindCategory, Value: params.CategoryCode}
		}
		segments = []string{Prefix, FormatVersion, params.CategoryCode, params.Tier.Keyword(), params.UniqueID}
	case TierMasterUltimate:
		segments = []string{Prefix, FormatVersion, KeywordMaster, params.UniqueID}
	case TierSeasonalUltimate:
		if !registry.IsSeasonCode(params.SeasonCode) {
			return "", &registry.RegistryError{Kind: registry.KindSeason, Value: params.SeasonCode}
		}
		segments = []string{Prefix, FormatVersion, KeywordSeasonal, params.SeasonCode, KeywordUltimate, params.UniqueID}
	}

	id := strings.Join(segments, separator)
	if len(id) > MaxLength {
		return "", fmt.Errorf("%w: %d bytes", ErrInvalidLength, len(id))
	}
	return id, nil
}

// isUniqueID exactly 8 lowercase hex characters
func isUniqueID(s string) bool {
	if len(s) != UniqueIDLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}
