package forge_service

import (
	"fmt"
	"sort"
	"strings"

	"trivia-token-service/assetid"
	model "trivia-token-service/models"
	"trivia-token-service/registry"
)

// Rule names one reason a forge request was refused
type Rule string

const (
	RuleCountMismatch     Rule = "count_mismatch"
	RuleTierMismatch      Rule = "tier_mismatch"
	RuleCategoryMismatch  Rule = "category_mismatch"
	RuleMissingCategory   Rule = "missing_category"
	RuleDuplicateCategory Rule = "duplicate_category"
	RuleSeasonMismatch    Rule = "season_mismatch"
	RuleNoOpenSeason      Rule = "no_open_season"
	RuleNotOwned          Rule = "not_owned"
	RuleNotHeld           Rule = "not_held"
	RuleUnknownIdentifier Rule = "unknown_identifier"
	RuleDuplicateInput    Rule = "duplicate_input"
	RuleRecordInUse       Rule = "record_in_use"
)

// ValidationError forge request refused before anything was submitted
type ValidationError struct {
	Rule   Rule
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("forge validation failed (%s): %s", e.Rule, e.Detail)
}

func invalid(rule Rule, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Rule: rule, Detail: fmt.Sprintf(format, args...)}
}

// Required number of input records per forge type
func Required(t model.ForgeType) int {
	switch t {
	case model.ForgeCategoryUltimate, model.ForgeMasterUltimate:
		return registry.CategoryCount
	case model.ForgeSeasonalUltimate:
		return 2 * registry.CategoryCount
	}
	return 0
}

// plan what a validated request will burn and produce
type plan struct {
	categoryID string
	seasonID   string
	output     assetid.BuildParams
}

// checkInputs shape checks that need no store access
func checkInputs(t model.ForgeType, identifiers []string) error {
	seen := make(map[string]bool, len(identifiers))
	for _, id := range identifiers {
		if seen[id] {
			return invalid(RuleDuplicateInput, "%s listed more than once", id)
		}
		seen[id] = true
	}
	if want := Required(t); len(identifiers) != want {
		return invalid(RuleCountMismatch, "%s needs %d tokens, got %d", t, want, len(identifiers))
	}
	return nil
}

// checkRecord one input must exist, belong to owner, be held and be a base token
func checkRecord(id, ownerKey string, r *model.OwnershipRecord) error {
	switch {
	case r == nil:
		return invalid(RuleUnknownIdentifier, "%s is not a known token", id)
	case r.OwnerKey != ownerKey:
		return invalid(RuleNotOwned, "%s is not owned by the caller", id)
	case r.Status == model.OwnershipLocked:
		return invalid(RuleRecordInUse, "%s is locked by forge %s", id, r.ForgeID)
	case r.Status != model.OwnershipHeld:
		return invalid(RuleNotHeld, "%s is %s", id, r.Status)
	case r.Tier != string(assetid.TierCategory):
		return invalid(RuleTierMismatch, "%s has tier %s, only category tokens can be forged", id, r.Tier)
	}
	return nil
}

// countByCategory held records per category slug
func countByCategory(records []*model.OwnershipRecord) map[string]int {
	counts := make(map[string]int, registry.CategoryCount)
	for _, r := range records {
		counts[r.CategoryID]++
	}
	return counts
}

// checkComposition type specific rules over records that already passed checkRecord
func checkComposition(t model.ForgeType, requestedCategory string, records []*model.OwnershipRecord, forgeable func(seasonID string) bool) (plan, error) {
	for _, r := range records {
		if !registry.IsCategorySlug(r.CategoryID) {
			return plan{}, invalid(RuleCategoryMismatch, "%s carries unregistered category %q", r.AssetIdentifier, r.CategoryID)
		}
	}

	switch t {
	case model.ForgeCategoryUltimate:
		category := records[0].CategoryID
		for _, r := range records[1:] {
			if r.CategoryID != category {
				return plan{}, invalid(RuleCategoryMismatch, "tokens span %s and %s", category, r.CategoryID)
			}
		}
		if requestedCategory != "" && requestedCategory != category {
			return plan{}, invalid(RuleCategoryMismatch, "tokens are %s, requested %s", category, requestedCategory)
		}
		code, _ := registry.CategoryCode(category)
		return plan{
			categoryID: category,
			output:     assetid.BuildParams{Tier: assetid.TierCategoryUltimate, CategoryCode: code},
		}, nil

	case model.ForgeMasterUltimate:
		if err := checkPerCategory(countByCategory(records), 1); err != nil {
			return plan{}, err
		}
		return plan{output: assetid.BuildParams{Tier: assetid.TierMasterUltimate}}, nil

	case model.ForgeSeasonalUltimate:
		season := records[0].SeasonID
		for _, r := range records[1:] {
			if r.SeasonID != season {
				return plan{}, invalid(RuleSeasonMismatch, "tokens span seasons %q and %q", season, r.SeasonID)
			}
		}
		if season == "" || !forgeable(season) {
			return plan{}, invalid(RuleSeasonMismatch, "season %q is not open for forging", season)
		}
		if err := checkPerCategory(countByCategory(records), 2); err != nil {
			return plan{}, err
		}
		return plan{
			seasonID: season,
			output:   assetid.BuildParams{Tier: assetid.TierSeasonalUltimate, SeasonCode: season},
		}, nil
	}
	return plan{}, fmt.Errorf("unknown forge type %q", t)
}

// checkPerCategory every registered category exactly want times
func checkPerCategory(counts map[string]int, want int) error {
	var over, under []string
	for _, c := range registry.Categories() {
		switch n := counts[c.Slug]; {
		case n > want:
			over = append(over, c.Slug)
		case n < want:
			under = append(under, c.Slug)
		}
	}
	if len(over) > 0 {
		sort.Strings(over)
		return invalid(RuleDuplicateCategory, "more than %d of %s", want, strings.Join(over, ","))
	}
	if len(under) > 0 {
		sort.Strings(under)
		return invalid(RuleMissingCategory, "fewer than %d of %s", want, strings.Join(under, ","))
	}
	return nil
}
