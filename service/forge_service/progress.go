package forge_service

import (
	"context"

	"trivia-token-service/assetid"
	model "trivia-token-service/models"
	"trivia-token-service/registry"
)

// ProgressEntry how close an owner is to one forge
type ProgressEntry struct {
	Type       model.ForgeType `json:"type"`
	CategoryID string          `json:"categoryId,omitempty"`
	SeasonID   string          `json:"seasonId,omitempty"`
	Required   int             `json:"required"`
	Current    int             `json:"current"`
	CanForge   bool            `json:"canForge"`
}

// Progress one entry per category ultimate, then master, then seasonal. Only held base tokens count.
func (s *ForgeService) Progress(ctx context.Context, ownerKey string) ([]ProgressEntry, error) {
	if ownerKey == "" {
		return nil, ErrInvalidOwner
	}
	held, err := s.ownershipDAO.ListHeldByOwner(ownerKey)
	if err != nil {
		return nil, err
	}

	season, seasonOpen := s.seasons.ForgeableSeason(s.opts.Now())
	perCategory := make(map[string]int, registry.CategoryCount)
	perSeason := make(map[string]int, registry.CategoryCount)
	for _, r := range held {
		if r.Tier != string(assetid.TierCategory) {
			continue
		}
		perCategory[r.CategoryID]++
		if seasonOpen && r.SeasonID == season {
			perSeason[r.CategoryID]++
		}
	}

	categories := registry.Categories()
	entries := make([]ProgressEntry, 0, len(categories)+2)
	required := Required(model.ForgeCategoryUltimate)
	for _, c := range categories {
		n := perCategory[c.Slug]
		entries = append(entries, ProgressEntry{
			Type:       model.ForgeCategoryUltimate,
			CategoryID: c.Slug,
			Required:   required,
			Current:    n,
			CanForge:   n >= required,
		})
	}

	distinct, seasonal := 0, 0
	for _, c := range categories {
		if perCategory[c.Slug] > 0 {
			distinct++
		}
		seasonal += min(perSeason[c.Slug], 2)
	}
	entries = append(entries, ProgressEntry{
		Type:     model.ForgeMasterUltimate,
		Required: Required(model.ForgeMasterUltimate),
		Current:  distinct,
		CanForge: distinct == Required(model.ForgeMasterUltimate),
	})
	entries = append(entries, ProgressEntry{
		Type:     model.ForgeSeasonalUltimate,
		SeasonID: season,
		Required: Required(model.ForgeSeasonalUltimate),
		Current:  seasonal,
		CanForge: seasonOpen && seasonal == Required(model.ForgeSeasonalUltimate),
	})
	return entries, nil
}
