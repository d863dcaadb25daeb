package assetid

import (
	"strings"

	"trivia-token-service/registry"
)

// Standard identifier following the TNFT_V1 grammar
type Standard struct {
	Prefix        string
	FormatVersion string
	Tier          Tier
	CategoryCode  string
	SeasonCode    string
	UniqueID      string
}

func (Standard) parsed() {}

// Keyword tier keyword
func (s Standard) Keyword() string {
	return s.Tier.Keyword()
}

// String rebuild the serialized form
func (s Standard) String() string {
	id, err := Build(BuildParams{
		Tier:         s.Tier,
		CategoryCode: s.CategoryCode,
		SeasonCode:   s.SeasonCode,
		UniqueID:     s.UniqueID,
	})
	if err != nil {
		return ""
	}
	return id
}

// Params the build parameters s was produced from
func (s Standard) Params() BuildParams {
	return BuildParams{
		Tier:         s.Tier,
		CategoryCode: s.CategoryCode,
		SeasonCode:   s.SeasonCode,
		UniqueID:     s.UniqueID,
	}
}

func parseStandard(s string) (Standard, bool) {
	if len(s) > MaxLength {
		return Standard{}, false
	}

	parts := strings.Split(s, separator)
	if len(parts) < 4 || parts[0] != Prefix || parts[1] != FormatVersion {
		return Standard{}, false
	}

	out := Standard{Prefix: Prefix, FormatVersion: FormatVersion}
	switch len(parts) {
	case 4:
		// TNFT_V1_MAST_{id}
		if parts[2] != KeywordMaster {
			return Standard{}, false
		}
		out.Tier = TierMasterUltimate
	case 5:
		// TNFT_V1_{cat}_{REG|ULT}_{id}
		if !registry.IsCategoryCode(parts[2]) {
			return Standard{}, false
		}
		switch parts[3] {
		case KeywordRegular:
			out.Tier = TierCategory
		case KeywordUltimate:
			out.Tier = TierCategoryUltimate
		default:
			return Standard{}, false
		}
		out.CategoryCode = parts[2]
	case 6:
		// TNFT_V1_SEAS_{season}_ULT_{id}
		if parts[2] != KeywordSeasonal || parts[4] != KeywordUltimate {
			return Standard{}, false
		}
		if !registry.IsSeasonCode(parts[3]) {
			return Standard{}, false
		}
		out.Tier = TierSeasonalUltimate
		out.SeasonCode = parts[3]
	default:
		return Standard{}, false
	}

	out.UniqueID = parts[len(parts)-1]
	if !isUniqueID(out.UniqueID) {
		return Standard{}, false
	}
	return out, true
}
