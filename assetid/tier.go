package assetid

// Tier rarity class of a token
type Tier string

const (
	TierCategory         Tier = "category"
	TierCategoryUltimate Tier = "category_ultimate"
	TierMasterUltimate   Tier = "master_ultimate"
	TierSeasonalUltimate Tier = "seasonal_ultimate"
)

// Grammar constants
const (
	Prefix        = "TNFT"
	FormatVersion = "V1"
	MaxLength     = 32
	UniqueIDLen   = 8

	KeywordRegular  = "REG"
	KeywordUltimate = "ULT"
	KeywordMaster   = "MAST"
	KeywordSeasonal = "SEAS"

	separator = "_"
)

// Valid report whether t is a known tier
func (t Tier) Valid() bool {
	switch t {
	case TierCategory, TierCategoryUltimate, TierMasterUltimate, TierSeasonalUltimate:
		return true
	}
	return false
}

// Keyword tier keyword carried in the identifier
func (t Tier) Keyword() string {
	switch t {
	case TierCategory:
		return KeywordRegular
	case TierMasterUltimate:
		return KeywordMaster
	case TierCategoryUltimate, TierSeasonalUltimate:
		return KeywordUltimate
	}
	return ""
}

func (t Tier) needsCategory() bool {
	return t == TierCategory || t == TierCategoryUltimate
}

func (t Tier) needsSeason() bool {
	return t == TierSeasonalUltimate
}
