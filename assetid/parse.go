package assetid

// Parsed result of Parse: either Standard or Legacy
type Parsed interface {
	// String serialized identifier
	String() string
	// Keyword tier keyword (REG, ULT, MAST)
	Keyword() string
	parsed()
}

// Parse try the standard grammar, then the legacy one; nil when neither matches
func Parse(s string) Parsed {
	if std, ok := parseStandard(s); ok {
		return std
	}
	if legacy, ok := parseLegacy(s); ok {
		return legacy
	}
	return nil
}

// Validate s is a standard or legacy identifier
func Validate(s string) bool {
	return Parse(s) != nil
}

// Description flat projection of a parsed identifier
type Description struct {
	Identifier    string `json:"identifier"`
	Format        string `json:"format"` // standard/legacy
	Prefix        string `json:"prefix,omitempty"`
	FormatVersion string `json:"formatVersion,omitempty"`
	Tier          Tier   `json:"tier"`
	Keyword       string `json:"keyword"`
	CategoryCode  string `json:"categoryCode,omitempty"`
	SeasonCode    string `json:"seasonCode,omitempty"`
	UniqueID      string `json:"uniqueId"`
}

// Describe flatten p for display
func Describe(p Parsed) Description {
	switch v := p.(type) {
	case Standard:
		return Description{
			Identifier:    v.String(),
			Format:        "standard",
			Prefix:        v.Prefix,
			FormatVersion: v.FormatVersion,
			Tier:          v.Tier,
			Keyword:       v.Keyword(),
			CategoryCode:  v.CategoryCode,
			SeasonCode:    v.SeasonCode,
			UniqueID:      v.UniqueID,
		}
	case Legacy:
		return Description{
			Identifier: v.String(),
			Format:     "legacy",
			Tier:       TierCategory,
			Keyword:    v.Keyword(),
			UniqueID:   v.UniqueID,
		}
	}
	return Description{}
}

// TierOf tier of a parsed identifier; legacy identifiers are base category tokens
func TierOf(p Parsed) Tier {
	switch v := p.(type) {
	case Standard:
		return v.Tier
	case Legacy:
		return TierCategory
	}
	return ""
}
