package assetid

// Legacy identifier minted before the TNFT grammar existed
type Legacy struct {
	UniqueID string
}

func (Legacy) parsed() {}

// Keyword legacy tokens are regular tokens
func (Legacy) Keyword() string {
	return KeywordRegular
}

func (l Legacy) String() string {
	return l.UniqueID
}

const (
	legacyMinLen = 5
	legacyMaxLen = 64
)

// parseLegacy accepts [a-z0-9-]{5,64}
func parseLegacy(s string) (Legacy, bool) {
	if len(s) < legacyMinLen || len(s) > legacyMaxLen {
		return Legacy{}, false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' {
			continue
		}
		return Legacy{}, false
	}
	return Legacy{UniqueID: s}, true
}
