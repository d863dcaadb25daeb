package registry

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MaxSeasonNumber upper bound of a season number, keeps the seasonal identifier inside 32 bytes
const MaxSeasonNumber = 9999

var (
	seasonToPrefix = map[string]string{
		"winter": "WI",
		"spring": "SP",
		"summer": "SU",
		"fall":   "FA",
	}
	prefixToSeason = map[string]string{
		"WI": "winter",
		"SP": "spring",
		"SU": "summer",
		"FA": "fall",
	}
)

// SeasonInfo parsed season code
type SeasonInfo struct {
	Season       string `json:"season"`
	SeasonNumber int    `json:"seasonNumber"`
	Name         string `json:"name"`
}

// SeasonCode encode a season type and number, e.g. ("winter", 1) -> "WI1"
func SeasonCode(season string, number int) (string, error) {
	prefix, ok := seasonToPrefix[season]
	if !ok || number < 1 || number > MaxSeasonNumber {
		return "", &RegistryError{Kind: KindSeason, Value: fmt.Sprintf("%s/%d", season, number)}
	}
	return prefix + strconv.Itoa(number), nil
}

// ParseSeasonCode decode a season code, e.g. "WI1" -> {winter, 1, "Winter Season 1"}
func ParseSeasonCode(code string) (SeasonInfo, error) {
	unknown := &RegistryError{Kind: KindSeason, Value: code}
	if len(code) < 3 {
		return SeasonInfo{}, unknown
	}

	season, ok := prefixToSeason[code[:2]]
	if !ok {
		return SeasonInfo{}, unknown
	}

	digits := code[2:]
	// canonical form only: no sign, no leading zero
	if digits[0] == '0' || strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return SeasonInfo{}, unknown
	}
	number, err := strconv.Atoi(digits)
	if err != nil || number < 1 || number > MaxSeasonNumber {
		return SeasonInfo{}, unknown
	}

	return SeasonInfo{
		Season:       season,
		SeasonNumber: number,
		Name:         seasonName(season, number),
	}, nil
}

// IsSeasonCode report whether code is a well-formed registered season code
func IsSeasonCode(code string) bool {
	_, err := ParseSeasonCode(code)
	return err == nil
}

func seasonName(season string, number int) string {
	return strings.ToUpper(season[:1]) + season[1:] + " Season " + strconv.Itoa(number)
}

// SeasonWindow configured time window of one season
type SeasonWindow struct {
	Code     string
	StartsAt time.Time
	EndsAt   time.Time
}

// SeasonCalendar answers which season is open at a given time
type SeasonCalendar struct {
	windows []SeasonWindow
	grace   time.Duration
}

// NewSeasonCalendar build a calendar; every window must carry a valid season code and a positive span
func NewSeasonCalendar(windows []SeasonWindow, grace time.Duration) (*SeasonCalendar, error) {
	sorted := make([]SeasonWindow, len(windows))
	copy(sorted, windows)
	for _, w := range sorted {
		if _, err := ParseSeasonCode(w.Code); err != nil {
			return nil, err
		}
		if !w.EndsAt.After(w.StartsAt) {
			return nil, fmt.Errorf("registry: season %s ends before it starts", w.Code)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartsAt.Before(sorted[j].StartsAt)
	})
	return &SeasonCalendar{windows: sorted, grace: grace}, nil
}

// OpenSeason the season running at now, ignoring grace periods
func (c *SeasonCalendar) OpenSeason(now time.Time) (string, bool) {
	if c == nil {
		return "", false
	}
	for i := len(c.windows) - 1; i >= 0; i-- {
		w := c.windows[i]
		if !now.Before(w.StartsAt) && now.Before(w.EndsAt) {
			return w.Code, true
		}
	}
	return "", false
}

// AcceptsSeason report whether records of season code can still be forged at now
// (season open, or closed less than the grace period ago)
func (c *SeasonCalendar) AcceptsSeason(code string, now time.Time) bool {
	if c == nil {
		return false
	}
	for _, w := range c.windows {
		if w.Code != code {
			continue
		}
		if !now.Before(w.StartsAt) && now.Before(w.EndsAt.Add(c.grace)) {
			return true
		}
	}
	return false
}

// ForgeableSeason the season seasonal forging targets at now: the open season,
// otherwise the most recent one still inside its grace period
func (c *SeasonCalendar) ForgeableSeason(now time.Time) (string, bool) {
	if code, ok := c.OpenSeason(now); ok {
		return code, true
	}
	if c == nil {
		return "", false
	}
	for i := len(c.windows) - 1; i >= 0; i-- {
		if c.AcceptsSeason(c.windows[i].Code, now) {
			return c.windows[i].Code, true
		}
	}
	return "", false
}
