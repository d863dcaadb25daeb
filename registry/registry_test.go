package registry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryBijection(t *testing.T) {
	require.Len(t, Categories(), CategoryCount)

	for _, c := range Categories() {
		code, err := CategoryCode(c.Slug)
		require.NoError(t, err)
		slug, err := CategorySlug(code)
		require.NoError(t, err)
		assert.Equal(t, c.Slug, slug)

		back, err := CategoryCode(slug)
		require.NoError(t, err)
		assert.Equal(t, code, back)

		assert.GreaterOrEqual(t, len(code), 3)
		assert.LessOrEqual(t, len(code), 5)
		assert.Regexp(t, `^[A-Z]+$`, code)
	}
}

func TestCategoryUnknown(t *testing.T) {
	_, err := CategoryCode("cooking")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownCode))

	var regErr *RegistryError
	require.True(t, errors.As(err, &regErr))
	assert.Equal(t, KindCategory, regErr.Kind)

	_, err = CategorySlug("sci")
	assert.ErrorIs(t, err, ErrUnknownCode)
	_, err = CategorySlug("")
	assert.ErrorIs(t, err, ErrUnknownCode)
}

func TestSeasonCodeScenario(t *testing.T) {
	code, err := SeasonCode("winter", 1)
	require.NoError(t, err)
	assert.Equal(t, "WI1", code)

	info, err := ParseSeasonCode("WI1")
	require.NoError(t, err)
	assert.Equal(t, SeasonInfo{Season: "winter", SeasonNumber: 1, Name: "Winter Season 1"}, info)
}

func TestSeasonBijection(t *testing.T) {
	for _, season := range []string{"winter", "spring", "summer", "fall"} {
		for _, n := range []int{1, 2, 10, 99, MaxSeasonNumber} {
			code, err := SeasonCode(season, n)
			require.NoError(t, err)

			info, err := ParseSeasonCode(code)
			require.NoError(t, err)
			assert.Equal(t, season, info.Season)
			assert.Equal(t, n, info.SeasonNumber)

			again, err := SeasonCode(info.Season, info.SeasonNumber)
			require.NoError(t, err)
			assert.Equal(t, code, again)
		}
	}
}

func TestSeasonUnknown(t *testing.T) {
	_, err := SeasonCode("monsoon", 1)
	assert.ErrorIs(t, err, ErrUnknownCode)
	_, err = SeasonCode("winter", 0)
	assert.ErrorIs(t, err, ErrUnknownCode)
	_, err = SeasonCode("winter", MaxSeasonNumber+1)
	assert.ErrorIs(t, err, ErrUnknownCode)

	for _, code := range []string{"", "WI", "WI0", "WI01", "XX1", "wi1", "WI-1", "WI1a", "WI10000"} {
		_, err := ParseSeasonCode(code)
		assert.ErrorIs(t, err, ErrUnknownCode, code)
	}
}

func TestSeasonCalendar(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cal, err := NewSeasonCalendar([]SeasonWindow{
		{Code: "SP1", StartsAt: start.AddDate(0, 3, 0), EndsAt: start.AddDate(0, 6, 0)},
		{Code: "WI1", StartsAt: start, EndsAt: start.AddDate(0, 3, 0)},
	}, 48*time.Hour)
	require.NoError(t, err)

	code, ok := cal.OpenSeason(start.AddDate(0, 1, 0))
	require.True(t, ok)
	assert.Equal(t, "WI1", code)

	// one day into SP1, WI1 still inside its grace period
	now := start.AddDate(0, 3, 1)
	code, ok = cal.OpenSeason(now)
	require.True(t, ok)
	assert.Equal(t, "SP1", code)
	assert.True(t, cal.AcceptsSeason("WI1", now))
	assert.False(t, cal.AcceptsSeason("WI1", start.AddDate(0, 3, 3)))

	// after the last season, only the grace period remains
	after := start.AddDate(0, 6, 0).Add(time.Hour)
	_, ok = cal.OpenSeason(after)
	assert.False(t, ok)
	code, ok = cal.ForgeableSeason(after)
	require.True(t, ok)
	assert.Equal(t, "SP1", code)

	_, ok = cal.ForgeableSeason(start.AddDate(1, 0, 0))
	assert.False(t, ok)
}

func TestSeasonCalendarRejectsBadWindows(t *testing.T) {
	now := time.Now()
	_, err := NewSeasonCalendar([]SeasonWindow{{Code: "XX1", StartsAt: now, EndsAt: now.Add(time.Hour)}}, 0)
	assert.ErrorIs(t, err, ErrUnknownCode)

	_, err = NewSeasonCalendar([]SeasonWindow{{Code: "WI1", StartsAt: now, EndsAt: now}}, 0)
	assert.Error(t, err)
}
