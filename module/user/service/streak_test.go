package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	usermodel "snapcap/module/user/model"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestNextStreakSameDayNoop(t *testing.T) {
	s := usermodel.Streak{Count: 5, LastActiveDay: "2026-08-28"}
	got, changed := NextStreak(s, day("2026-08-28"))
	assert.False(t, changed)
	assert.Equal(t, s, got)
}

func TestNextStreakConsecutiveDayIncrements(t *testing.T) {
	s := usermodel.Streak{Count: 5, LastActiveDay: "2026-08-27"}
	got, changed := NextStreak(s, day("2026-08-28"))
	assert.True(t, changed)
	assert.Equal(t, 6, got.Count)
	assert.Equal(t, "2026-08-28", got.LastActiveDay)
}

func TestNextStreakGapResets(t *testing.T) {
	s := usermodel.Streak{Count: 5, LastActiveDay: "2026-08-20"}
	got, changed := NextStreak(s, day("2026-08-28"))
	assert.True(t, changed)
	assert.Equal(t, 1, got.Count)
}

func TestNextStreakFirstLogin(t *testing.T) {
	got, changed := NextStreak(usermodel.Streak{}, day("2026-08-28"))
	assert.True(t, changed)
	assert.Equal(t, 1, got.Count)
}
