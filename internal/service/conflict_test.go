package service

import (
	"testing"
	"time"

	"github.com/daniyal-sudo/heraklean-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func slotAt(clock string) time.Time {
	t, err := domain.ParseSlot("2026-09-15", clock)
	if err != nil {
		panic(err)
	}
	return t
}

func TestConflictChecker(t *testing.T) {
	existing := []domain.Meeting{
		{StartsAt: slotAt("2:00 PM")},
	}

	checker := newConflictChecker(time.Hour)

	tests := []struct {
		name     string
		proposed string
		conflict bool
	}{
		{"same slot", "2:00 PM", true},
		{"thirty minutes after", "2:30 PM", true},
		{"thirty minutes before", "1:30 PM", true},
		{"exactly one hour after is still blocked", "3:00 PM", true},
		{"exactly one hour before is still blocked", "1:00 PM", true},
		{"just outside the window", "3:01 PM", false},
		{"two hours after", "4:00 PM", false},
		{"two hours before", "12:00 PM", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checker.hasConflict(existing, slotAt(tt.proposed))
			assert.Equal(t, tt.conflict, got)
		})
	}
}

func TestConflictCheckerMultipleBookings(t *testing.T) {
	existing := []domain.Meeting{
		{StartsAt: slotAt("9:00 AM")},
		{StartsAt: slotAt("1:00 PM")},
	}
	checker := newConflictChecker(time.Hour)

	assert.True(t, checker.hasConflict(existing, slotAt("9:45 AM")))
	assert.True(t, checker.hasConflict(existing, slotAt("12:15 PM")))
	assert.False(t, checker.hasConflict(existing, slotAt("11:00 AM")))
}

func TestConflictCheckerCustomWindow(t *testing.T) {
	existing := []domain.Meeting{
		{StartsAt: slotAt("2:00 PM")},
	}
	checker := newConflictChecker(30 * time.Minute)

	assert.True(t, checker.hasConflict(existing, slotAt("2:30 PM")))
	assert.False(t, checker.hasConflict(existing, slotAt("2:31 PM")))
	assert.False(t, checker.hasConflict(existing, slotAt("3:00 PM")))
}

func TestConflictCheckerDefaultsWindow(t *testing.T) {
	checker := newConflictChecker(0)
	assert.Equal(t, time.Hour, checker.window)

	checker = newConflictChecker(-5 * time.Minute)
	assert.Equal(t, time.Hour, checker.window)
}

func TestConflictCheckerNoBookings(t *testing.T) {
	checker := newConflictChecker(time.Hour)
	assert.False(t, checker.hasConflict(nil, slotAt("2:00 PM")))
}
