package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlot(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		clock   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "afternoon slot",
			date:  "2026-09-15",
			clock: "2:00 PM",
			want:  time.Date(2026, 9, 15, 14, 0, 0, 0, time.UTC),
		},
		{
			name:  "morning slot",
			date:  "2026-09-15",
			clock: "9:30 AM",
			want:  time.Date(2026, 9, 15, 9, 30, 0, 0, time.UTC),
		},
		{
			name:  "lowercase marker accepted",
			date:  "2026-09-15",
			clock: "2:00 pm",
			want:  time.Date(2026, 9, 15, 14, 0, 0, 0, time.UTC),
		},
		{
			name:  "surrounding whitespace trimmed",
			date:  "2026-09-15",
			clock: " 11:00 AM ",
			want:  time.Date(2026, 9, 15, 11, 0, 0, 0, time.UTC),
		},
		{
			name:  "noon",
			date:  "2026-01-01",
			clock: "12:00 PM",
			want:  time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			name:  "midnight",
			date:  "2026-01-01",
			clock: "12:00 AM",
			want:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{name: "empty date", date: "", clock: "2:00 PM", wantErr: true},
		{name: "empty time", date: "2026-09-15", clock: "", wantErr: true},
		{name: "24-hour clock rejected", date: "2026-09-15", clock: "14:00", wantErr: true},
		{name: "bad date format", date: "15/09/2026", clock: "2:00 PM", wantErr: true},
		{name: "nonsense time", date: "2026-09-15", clock: "2 o'clock", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSlot(tt.date, tt.clock)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidSlot)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestMeetingSummary(t *testing.T) {
	m := &Meeting{
		Date:         "2026-09-15",
		Time:         "2:00 PM",
		Status:       MeetingPending,
		TrainingType: "strength",
		IsRecurring:  true,
		CreatedBy:    RoleClient,
		Description:  "leg day",
	}

	s := m.Summary()
	assert.Equal(t, m.ID, s.MeetingID)
	assert.Equal(t, m.Date, s.Date)
	assert.Equal(t, m.Time, s.Time)
	assert.Equal(t, MeetingPending, s.Status)
	assert.Equal(t, "strength", s.TrainingType)
	assert.True(t, s.IsRecurring)
	assert.Equal(t, RoleClient, s.CreatedBy)
	assert.Equal(t, "leg day", s.Description)
}
