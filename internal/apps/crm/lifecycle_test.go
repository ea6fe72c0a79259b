package crm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		r    Reminder
		want bool
	}{
		{"exactly now", Reminder{Date: "2026-03-10", Time: "09:00:00"}, true},
		{"one second later", Reminder{Date: "2026-03-10", Time: "09:00:01"}, false},
		{"one second earlier", Reminder{Date: "2026-03-10", Time: "08:59:59"}, true},
		{"yesterday", Reminder{Date: "2026-03-09", Time: "23:00:00"}, true},
		{"tomorrow", Reminder{Date: "2026-03-11", Time: "00:00:00"}, false},
		{"short time", Reminder{Date: "2026-03-10", Time: "09:00"}, true},
		{"notified", Reminder{Date: "2026-03-09", Time: "09:00:00", Notified: true, Archived: true}, false},
		{"archived", Reminder{Date: "2026-03-09", Time: "09:00:00", Archived: true}, false},
		{"bad date", Reminder{Date: "10.03.2026", Time: "09:00:00"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDue(&tt.r, now, time.UTC))
		})
	}
}

func TestIsDueUsesLocation(t *testing.T) {
	kyiv := time.FixedZone("EET", 2*60*60)
	r := Reminder{Date: "2026-03-10", Time: "10:00:00"}

	// 10:00 EET is 08:00 UTC
	assert.True(t, IsDue(&r, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), kyiv))
	assert.False(t, IsDue(&r, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), time.UTC))
}

func TestStateOf(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, StatePending, StateOf(&Reminder{Date: "2026-03-11", Time: "09:00:00"}, now, time.UTC))
	assert.Equal(t, StateDue, StateOf(&Reminder{Date: "2026-03-10", Time: "09:00:00"}, now, time.UTC))
	assert.Equal(t, StateArchived, StateOf(&Reminder{Date: "2026-03-10", Time: "09:00:00", Archived: true}, now, time.UTC))
	assert.Equal(t, StateNotifiedArchived, StateOf(&Reminder{Date: "2026-03-10", Time: "09:00:00", Notified: true, Archived: true}, now, time.UTC))
}

func TestCombine(t *testing.T) {
	at, err := Combine("2026-03-10", "18:30", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC), at)

	_, err = Combine("2026-02-30", "18:30", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = Combine("2026-03-10", "25:00", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestNormalizeTime(t *testing.T) {
	got, err := normalizeTime("09:00")
	require.NoError(t, err)
	assert.Equal(t, "09:00:00", got)

	got, err = normalizeTime(" 18:45:30 ")
	require.NoError(t, err)
	assert.Equal(t, "18:45:30", got)

	_, err = normalizeTime("9am")
	assert.ErrorIs(t, err, ErrValidation)
}
