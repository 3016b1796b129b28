package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(hour, min int) time.Time {
	return time.Date(2025, 5, 12, hour, min, 0, 0, time.UTC)
}

func TestGenerateSlotsPartitionsRange(t *testing.T) {
	slots := GenerateSlots(day(10, 0), day(13, 0), time.Hour)
	require.Len(t, slots, 3)
	for i, s := range slots {
		assert.Equal(t, day(10+i, 0), s.Start)
		assert.Equal(t, day(11+i, 0), s.End)
	}
}

func TestGenerateSlotsSingle(t *testing.T) {
	slots := GenerateSlots(day(10, 0), day(12, 0), 2*time.Hour)
	require.Len(t, slots, 1)
	assert.Equal(t, day(10, 0), slots[0].Start)
	assert.Equal(t, day(12, 0), slots[0].End)
}

func TestGenerateSlotsEmptyRange(t *testing.T) {
	assert.Empty(t, GenerateSlots(day(10, 0), day(10, 0), time.Hour))
}

func TestScheduleValidate(t *testing.T) {
	cfg := ScheduleConfig{WorkStart: "08:00", WorkEnd: "22:00", SlotDuration: time.Hour}
	now := day(9, 0)

	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantMsg string
	}{
		{"valid", day(10, 0), day(12, 0), ""},
		{"valid at opening", day(9, 0), day(10, 0), ""},
		{"past start", day(8, 0), day(10, 0), "in the past"},
		{"before opening", day(7, 0).AddDate(0, 0, 1), day(10, 0).AddDate(0, 0, 1), "business hours"},
		{"past closing", day(21, 0), day(23, 0), "business hours"},
		{"not on the hour", day(10, 30), day(12, 30), "full hour"},
		{"end equals start", day(10, 0), day(10, 0), "after its beginning"},
		{"end before start", day(12, 0), day(10, 0), "after its beginning"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cfg.Validate(now, tt.start, tt.end)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestScheduleValidateSlotMultiple(t *testing.T) {
	cfg := ScheduleConfig{WorkStart: "08:00", WorkEnd: "22:00", SlotDuration: 2 * time.Hour}
	err := cfg.Validate(day(9, 0), day(10, 0), day(13, 0))
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, err.Error(), "multiple of 2h")
}

// The past check runs before the hour-boundary check, so a request
// that violates both reports the past error.
func TestScheduleValidateOrder(t *testing.T) {
	cfg := ScheduleConfig{WorkStart: "08:00", WorkEnd: "22:00", SlotDuration: time.Hour}
	err := cfg.Validate(day(9, 0), day(8, 30), day(10, 30))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in the past")
}
