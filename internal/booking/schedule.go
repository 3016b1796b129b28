package booking

import (
	"fmt"
	"time"
)

// Slot is one atomic reservation unit produced by splitting a
// requested time range. Every persisted reservation row covers
// exactly one slot.
type Slot struct {
	Start time.Time
	End   time.Time
}

// GenerateSlots partitions [start,end) into contiguous slots of
// duration d. The range is assumed to have passed schedule validation,
// so (end-start) divides evenly by d. The function is pure and
// deterministic; it returns slots in chronological order.
func GenerateSlots(start, end time.Time, d time.Duration) []Slot {
	steps := int(end.Sub(start) / d)
	slots := make([]Slot, 0, steps)
	for i := 0; i < steps; i++ {
		s := start.Add(time.Duration(i) * d)
		slots = append(slots, Slot{Start: s, End: s.Add(d)})
	}
	return slots
}

// ScheduleConfig captures the facility's business calendar: opening
// hours as "HH:MM" strings and the canonical slot duration. It is
// loaded once from the environment and shared by all validations.
type ScheduleConfig struct {
	WorkStart    string        // e.g. "10:00"
	WorkEnd      string        // e.g. "18:00"
	SlotDuration time.Duration // e.g. time.Hour
}

// Validate checks a requested [start,end) range against the business
// rules. Checks run in a fixed order and the first failure wins, which
// keeps error messages deterministic: the hour-boundary and duration
// checks only make sense once the ordering rules have passed.
//
// Order: no past start; within working hours; on-the-hour boundaries;
// end after start; duration a multiple of the slot duration.
func (c ScheduleConfig) Validate(now, start, end time.Time) error {
	workStart, err := minutesOfDay(c.WorkStart)
	if err != nil {
		return fmt.Errorf("invalid work start %q: %w", c.WorkStart, err)
	}
	workEnd, err := minutesOfDay(c.WorkEnd)
	if err != nil {
		return fmt.Errorf("invalid work end %q: %w", c.WorkEnd, err)
	}

	if start.Before(now) {
		return newError(KindValidation, "it is not possible to create a reservation in the past")
	}
	if timeOfDay(start) < workStart || timeOfDay(end) > workEnd {
		return newError(KindValidation, "reservations must be made during business hours: %s - %s", c.WorkStart, c.WorkEnd)
	}
	if start.Minute() != 0 || end.Minute() != 0 {
		return newError(KindValidation, "the start and end times must fall on a full hour (e.g. 08:00, 09:00)")
	}
	if !end.After(start) {
		return newError(KindValidation, "the end of the slot must be after its beginning")
	}
	if end.Sub(start)%c.SlotDuration != 0 {
		return newError(KindValidation, "the duration of the reservation must be a multiple of %dh", int(c.SlotDuration.Hours()))
	}
	return nil
}

// timeOfDay returns the minutes elapsed since local midnight.
func timeOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// minutesOfDay parses an "HH:MM" clock string into minutes since
// midnight.
func minutesOfDay(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
