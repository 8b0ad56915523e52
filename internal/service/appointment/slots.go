package appointment

import (
	"sort"
	"time"

	"github.com/jwalitptl/hospital-ops/internal/model"
)

// BuildSlotGrid derives the bookable slots of one doctor on one day.
//
// Every working range for the weekday of date yields floor(minutes/d) slots of
// exactly d minutes, starting at the range start; a trailing remainder shorter
// than d produces no slot. A slot overlapping any of the doctor's
// appointments that day is booked and references the earliest overlapping
// one. Otherwise a slot overlapping a break is blocked, else available.
// Cancelled appointments do not hold slots. appointments may include other
// doctors or days; they are ignored.
func BuildSlotGrid(schedule *model.DoctorSchedule, date time.Time, appointments []*model.Appointment) []model.Slot {
	slots := []model.Slot{}
	d := schedule.SlotDurationMinutes
	if d <= 0 {
		return slots
	}

	day := date.Format(model.DateLayout)
	booked := make([]*model.Appointment, 0, len(appointments))
	for _, a := range appointments {
		if a.DoctorID == schedule.DoctorID && a.Date == day && a.Status.OccupiesSlot() {
			booked = append(booked, a)
		}
	}
	sort.SliceStable(booked, func(i, j int) bool {
		return booked[i].StartTime < booked[j].StartTime
	})

	for _, r := range schedule.RangesFor(date.Weekday()) {
		n := r.Minutes() / d
		for i := 0; i < n; i++ {
			start := r.Start.Add(i * d)
			slot := model.Slot{Start: start, End: start.Add(d), State: model.SlotAvailable}
			span := model.TimeRange{Start: slot.Start, End: slot.End}

			if ref := firstOverlap(span, booked); ref != nil {
				slot.State = model.SlotBooked
				slot.AppointmentRef = ref.ID
			} else if overlapsAny(span, schedule.Breaks) {
				slot.State = model.SlotBlocked
			}
			slots = append(slots, slot)
		}
	}
	return slots
}

func firstOverlap(span model.TimeRange, sorted []*model.Appointment) *model.Appointment {
	for _, a := range sorted {
		if a.StartTime >= span.End {
			break
		}
		if span.Overlaps(a.Interval()) {
			return a
		}
	}
	return nil
}

func overlapsAny(span model.TimeRange, ranges []model.TimeRange) bool {
	for _, r := range ranges {
		if span.Overlaps(r) {
			return true
		}
	}
	return false
}
