package presentation

import (
	"sort"
	"strings"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

var weekDays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

type ScheduleDay struct {
	Day   string                `json:"day"`
	Slots []domain.ScheduleSlot `json:"slots"`
}

type ScheduleView struct {
	Days        []ScheduleDay         `json:"days"`
	OfficeHours []domain.ScheduleSlot `json:"officeHours,omitempty"`
	CanEdit     bool                  `json:"canEdit"`
}

func scheduleTab(p domain.Profile, ctx tabContext) any {
	var slots []domain.ScheduleSlot
	view := ScheduleView{CanEdit: ctx.isOwner}
	switch {
	case p.Student != nil:
		slots = p.Student.Schedule
	case p.Teacher != nil:
		slots = p.Teacher.Schedule
		view.OfficeHours = sortSlots(p.Teacher.OfficeHours)
	case p.Staff != nil:
		slots = p.Staff.Schedule
	}
	view.Days = groupByWeekDay(slots)
	return view
}

// groupByWeekDay buckets slots Monday to Sunday; days without slots are
// omitted and unrecognised day names trail the week.
func groupByWeekDay(slots []domain.ScheduleSlot) []ScheduleDay {
	buckets := map[string][]domain.ScheduleSlot{}
	var extra []string
	for _, s := range slots {
		day := normalizeDay(s.Day)
		if _, ok := buckets[day]; !ok && dayIndex(day) < 0 {
			extra = append(extra, day)
		}
		buckets[day] = append(buckets[day], s)
	}
	out := make([]ScheduleDay, 0, len(buckets))
	for _, day := range append(append([]string{}, weekDays...), extra...) {
		if items, ok := buckets[day]; ok {
			out = append(out, ScheduleDay{Day: day, Slots: sortSlots(items)})
		}
	}
	return out
}

func sortSlots(slots []domain.ScheduleSlot) []domain.ScheduleSlot {
	out := append([]domain.ScheduleSlot{}, slots...)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := dayIndex(normalizeDay(out[i].Day)), dayIndex(normalizeDay(out[j].Day))
		if di != dj {
			return di < dj
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

// normalizeDay maps "Mon", "monday" and "MONDAY" to the same key.
func normalizeDay(day string) string {
	day = strings.ToLower(strings.TrimSpace(day))
	if len(day) >= 3 {
		for _, d := range weekDays {
			if strings.HasPrefix(d, day) {
				return d
			}
		}
	}
	return day
}

func dayIndex(day string) int {
	for i, d := range weekDays {
		if d == day {
			return i
		}
	}
	return -1
}
