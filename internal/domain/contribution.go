package domain

import "time"

const ContributionWindowDays = 365

const dayLayout = "2006-01-02"

type ContributionDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

type ContributionData struct {
	Year          int               `json:"year"`
	Total         int               `json:"total"`
	CurrentStreak int               `json:"currentStreak"`
	LongestStreak int               `json:"longestStreak"`
	Days          []ContributionDay `json:"days"`
}

// ContributionLevel buckets a daily count into the 0-4 heatmap scale.
func ContributionLevel(count int) int {
	switch {
	case count <= 0:
		return 0
	case count <= 2:
		return 1
	case count <= 5:
		return 2
	case count <= 9:
		return 3
	default:
		return 4
	}
}

// DayKey formats t as the calendar day it falls on in loc.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(dayLayout)
}

// ContributionWindow returns the first and last calendar day of the
// 365-day window. Year 0 or the year of now gives the rolling window ending
// today; any other year ends on its December 31st.
func ContributionWindow(year int, now time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	end := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	if year > 0 && year != local.Year() {
		end = time.Date(year, time.December, 31, 0, 0, 0, 0, loc)
	}
	start := end.AddDate(0, 0, -(ContributionWindowDays - 1))
	return start, end
}

// BuildContributionData lays counts keyed by DayKey onto the window,
// oldest day first.
func BuildContributionData(year int, counts map[string]int, now time.Time, loc *time.Location) ContributionData {
	start, end := ContributionWindow(year, now, loc)
	days := make([]ContributionDay, 0, ContributionWindowDays)
	total := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(dayLayout)
		c := counts[key]
		total += c
		days = append(days, ContributionDay{Date: key, Count: c, Level: ContributionLevel(c)})
	}
	current, longest := contributionStreaks(days)
	if year <= 0 {
		year = end.Year()
	}
	return ContributionData{
		Year:          year,
		Total:         total,
		CurrentStreak: current,
		LongestStreak: longest,
		Days:          days,
	}
}

func contributionStreaks(days []ContributionDay) (int, int) {
	longest, run := 0, 0
	for _, d := range days {
		if d.Count > 0 {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	current := 0
	for i := len(days) - 1; i >= 0; i-- {
		if days[i].Count == 0 {
			// an empty today does not break a streak that ended yesterday
			if i == len(days)-1 {
				continue
			}
			break
		}
		current++
	}
	return current, longest
}
