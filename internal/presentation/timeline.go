package presentation

import (
	"sort"
	"time"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

const timelineDayLayout = "Jan 2, 2006"

type TimelineOptions struct {
	Filter   domain.ActivityType
	MaxItems int
	Expanded bool
	Now      time.Time
	Location *time.Location
	Dict     Dictionary
}

type TimelineItem struct {
	domain.ActivityItem
	Style domain.ActivityStyle `json:"style"`
}

type TimelineGroup struct {
	Day   string         `json:"day"`
	Label string         `json:"label"`
	Items []TimelineItem `json:"items"`
}

type TimelineView struct {
	Groups    []TimelineGroup `json:"groups"`
	Total     int             `json:"total"`
	Hidden    int             `json:"hidden"`
	CanExpand bool            `json:"canExpand"`
	Expanded  bool            `json:"expanded"`
}

// Timeline filters, sorts newest first and groups items by the calendar day
// they fall on in opts.Location. Items beyond MaxItems are hidden unless
// the view is expanded.
func Timeline(items []domain.ActivityItem, opts TimelineOptions) TimelineView {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	filtered := make([]domain.ActivityItem, 0, len(items))
	for _, item := range items {
		if opts.Filter != "" && opts.Filter != "all" && item.Type != opts.Filter {
			continue
		}
		filtered = append(filtered, item)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].OccurredAt.After(filtered[j].OccurredAt)
	})

	view := TimelineView{Total: len(filtered), Expanded: opts.Expanded}
	visible := filtered
	if opts.MaxItems > 0 && len(filtered) > opts.MaxItems {
		view.CanExpand = true
		if !opts.Expanded {
			visible = filtered[:opts.MaxItems]
			view.Hidden = len(filtered) - opts.MaxItems
		}
	}

	today := domain.DayKey(opts.Now, loc)
	yesterday := domain.DayKey(opts.Now.AddDate(0, 0, -1), loc)
	index := map[string]int{}
	for _, item := range visible {
		day := domain.DayKey(item.OccurredAt, loc)
		i, ok := index[day]
		if !ok {
			i = len(view.Groups)
			index[day] = i
			view.Groups = append(view.Groups, TimelineGroup{
				Day:   day,
				Label: dayLabel(day, item.OccurredAt.In(loc), today, yesterday, opts.Dict),
			})
		}
		view.Groups[i].Items = append(view.Groups[i].Items, TimelineItem{
			ActivityItem: item,
			Style:        domain.LookupActivityStyle(item.Type),
		})
	}
	sort.SliceStable(view.Groups, func(i, j int) bool {
		return view.Groups[i].Day > view.Groups[j].Day
	})
	return view
}

func dayLabel(day string, at time.Time, today, yesterday string, dict Dictionary) string {
	switch day {
	case today:
		return dict.T("timeline.today")
	case yesterday:
		return dict.T("timeline.yesterday")
	default:
		return at.Format(timelineDayLayout)
	}
}
