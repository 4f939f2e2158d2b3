package domain

import (
	"math"
	"time"
)

// AverageGPA is sum(currentGPA)/count with 0/1 standing in when there are
// no children, so the result is 0 rather than NaN.
func AverageGPA(children []ChildSummary) float64 {
	sum, count := 0.0, 1.0
	if len(children) > 0 {
		count = float64(len(children))
		for _, c := range children {
			sum += c.CurrentGPA
		}
	}
	return sum / count
}

// PaymentProgress is totalPaid/totalFeesDue*100 with the denominator
// floored at 1.
func PaymentProgress(totalPaid, totalFeesDue float64) float64 {
	return totalPaid / math.Max(totalFeesDue, 1) * 100
}

// AttendanceRate is present/recorded*100. With no records the rate is 100.
func AttendanceRate(records []AttendanceRecord) float64 {
	if len(records) == 0 {
		return 100
	}
	present := 0
	for _, r := range records {
		if r.Status == AttendancePresent {
			present++
		}
	}
	return float64(present) / float64(len(records)) * 100
}

type FeeTotals struct {
	Due         float64 `json:"totalDue"`
	Paid        float64 `json:"totalPaid"`
	Outstanding float64 `json:"outstanding"`
	Overdue     float64 `json:"overdue"`
	OverdueFees int     `json:"overdueCount"`
}

// SumFees reduces a fee list; a fee is overdue when its due date is before
// now and it still has a balance.
func SumFees(fees []FeeItem, now time.Time) FeeTotals {
	var out FeeTotals
	for _, f := range fees {
		out.Due += f.Amount
		out.Paid += f.Paid
		balance := f.Amount - f.Paid
		if balance <= 0 {
			continue
		}
		out.Outstanding += balance
		if f.DueDate.Before(now) {
			out.Overdue += balance
			out.OverdueFees++
		}
	}
	return out
}

// FeeStatus classifies one fee relative to now.
func FeeStatus(f FeeItem, now time.Time) string {
	switch {
	case f.Paid >= f.Amount:
		return "paid"
	case f.DueDate.Before(now):
		return "overdue"
	case f.Paid > 0:
		return "partial"
	default:
		return "unpaid"
	}
}

// NextStreak advances a daily activity streak for an event at `at`.
func NextStreak(lastActive *time.Time, current int, at time.Time, loc *time.Location) int {
	if lastActive == nil || current <= 0 {
		return 1
	}
	last := DayKey(*lastActive, loc)
	today := DayKey(at, loc)
	switch {
	case last == today:
		return current
	case last == DayKey(at.AddDate(0, 0, -1), loc):
		return current + 1
	default:
		return 1
	}
}
