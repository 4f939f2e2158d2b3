package presentation

import (
	"sort"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

type FeeLine struct {
	domain.FeeItem
	Balance float64 `json:"balance"`
	Status  string  `json:"status"`
}

type PaymentsView struct {
	Fees     []FeeLine        `json:"fees"`
	Payments []domain.Payment `json:"payments"`
	Totals   domain.FeeTotals `json:"totals"`
	Progress float64          `json:"progress"`
	CanPay   bool             `json:"canPay"`
}

func paymentsTab(p domain.Profile, ctx tabContext) any {
	var fees []domain.FeeItem
	var payments []domain.Payment
	switch {
	case p.Student != nil:
		fees, payments = p.Student.Fees, p.Student.Payments
	case p.Parent != nil:
		fees, payments = p.Parent.Financial.Fees, p.Parent.Financial.Payments
	}

	view := PaymentsView{
		Fees:     make([]FeeLine, 0, len(fees)),
		Payments: append([]domain.Payment{}, payments...),
		Totals:   domain.SumFees(fees, ctx.now),
		CanPay:   ctx.isOwner,
	}
	for _, f := range fees {
		view.Fees = append(view.Fees, FeeLine{
			FeeItem: f,
			Balance: f.Amount - f.Paid,
			Status:  domain.FeeStatus(f, ctx.now),
		})
	}
	sort.SliceStable(view.Fees, func(i, j int) bool {
		return view.Fees[i].DueDate.Before(view.Fees[j].DueDate)
	})
	sort.SliceStable(view.Payments, func(i, j int) bool {
		return view.Payments[i].PaidAt.After(view.Payments[j].PaidAt)
	})

	if p.Parent != nil {
		view.Totals.Due, view.Totals.Paid = parentTotals(p.Parent, ctx)
	}
	view.Progress = domain.PaymentProgress(view.Totals.Paid, view.Totals.Due)
	return view
}

// parentTotals prefers the stored financial summary and falls back to the
// fee list when the summary is empty.
func parentTotals(pd *domain.ParentDetails, ctx tabContext) (float64, float64) {
	if pd.Financial.TotalFeesDue != 0 || pd.Financial.TotalPaid != 0 {
		return pd.Financial.TotalFeesDue, pd.Financial.TotalPaid
	}
	totals := domain.SumFees(pd.Financial.Fees, ctx.now)
	return totals.Due, totals.Paid
}
