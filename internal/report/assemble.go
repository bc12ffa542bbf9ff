package report

import (
	"sort"

	"tally/internal/core"
)

// Assemble groups flat rows by period and section into a SpendingReport.
// Rows missing a field their section needs, rows for unknown periods or
// sections, and transaction rows for the monthly average are dropped. Each
// list keeps rank order and is cut at MaxRank.
func Assemble(rows []ReportRow, lastDate string) (SpendingReport, error) {
	last, err := core.ParseDay(lastDate)
	if err != nil {
		return SpendingReport{}, err
	}
	day := last.Format(core.DateLayout)

	report := SpendingReport{
		LastDate:         day,
		RecentMonthLabel: core.MonthLabel(last),
		RecentYearLabel:  "Year ending " + day,
		Periods: Periods{
			RecentMonth: emptyPeriod(),
			AvgMonthly:  emptyPeriod(),
			RecentYear:  emptyPeriod(),
		},
	}

	sorted := append([]ReportRow(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rank < sorted[j].Rank })

	for _, r := range sorted {
		p := report.Period(r.Period)
		if p == nil {
			continue
		}
		switch r.Section {
		case TopCategories:
			if r.TagName == nil || r.CategorySpend == nil || len(p.TopCategories) >= MaxRank {
				continue
			}
			p.TopCategories = append(p.TopCategories, CategorySpend{TagName: *r.TagName, Spend: *r.CategorySpend})
		case TopMerchants:
			if r.Merchant == nil || r.MerchantSpend == nil || len(p.TopMerchants) >= MaxRank {
				continue
			}
			m := MerchantSpend{Merchant: *r.Merchant, Spend: *r.MerchantSpend}
			if r.TagName != nil {
				m.Category = *r.TagName
			}
			p.TopMerchants = append(p.TopMerchants, m)
		case TopTransactions:
			if r.Period == AvgMonthly || r.RecordID == nil || r.RecordDate == nil ||
				r.RecordDescription == nil || r.RecordAmount == nil || len(p.TopTransactions) >= MaxRank {
				continue
			}
			p.TopTransactions = append(p.TopTransactions, Transaction{
				ID:          *r.RecordID,
				Date:        core.TruncateDate(*r.RecordDate),
				Description: *r.RecordDescription,
				Amount:      *r.RecordAmount,
			})
		}
	}
	return report, nil
}
