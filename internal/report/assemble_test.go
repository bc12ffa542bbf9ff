package report

import (
	"testing"

	"tally/internal/core"
)

func strp(s string) *string { return &s }

func moneyp(c int64) *core.Money { return &core.Money{Cents: c} }

func TestAssembleLabelsAndEmptyLists(t *testing.T) {
	r, err := Assemble(nil, "2024-03-18T00:00:00")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if r.LastDate != "2024-03-18" || r.RecentMonthLabel != "2024-03" || r.RecentYearLabel != "Year ending 2024-03-18" {
		t.Fatalf("unexpected labels %+v", r)
	}
	for _, p := range AllPeriods {
		pr := r.Period(p)
		if pr.TopCategories == nil || pr.TopMerchants == nil || pr.TopTransactions == nil {
			t.Fatalf("%s has nil lists", p)
		}
	}
}

func TestAssembleDropsMalformedRows(t *testing.T) {
	rows := []ReportRow{
		{Period: RecentMonth, Section: TopCategories, Rank: 2, TagName: strp("Fuel"), CategorySpend: moneyp(100)},
		{Period: RecentMonth, Section: TopCategories, Rank: 1, TagName: strp("Food"), CategorySpend: moneyp(200)},
		{Period: RecentMonth, Section: TopCategories, Rank: 3, TagName: strp("NoSpend")},
		{Period: "quarterly", Section: TopCategories, Rank: 1, TagName: strp("X"), CategorySpend: moneyp(1)},
		{Period: RecentMonth, Section: "top_days", Rank: 1},
		{Period: AvgMonthly, Section: TopTransactions, Rank: 1, RecordID: strp("1"), RecordDate: strp("2024-03-01"),
			RecordDescription: strp("x"), RecordAmount: moneyp(-1)},
		{Period: RecentYear, Section: TopMerchants, Rank: 1, Merchant: strp("shell"), MerchantSpend: moneyp(50)},
		{Period: RecentYear, Section: TopTransactions, Rank: 1, RecordID: strp("9"), RecordDate: strp("2024-03-02 10:00:00"),
			RecordDescription: strp("SHELL"), RecordAmount: moneyp(-50)},
	}
	r, err := Assemble(rows, "2024-03-18")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	cats := r.Periods.RecentMonth.TopCategories
	if len(cats) != 2 || cats[0].TagName != "Food" || cats[1].TagName != "Fuel" {
		t.Fatalf("unexpected categories %+v", cats)
	}
	if len(r.Periods.AvgMonthly.TopTransactions) != 0 {
		t.Fatalf("avg monthly transactions must be dropped")
	}
	if m := r.Periods.RecentYear.TopMerchants; len(m) != 1 || m[0].Category != "" {
		t.Fatalf("unexpected merchants %+v", m)
	}
	if tx := r.Periods.RecentYear.TopTransactions; len(tx) != 1 || tx[0].Date != "2024-03-02" {
		t.Fatalf("unexpected transactions %+v", tx)
	}
}

func TestAssembleCapsLists(t *testing.T) {
	var rows []ReportRow
	for i := 1; i <= 20; i++ {
		rows = append(rows, ReportRow{Period: RecentYear, Section: TopCategories, Rank: i, TagName: strp("t"), CategorySpend: moneyp(int64(100 - i))})
	}
	r, _ := Assemble(rows, "2024-01-01")
	if n := len(r.Periods.RecentYear.TopCategories); n != MaxRank {
		t.Fatalf("expected %d categories, got %d", MaxRank, n)
	}
}

func TestAssembleRoundTripsAggregate(t *testing.T) {
	rows, err := Aggregate(threeMonthFixture(), "2024-03-18", nil)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	r, err := Assemble(rows, "2024-03-18")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(r.Periods.RecentYear.TopCategories) != 4 || len(r.Periods.RecentYear.TopTransactions) != MaxRank {
		t.Fatalf("unexpected recent year %+v", r.Periods.RecentYear)
	}
	if len(r.Periods.AvgMonthly.TopTransactions) != 0 {
		t.Fatalf("avg monthly has transactions")
	}
	if len(r.Periods.RecentMonth.TopTransactions) != 6 {
		t.Fatalf("expected 6 march transactions, got %d", len(r.Periods.RecentMonth.TopTransactions))
	}
}

func TestAssembleRejectsBadDate(t *testing.T) {
	if _, err := Assemble(nil, ""); err == nil {
		t.Fatalf("expected error")
	}
}
