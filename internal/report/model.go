// Package report computes the multi-period spending report.
//
// Aggregate turns canonical records into flat ranked rows; Assemble turns
// those rows into the nested SpendingReport the renderers consume.
package report

import "tally/internal/core"

type (
	Period  string
	Section string
)

const (
	RecentMonth Period = "recent_month"
	AvgMonthly  Period = "avg_monthly"
	RecentYear  Period = "recent_year"

	TopCategories   Section = "top_categories"
	TopMerchants    Section = "top_merchants"
	TopTransactions Section = "top_transactions"
)

// MaxRank bounds every (period, section) list.
const MaxRank = 12

// Uncategorized collects debit spend of records without any tag.
const Uncategorized = "Uncategorized"

var (
	AllPeriods  = []Period{RecentMonth, AvgMonthly, RecentYear}
	AllSections = []Section{TopCategories, TopMerchants, TopTransactions}
)

// ReportRow is one flat ranked aggregation row. Only the fields relevant to
// Section are set.
type ReportRow struct {
	Period  Period
	Section Section
	Rank    int

	TagName       *string // category name, or a merchant's display category
	CategorySpend *core.Money
	Merchant      *string
	MerchantSpend *core.Money

	RecordID          *string
	RecordDate        *string
	RecordDescription *string
	RecordAmount      *core.Money
}

type CategorySpend struct {
	TagName string
	Spend   core.Money
}

type MerchantSpend struct {
	Merchant string
	Spend    core.Money
	Category string // empty when the merchant has no tagged spend
}

type Transaction struct {
	ID          string
	Date        string
	Description string
	Amount      core.Money // signed; negative for debits
}

// PeriodReport holds the three ranked sections of one period. The slices are
// never nil.
type PeriodReport struct {
	TopCategories   []CategorySpend
	TopMerchants    []MerchantSpend
	TopTransactions []Transaction
}

type Periods struct {
	RecentMonth PeriodReport
	AvgMonthly  PeriodReport
	RecentYear  PeriodReport
}

// SpendingReport is the assembled report.
type SpendingReport struct {
	LastDate         string // YYYY-MM-DD
	RecentMonthLabel string // YYYY-MM
	RecentYearLabel  string
	Periods          Periods
}

// Period returns the section lists for p.
func (r *SpendingReport) Period(p Period) *PeriodReport {
	switch p {
	case RecentMonth:
		return &r.Periods.RecentMonth
	case AvgMonthly:
		return &r.Periods.AvgMonthly
	case RecentYear:
		return &r.Periods.RecentYear
	}
	return nil
}

func emptyPeriod() PeriodReport {
	return PeriodReport{
		TopCategories:   []CategorySpend{},
		TopMerchants:    []MerchantSpend{},
		TopTransactions: []Transaction{},
	}
}
