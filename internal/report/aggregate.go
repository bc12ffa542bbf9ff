package report

import (
	"sort"
	"time"

	"tally/internal/core"
)

// Window holds the period boundaries anchored to the latest record date.
// All bounds are inclusive.
type Window struct {
	Last       time.Time
	MonthStart time.Time
	YearStart  time.Time
}

// NewWindow anchors the periods to last: the calendar month containing it,
// and the year-long window ending on it. The year window starts the day
// after the same date a year earlier, clamped to the end of that month, so
// it spans 366 days exactly when it contains a February 29.
func NewWindow(last time.Time) Window {
	y, m, d := last.Date()
	if n := daysIn(y-1, m); d > n {
		d = n
	}
	return Window{
		Last:       last,
		MonthStart: time.Date(y, m, 1, 0, 0, 0, 0, time.UTC),
		YearStart:  time.Date(y-1, m, d+1, 0, 0, 0, 0, time.UTC),
	}
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// YearBounds returns the year window as YYYY-MM-DD strings.
func (w Window) YearBounds() (from, to string) {
	return w.YearStart.Format(core.DateLayout), w.Last.Format(core.DateLayout)
}

func (w Window) inMonth(d time.Time) bool {
	return !d.Before(w.MonthStart) && !d.After(w.Last)
}

func (w Window) inYear(d time.Time) bool {
	return !d.Before(w.YearStart) && !d.After(w.Last)
}

type dated struct {
	core.TaggedRecord
	day time.Time
}

// Aggregate computes the ranked rows of every period and section.
//
// Spend is the magnitude of DEBIT records. The monthly average divides the
// year window's spend by the number of distinct calendar months in that
// window having any record. Records outside the year window are ignored.
func Aggregate(records []core.TaggedRecord, lastDate string, merchants *MerchantNormalizer) ([]ReportRow, error) {
	last, err := core.ParseDay(lastDate)
	if err != nil {
		return nil, err
	}
	if merchants == nil {
		merchants = NewMerchantNormalizer()
	}
	w := NewWindow(last)

	var month, year []dated
	active := map[string]bool{}
	for _, r := range records {
		d, err := core.ParseDay(r.Date)
		if err != nil || !w.inYear(d) {
			continue
		}
		rec := dated{TaggedRecord: r, day: d}
		year = append(year, rec)
		active[core.MonthLabel(d)] = true
		if w.inMonth(d) {
			month = append(month, rec)
		}
	}
	months := len(active)
	if months == 0 {
		months = 1
	}

	var rows []ReportRow
	rows = append(rows, periodRows(RecentMonth, month, 1, merchants)...)
	rows = append(rows, periodRows(AvgMonthly, year, months, merchants)...)
	rows = append(rows, periodRows(RecentYear, year, 1, merchants)...)
	return rows, nil
}

func periodRows(p Period, recs []dated, divisor int, merchants *MerchantNormalizer) []ReportRow {
	var rows []ReportRow

	for i, c := range topCategories(recs, divisor) {
		name, spend := c.TagName, c.Spend
		rows = append(rows, ReportRow{Period: p, Section: TopCategories, Rank: i + 1, TagName: &name, CategorySpend: &spend})
	}

	for i, m := range topMerchants(recs, divisor, merchants) {
		name, spend := m.Merchant, m.Spend
		row := ReportRow{Period: p, Section: TopMerchants, Rank: i + 1, Merchant: &name, MerchantSpend: &spend}
		if m.Category != "" {
			cat := m.Category
			row.TagName = &cat
		}
		rows = append(rows, row)
	}

	if p != AvgMonthly {
		for i, t := range topTransactions(recs) {
			id, date, desc, amount := t.ID, t.Date, t.Description, t.Amount
			rows = append(rows, ReportRow{
				Period: p, Section: TopTransactions, Rank: i + 1,
				RecordID: &id, RecordDate: &date, RecordDescription: &desc, RecordAmount: &amount,
			})
		}
	}
	return rows
}

func topCategories(recs []dated, divisor int) []CategorySpend {
	sums := map[string]int64{}
	for _, r := range recs {
		if !r.IsDebit() {
			continue
		}
		spend := r.Amount.Abs().Cents
		if len(r.Tags) == 0 {
			sums[Uncategorized] += spend
			continue
		}
		for _, tag := range r.Tags {
			sums[tag] += spend
		}
	}

	out := make([]CategorySpend, 0, len(sums))
	for tag, cents := range sums {
		spend := core.Money{Cents: cents}.DivRound(divisor)
		if spend.Cents > 0 {
			out = append(out, CategorySpend{TagName: tag, Spend: spend})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Spend.Cents != out[j].Spend.Cents {
			return out[i].Spend.Cents > out[j].Spend.Cents
		}
		return out[i].TagName < out[j].TagName
	})
	return limit(out)
}

func topMerchants(recs []dated, divisor int, merchants *MerchantNormalizer) []MerchantSpend {
	sums := map[string]int64{}
	tagCounts := map[string]map[string]int{}
	for _, r := range recs {
		if !r.IsDebit() {
			continue
		}
		key := merchants.Key(r.Description)
		sums[key] += r.Amount.Abs().Cents
		for _, tag := range r.Tags {
			if tagCounts[key] == nil {
				tagCounts[key] = map[string]int{}
			}
			tagCounts[key][tag]++
		}
	}

	out := make([]MerchantSpend, 0, len(sums))
	for key, cents := range sums {
		spend := core.Money{Cents: cents}.DivRound(divisor)
		if spend.Cents > 0 {
			out = append(out, MerchantSpend{Merchant: key, Spend: spend, Category: dominantTag(tagCounts[key])})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Spend.Cents != out[j].Spend.Cents {
			return out[i].Spend.Cents > out[j].Spend.Cents
		}
		return out[i].Merchant < out[j].Merchant
	})
	return limit(out)
}

// dominantTag returns the most frequent tag, ties broken by name.
func dominantTag(counts map[string]int) string {
	best, bestN := "", 0
	for tag, n := range counts {
		if tag == Uncategorized {
			continue
		}
		if n > bestN || (n == bestN && tag < best) {
			best, bestN = tag, n
		}
	}
	return best
}

func topTransactions(recs []dated) []Transaction {
	var debits []dated
	for _, r := range recs {
		if r.IsDebit() && r.Amount.Cents != 0 {
			debits = append(debits, r)
		}
	}
	sort.Slice(debits, func(i, j int) bool {
		a, b := debits[i], debits[j]
		if ma, mb := a.Amount.Abs().Cents, b.Amount.Abs().Cents; ma != mb {
			return ma > mb
		}
		if !a.day.Equal(b.day) {
			return a.day.Before(b.day)
		}
		return a.ID < b.ID
	})

	debits = limit(debits)
	out := make([]Transaction, len(debits))
	for i, r := range debits {
		out[i] = Transaction{ID: r.ID, Date: r.day.Format(core.DateLayout), Description: r.Description, Amount: r.Amount}
	}
	return out
}

func limit[T any](s []T) []T {
	if len(s) > MaxRank {
		return s[:MaxRank]
	}
	return s
}
