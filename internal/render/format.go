// Package render lays out a spending report as text, a one-page PDF, or a
// workbook. Renderers are pure functions of the report.
package render

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"tally/internal/config"
	"tally/internal/core"
	"tally/internal/report"
)

// Label budgets, in characters.
const (
	DescriptionBudget = 50
	MerchantBudget    = 40
	DocumentBudget    = 28
)

// Renderer writes a report to w.
type Renderer interface {
	Render(w io.Writer, r report.SpendingReport) error
}

// New returns the renderer for an output format.
func New(format, logoPath string) (Renderer, error) {
	switch format {
	case config.OutputText, "":
		return Text{}, nil
	case config.OutputPDF:
		return PDF{LogoPath: logoPath}, nil
	case config.OutputXLSX:
		return XLSX{}, nil
	}
	return nil, fmt.Errorf("unknown report output %q", format)
}

// FormatMoney rounds to whole dollars, half away from zero, with thousands
// grouping: -1234.5 -> "-$1,235".
func FormatMoney(m core.Money) string {
	units := m.Decimal().Round(0).IntPart()
	if units < 0 {
		return "-$" + humanize.Comma(-units)
	}
	return "$" + humanize.Comma(units)
}

// FormatDate drops any time component.
func FormatDate(s string) string {
	return core.TruncateDate(s)
}

// MerchantLabel is the merchant key cut to budget, followed by its category
// when it has one. Only the document output cuts the label as a whole.
func MerchantLabel(m report.MerchantSpend, budget int) string {
	label := core.Truncate(m.Merchant, budget)
	if m.Category != "" {
		label += " (" + m.Category + ")"
	}
	return label
}

type periodView struct {
	period report.Period
	title  string
	data   report.PeriodReport
}

func periodViews(r report.SpendingReport) []periodView {
	return []periodView{
		{report.RecentMonth, "Recent month (" + r.RecentMonthLabel + ")", r.Periods.RecentMonth},
		{report.AvgMonthly, "Avg monthly (over year)", r.Periods.AvgMonthly},
		{report.RecentYear, "Recent year (" + r.RecentYearLabel + ")", r.Periods.RecentYear},
	}
}

// line is one ranked entry of a section, already formatted.
type line struct {
	label  string
	amount string
}

type sectionView struct {
	title string
	lines []line
}

// sections lays out the sections of a period in display order; the monthly
// average has no transactions section.
func sections(p periodView, descBudget, merchantBudget int) []sectionView {
	cats := sectionView{title: fmt.Sprintf("Top %d categories by spend", report.MaxRank)}
	for _, c := range p.data.TopCategories {
		cats.lines = append(cats.lines, line{label: c.TagName, amount: FormatMoney(c.Spend)})
	}

	txs := sectionView{title: fmt.Sprintf("Top %d transactions by spend", report.MaxRank)}
	for _, t := range p.data.TopTransactions {
		txs.lines = append(txs.lines, line{
			label:  FormatDate(t.Date) + " " + core.Truncate(t.Description, descBudget),
			amount: FormatMoney(t.Amount),
		})
	}

	merchants := sectionView{title: fmt.Sprintf("Top %d merchants by spend", report.MaxRank)}
	for _, m := range p.data.TopMerchants {
		merchants.lines = append(merchants.lines, line{label: MerchantLabel(m, merchantBudget), amount: FormatMoney(m.Spend)})
	}

	if p.period == report.AvgMonthly {
		return []sectionView{cats, merchants}
	}
	return []sectionView{cats, txs, merchants}
}
