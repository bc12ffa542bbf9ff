package render

import (
	"bufio"
	"fmt"
	"io"

	"tally/internal/report"
)

// Text renders the report as plain text blocks, one per period.
type Text struct{}

func (Text) Render(w io.Writer, r report.SpendingReport) error {
	bw := bufio.NewWriter(w)
	for i, p := range periodViews(r) {
		if i > 0 {
			fmt.Fprint(bw, "\n\n")
		}
		fmt.Fprintf(bw, "========== %s ==========\n", p.title)
		for _, s := range sections(p, DescriptionBudget, MerchantBudget) {
			fmt.Fprintf(bw, "\n--- %s ---\n", s.title)
			if len(s.lines) == 0 {
				fmt.Fprintln(bw, "(none)")
				continue
			}
			for n, l := range s.lines {
				fmt.Fprintf(bw, "  %d. %s: %s\n", n+1, l.label, l.amount)
			}
		}
	}
	return bw.Flush()
}
