package render

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/report"
)

// Page geometry in points (A4 portrait).
const (
	pageMargin   = 24.0
	columnGap    = 8.0
	bandGap      = 14.0
	titleHeight  = 14.0
	headerHeight = 11.0
	rowHeight    = 9.5
	amountPad    = 6.0
	cellPad      = 2.0
	fontFamily   = "Helvetica"
	fontSize     = 7.0
	titleSize    = 10.0
	logoSize     = 48.0
)

// PDF renders the report on a single A4 page: one band per period, one
// bordered table per section, and an optional logo centered at the bottom.
type PDF struct {
	LogoPath string
}

func (p PDF) Render(w io.Writer, r report.SpendingReport) error {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(false, 0)
	doc.SetCatalogSort(true)
	doc.SetTitle("Spending report "+r.LastDate, true)

	// Fixed timestamps keep the bytes stable across renders.
	stamp := documentTime(r.LastDate)
	doc.SetCreationDate(stamp)
	doc.SetModificationDate(stamp)

	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.AddPage()

	pageW, pageH := doc.GetPageSize()
	contentW := pageW - 2*pageMargin
	y := pageMargin

	for _, pv := range periodViews(r) {
		doc.SetFont(fontFamily, "B", titleSize)
		doc.SetXY(pageMargin, y)
		doc.CellFormat(contentW, titleHeight, tr(pv.title), "", 0, "L", false, 0, "")
		y += titleHeight

		secs := documentSections(pv)
		colW := columnWidth(contentW, len(secs))
		x := pageMargin
		for _, s := range secs {
			drawTable(doc, tr, s, x, y, colW)
			x += colW + columnGap
		}
		y += headerHeight + rowHeight*report.MaxRank + bandGap
	}

	p.drawLogo(doc, pageW, pageH)

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// columnWidth splits the content width into n tables separated by gaps.
func columnWidth(contentW float64, n int) float64 {
	return (contentW - columnGap*float64(n-1)) / float64(n)
}

// documentSections bounds every whole label, date and category included, to
// DocumentBudget runes.
func documentSections(pv periodView) []sectionView {
	secs := sections(pv, DocumentBudget, DocumentBudget)
	for _, s := range secs {
		for i := range s.lines {
			s.lines[i].label = core.Truncate(s.lines[i].label, DocumentBudget)
		}
	}
	return secs
}

// tableLayout is a section table measured for a column of a given width.
type tableLayout struct {
	labelW  float64
	amountW float64
	labels  []string
}

// layoutTable sizes the amount column to the widest amount plus padding and
// fits each ranked label into what is left. Expects the row font to be set.
func layoutTable(doc *fpdf.Fpdf, tr func(string) string, s sectionView, w float64) tableLayout {
	var t tableLayout
	for _, l := range s.lines {
		if sw := doc.GetStringWidth(tr(l.amount)); sw > t.amountW {
			t.amountW = sw
		}
	}
	t.amountW += amountPad
	t.labelW = w - t.amountW - cellPad

	room := t.labelW - 2*doc.GetCellMargin()
	for i, l := range s.lines {
		t.labels = append(t.labels, fitText(doc, tr, strconv.Itoa(i+1)+". "+l.label, room))
	}
	return t
}

// fitText drops trailing runes, marking the cut with an ellipsis, until s
// renders no wider than width in the current font.
func fitText(doc *fpdf.Fpdf, tr func(string) string, s string, width float64) string {
	if doc.GetStringWidth(tr(s)) <= width {
		return s
	}
	r := []rune(strings.TrimSuffix(s, core.Ellipsis))
	for len(r) > 0 {
		r = r[:len(r)-1]
		cut := strings.TrimRight(string(r), " ") + core.Ellipsis
		if doc.GetStringWidth(tr(cut)) <= width {
			return cut
		}
	}
	return ""
}

// drawTable draws one bordered section table.
func drawTable(doc *fpdf.Fpdf, tr func(string) string, s sectionView, x, y, w float64) {
	height := headerHeight + rowHeight*report.MaxRank
	doc.Rect(x, y, w, height, "D")

	doc.SetFont(fontFamily, "B", fontSize+1)
	doc.SetXY(x, y)
	doc.CellFormat(w, headerHeight, tr(s.title), "B", 0, "C", false, 0, "")

	doc.SetFont(fontFamily, "", fontSize)
	if len(s.lines) == 0 {
		doc.SetXY(x, y+headerHeight)
		doc.CellFormat(w, rowHeight, "(none)", "", 0, "C", false, 0, "")
		return
	}

	t := layoutTable(doc, tr, s, w)
	rowY := y + headerHeight
	for i, l := range s.lines {
		doc.SetXY(x+cellPad, rowY)
		doc.CellFormat(t.labelW, rowHeight, tr(t.labels[i]), "", 0, "L", false, 0, "")
		doc.CellFormat(t.amountW-cellPad, rowHeight, tr(l.amount), "", 0, "R", false, 0, "")
		rowY += rowHeight
	}
}

// drawLogo places the logo at the bottom center of the page. A missing or
// unreadable image is skipped.
func (p PDF) drawLogo(doc *fpdf.Fpdf, pageW, pageH float64) {
	if p.LogoPath == "" {
		return
	}
	if _, err := os.Stat(p.LogoPath); err != nil {
		slog.Debug("Logo not found, skipping",
			log.FieldComponent, log.ComponentRender,
			log.FieldPath, p.LogoPath)
		return
	}
	x := (pageW - logoSize) / 2
	y := pageH - pageMargin - logoSize
	doc.ImageOptions(p.LogoPath, x, y, logoSize, logoSize, false, fpdf.ImageOptions{ReadDpi: false}, 0, "")
	if err := doc.Error(); err != nil {
		slog.Warn("Logo could not be embedded",
			log.FieldComponent, log.ComponentRender,
			log.FieldPath, p.LogoPath,
			log.FieldError, err)
		doc.ClearError()
	}
}

func documentTime(lastDate string) time.Time {
	if d, err := core.ParseDay(lastDate); err == nil {
		return d
	}
	return time.Unix(0, 0).UTC()
}
