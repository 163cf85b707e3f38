package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/nurpe/fuelops/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Generate renders the reconciliation sheet for a window.
func (g *Generator) Generate(summary model.Summary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Daily reconciliation", "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s: %s - %s",
		summary.Window.Period,
		formatDate(summary.Window.Start),
		formatDate(summary.Window.LastDay()),
	), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	t := summary.Totals
	section(pdf, g.fontName, "Sales")
	line(pdf, g.fontName, "Meter reading sales", t.ReadingSales)
	line(pdf, g.fontName, "Direct sales", t.DirectSales)
	line(pdf, g.fontName, "Gross sales", summary.GrossSales)
	pdf.Ln(2)

	section(pdf, g.fontName, "Money received")
	line(pdf, g.fontName, "Cash receipts", t.CashReceipts)
	line(pdf, g.fontName, "Online payments", t.OnlinePayments)
	line(pdf, g.fontName, "Credit payments (UPI, Worker)", t.CreditPayments)
	line(pdf, g.fontName, "Total received", summary.TotalReceived)
	line(pdf, g.fontName, "Credit extended", t.CreditSales)
	line(pdf, g.fontName, "Expected total", summary.ExpectedTotal)
	line(pdf, g.fontName, "Difference", summary.Difference)
	pdf.Ln(2)

	if summary.IsBalanced {
		pdf.SetTextColor(0, 120, 0)
		pdf.CellFormat(0, 8, "Balanced", "", 1, "L", false, 0, "")
	} else {
		pdf.SetTextColor(200, 0, 0)
		pdf.CellFormat(0, 8, fmt.Sprintf("Not balanced: difference %s", summary.Difference.StringFixed(2)), "", 1, "L", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(g.fontName, "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Owner settled credit, not counted as received: %s", t.OwnerCreditPayments.StringFixed(2)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	section(pdf, g.fontName, "Per fuel")
	headers := []string{"Fuel", "Litres", "Revenue", "Cost/L", "Source", "Profit"}
	widths := []float64{40, 28, 30, 26, 24, 32}
	drawTableRow(pdf, g.fontName, headers, widths, true)
	for _, fuel := range summary.Fuels {
		drawTableRow(pdf, g.fontName, []string{
			fuel.FuelTypeName,
			fuel.LitresSold.StringFixed(3),
			fuel.Revenue.StringFixed(2),
			fuel.CostPerLitre.StringFixed(2),
			string(fuel.CostSource),
			fuel.Profit.StringFixed(2),
		}, widths, false)
	}
	drawTableRow(pdf, g.fontName, []string{"Total", "", "", "", "", summary.TotalProfit.StringFixed(2)}, widths, true)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, fontName, title string) {
	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func line(pdf *gofpdf.Fpdf, fontName, label string, value decimal.Decimal) {
	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(110, 6, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, value.StringFixed(2), "", 1, "R", false, 0, "")
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}
