package excel

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/fuelops/internal/model"
)

const (
	summarySheet = "Summary"
	fuelSheet    = "Fuels"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(summary model.Summary) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if err := g.writeSummary(file, summary); err != nil {
		return nil, err
	}

	if _, err := file.NewSheet(fuelSheet); err != nil {
		return nil, err
	}
	if err := g.writeFuels(file, summary); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, summary model.Summary) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(summarySheet, cell, value)
	}

	t := summary.Totals
	rows := []struct {
		label string
		value interface{}
	}{
		{"Period", string(summary.Window.Period)},
		{"From", formatDate(summary.Window.Start)},
		{"To", formatDate(summary.Window.LastDay())},
		{"", nil},
		{"Meter reading sales", money(t.ReadingSales)},
		{"Direct sales", money(t.DirectSales)},
		{"Gross sales", money(summary.GrossSales)},
		{"", nil},
		{"Cash receipts", money(t.CashReceipts)},
		{"Online payments", money(t.OnlinePayments)},
		{"Credit payments (UPI, Worker)", money(t.CreditPayments)},
		{"Total received", money(summary.TotalReceived)},
		{"Credit extended", money(t.CreditSales)},
		{"Expected total", money(summary.ExpectedTotal)},
		{"Difference", money(summary.Difference)},
		{"Balanced", yesNo(summary.IsBalanced)},
		{"", nil},
		{"Owner settled credit (not received)", money(t.OwnerCreditPayments)},
		{"Total profit", money(summary.TotalProfit)},
	}
	for i, row := range rows {
		if row.label == "" {
			continue
		}
		set(fmt.Sprintf("A%d", i+1), row.label)
		set(fmt.Sprintf("B%d", i+1), row.value)
	}

	_ = file.SetColWidth(summarySheet, "A", "A", 38)
	_ = file.SetColWidth(summarySheet, "B", "B", 18)
	return nil
}

func (g *Generator) writeFuels(file *excelize.File, summary model.Summary) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(fuelSheet, cell, value)
	}

	headers := []string{
		"Fuel",
		"Litres sold",
		"Revenue",
		"Selling price",
		"Cost per litre",
		"Cost source",
		"Profit",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, fuel := range summary.Fuels {
		row := i + 2
		set(fmt.Sprintf("A%d", row), fuel.FuelTypeName)
		set(fmt.Sprintf("B%d", row), litres(fuel.LitresSold))
		set(fmt.Sprintf("C%d", row), money(fuel.Revenue))
		set(fmt.Sprintf("D%d", row), fuel.SellingPrice.StringFixed(2))
		set(fmt.Sprintf("E%d", row), fuel.CostPerLitre.StringFixed(2))
		set(fmt.Sprintf("F%d", row), string(fuel.CostSource))
		set(fmt.Sprintf("G%d", row), money(fuel.Profit))
	}

	totalRow := len(summary.Fuels) + 2
	set(fmt.Sprintf("A%d", totalRow), "Total")
	set(fmt.Sprintf("G%d", totalRow), money(summary.TotalProfit))

	_ = file.SetColWidth(fuelSheet, "A", "A", 20)
	_ = file.SetColWidth(fuelSheet, "B", "G", 16)
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func money(v decimal.Decimal) string {
	return v.StringFixed(2)
}

func litres(v decimal.Decimal) string {
	return v.StringFixed(3)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
