package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/fuelops/internal/model"
	"github.com/nurpe/fuelops/internal/reconcile"
)

func sampleSummary() model.Summary {
	window, _ := reconcile.NewWindow(model.PeriodDay, mustDate("2026-10-01"), mustDate(""), mustDate(""))
	petrol := uuid.New()
	return reconcile.Summarize(reconcile.Input{
		Window: window,
		Totals: model.Totals{
			ReadingSales:   decimal.NewFromInt(1000),
			CashReceipts:   decimal.NewFromInt(400),
			OnlinePayments: decimal.NewFromInt(200),
			CreditSales:    decimal.NewFromInt(400),
		},
		Fuels: []model.FuelSales{{
			FuelTypeID:   petrol,
			FuelTypeName: "Petrol",
			Litres:       decimal.NewFromInt(100),
			Revenue:      decimal.NewFromInt(1000),
		}},
		PurchaseCosts: map[uuid.UUID]decimal.Decimal{petrol: decimal.NewFromInt(8)},
	}, reconcile.DefaultParams())
}

func TestGenerate(t *testing.T) {
	content, err := NewGenerator().Generate(sampleSummary())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	file, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	if got := file.GetSheetList(); len(got) != 2 || got[0] != summarySheet || got[1] != fuelSheet {
		t.Fatalf("unexpected sheets %v", got)
	}
	checks := []struct {
		sheet, cell, want string
	}{
		{summarySheet, "A1", "Period"},
		{summarySheet, "B1", "day"},
		{summarySheet, "B2", "2026-10-01"},
		{summarySheet, "B7", "1000.00"},
		{summarySheet, "B16", "yes"},
		{fuelSheet, "A2", "Petrol"},
		{fuelSheet, "F2", "purchase"},
		{fuelSheet, "G3", "200.00"},
	}
	for _, c := range checks {
		got, err := file.GetCellValue(c.sheet, c.cell)
		if err != nil {
			t.Fatalf("%s!%s: %v", c.sheet, c.cell, err)
		}
		if got != c.want {
			t.Errorf("%s!%s = %q, want %q", c.sheet, c.cell, got, c.want)
		}
	}
}

func mustDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
