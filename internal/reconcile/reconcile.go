// Package reconcile turns window aggregates into the balance check and the
// per-fuel profit breakdown.
package reconcile

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/fuelops/internal/model"
)

type Params struct {
	DefaultMargin  decimal.Decimal
	BalanceEpsilon decimal.Decimal
}

func DefaultParams() Params {
	return Params{
		DefaultMargin:  decimal.RequireFromString("0.10"),
		BalanceEpsilon: decimal.RequireFromString("0.01"),
	}
}

type Input struct {
	Window model.Window
	Totals model.Totals
	Fuels  []model.FuelSales
	// PurchaseCosts holds the latest purchase unit cost per fuel type.
	PurchaseCosts map[uuid.UUID]decimal.Decimal
	// ActivePrices is used as the selling price when nothing was sold.
	ActivePrices map[uuid.UUID]decimal.Decimal
}

func Summarize(in Input, p Params) model.Summary {
	t := in.Totals
	gross := t.ReadingSales.Add(t.DirectSales)
	received := t.CashReceipts.Add(t.OnlinePayments).Add(t.CreditPayments)
	expected := received.Add(t.CreditSales)
	diff := expected.Sub(gross)

	fuels := Breakdown(in.Fuels, in.PurchaseCosts, in.ActivePrices, p.DefaultMargin)
	profit := decimal.Zero
	for _, f := range fuels {
		profit = profit.Add(f.Profit)
	}

	return model.Summary{
		Window:        in.Window,
		Totals:        t,
		GrossSales:    gross.Round(2),
		TotalReceived: received.Round(2),
		ExpectedTotal: expected.Round(2),
		Difference:    diff.Round(2),
		IsBalanced:    diff.Abs().LessThan(p.BalanceEpsilon),
		Fuels:         fuels,
		TotalProfit:   profit.Round(2),
	}
}

// Breakdown computes profit per fuel type, ordered by fuel name.
func Breakdown(
	sales []model.FuelSales,
	purchaseCosts map[uuid.UUID]decimal.Decimal,
	activePrices map[uuid.UUID]decimal.Decimal,
	margin decimal.Decimal,
) []model.FuelBreakdown {
	result := make([]model.FuelBreakdown, 0, len(sales))
	for _, s := range sales {
		selling := activePrices[s.FuelTypeID]
		if s.Litres.IsPositive() {
			selling = s.Revenue.DivRound(s.Litres, 4)
		}

		cost, ok := purchaseCosts[s.FuelTypeID]
		source := model.CostSourcePurchase
		if !ok || !cost.IsPositive() {
			cost = selling.Mul(decimal.NewFromInt(1).Sub(margin)).Round(4)
			source = model.CostSourceMargin
		}

		result = append(result, model.FuelBreakdown{
			FuelTypeID:   s.FuelTypeID,
			FuelTypeName: s.FuelTypeName,
			LitresSold:   s.Litres,
			Revenue:      s.Revenue.Round(2),
			SellingPrice: selling,
			CostPerLitre: cost,
			CostSource:   source,
			Profit:       s.Revenue.Sub(s.Litres.Mul(cost)).Round(2),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].FuelTypeName < result[j].FuelTypeName
	})
	return result
}

// Status classifies a summary for the daily validation screen.
func Status(s model.Summary) model.ValidationStatus {
	switch {
	case s.IsBalanced:
		return model.ValidationBalanced
	case s.Difference.IsNegative():
		return model.ValidationShort
	default:
		return model.ValidationExcess
	}
}
