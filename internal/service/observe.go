package service

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/nurpe/fuelops/internal/inventory"
	"github.com/nurpe/fuelops/internal/metrics"
)

func inventoryRejected(err error) {
	reason := "other"
	switch {
	case errors.Is(err, inventory.ErrInsufficientStock):
		reason = "insufficient_stock"
	case errors.Is(err, inventory.ErrInsufficientCapacity):
		reason = "insufficient_capacity"
	case errors.Is(err, inventory.ErrBelowCurrentLevel):
		reason = "below_current_level"
	case errors.Is(err, inventory.ErrInvalidInput):
		reason = "invalid_input"
	}
	metrics.InventoryRejections.WithLabelValues(reason).Inc()
}

func dispensed(source string, litres decimal.Decimal) {
	if litres.IsPositive() {
		metrics.LitresDispensed.WithLabelValues(source).Add(litres.InexactFloat64())
	}
}

func unloaded(litres decimal.Decimal) {
	metrics.LitresUnloaded.Add(litres.InexactFloat64())
}

func creditEvent(event string, amount decimal.Decimal) {
	metrics.CreditAmount.WithLabelValues(event).Add(amount.InexactFloat64())
}
