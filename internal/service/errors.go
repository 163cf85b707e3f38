package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/fuelops/internal/inventory"
	"github.com/nurpe/fuelops/internal/repository"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrNoActiveTank         = errors.New("no active tank for fuel type")
	ErrAlreadyProcessed     = errors.New("already processed")
	ErrCreditLimitExceeded  = errors.New("credit limit exceeded")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	ErrInvalidInput         = inventory.ErrInvalidInput
	ErrInsufficientStock    = inventory.ErrInsufficientStock
	ErrInsufficientCapacity = inventory.ErrInsufficientCapacity
	ErrBelowCurrentLevel    = inventory.ErrBelowCurrentLevel

	ErrAlreadyUnloaded = fmt.Errorf("%w: purchase already unloaded", ErrAlreadyProcessed)
	ErrAlreadyPaid     = fmt.Errorf("%w: credit already paid", ErrAlreadyProcessed)
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidInput}, args...)...)
}

// notFound turns a missing row into ErrNotFound naming the entity.
func notFound(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, inventory.ErrTankNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, entity)
	}
	return err
}

// tankConflict reports a guarded tank update that lost a race as the guard
// violation it would have produced.
func tankConflict(err error) error {
	var conflict *repository.TankConflict
	if !errors.As(err, &conflict) {
		return err
	}
	v := &inventory.Violation{
		Err:       inventory.ErrInsufficientStock,
		TankID:    conflict.TankID,
		Requested: conflict.Delta,
	}
	if conflict.Delta.IsNegative() {
		v.Err = inventory.ErrInsufficientCapacity
		v.Requested = conflict.Delta.Neg()
	}
	inventoryRejected(v.Err)
	return v
}

func positive(name string, v decimal.Decimal) error {
	if !v.IsPositive() {
		return invalid("%s must be positive", name)
	}
	return nil
}

func notFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrNotFound}, args...)...)
}
