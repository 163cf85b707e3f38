// Package inventory decides whether a litres movement is admissible for a
// tank. The checks only read; every write path re-applies them as a
// conditional update inside its transaction.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/fuelops/internal/model"
)

var (
	ErrTankNotFound         = errors.New("tank not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	ErrBelowCurrentLevel    = errors.New("capacity below current level")
)

// Violation carries the numbers behind a rejected check.
type Violation struct {
	Err       error           `json:"-"`
	TankID    uuid.UUID       `json:"tankId"`
	Requested decimal.Decimal `json:"requested"`
	Available decimal.Decimal `json:"available"`
	Capacity  decimal.Decimal `json:"capacity"`
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: requested %s, available %s, capacity %s",
		v.Err, v.Requested.String(), v.Available.String(), v.Capacity.String())
}

func (v *Violation) Unwrap() error {
	return v.Err
}

// Availability is returned by successful checks for display.
type Availability struct {
	TankID    uuid.UUID       `json:"tankId"`
	Available decimal.Decimal `json:"available"`
	Capacity  decimal.Decimal `json:"capacity"`
	Headroom  decimal.Decimal `json:"headroom"`
}

func availability(tank model.Tank) Availability {
	return Availability{
		TankID:    tank.ID,
		Available: tank.CurrentLevel,
		Capacity:  tank.CapacityLit,
		Headroom:  tank.CapacityLit.Sub(tank.CurrentLevel),
	}
}

func violation(err error, tank model.Tank, requested decimal.Decimal) *Violation {
	return &Violation{
		Err:       err,
		TankID:    tank.ID,
		Requested: requested,
		Available: tank.CurrentLevel,
		Capacity:  tank.CapacityLit,
	}
}

func checkActive(tank model.Tank) error {
	if !tank.IsActive {
		return fmt.Errorf("%w: tank %s is inactive", ErrInvalidInput, tank.Name)
	}
	return nil
}

// CheckSale admits 0 < litres <= current level on an active tank.
func CheckSale(tank model.Tank, litres decimal.Decimal) (Availability, error) {
	if err := checkActive(tank); err != nil {
		return Availability{}, err
	}
	if !litres.IsPositive() {
		return Availability{}, fmt.Errorf("%w: litres must be positive", ErrInvalidInput)
	}
	if litres.GreaterThan(tank.CurrentLevel) {
		return Availability{}, violation(ErrInsufficientStock, tank, litres)
	}
	return availability(tank), nil
}

// CheckPurchase admits 0 < litres <= capacity - current level on an active
// tank.
func CheckPurchase(tank model.Tank, litres decimal.Decimal) (Availability, error) {
	if err := checkActive(tank); err != nil {
		return Availability{}, err
	}
	if !litres.IsPositive() {
		return Availability{}, fmt.Errorf("%w: litres must be positive", ErrInvalidInput)
	}
	if litres.GreaterThan(tank.CapacityLit.Sub(tank.CurrentLevel)) {
		return Availability{}, violation(ErrInsufficientCapacity, tank, litres)
	}
	return availability(tank), nil
}

// CheckCapacity admits a new capacity that is positive and not below what
// the tank currently holds.
func CheckCapacity(tank model.Tank, capacity decimal.Decimal) (Availability, error) {
	if !capacity.IsPositive() {
		return Availability{}, fmt.Errorf("%w: capacity must be positive", ErrInvalidInput)
	}
	if capacity.LessThan(tank.CurrentLevel) {
		return Availability{}, violation(ErrBelowCurrentLevel, tank, capacity)
	}
	resized := tank
	resized.CapacityLit = capacity
	return availability(resized), nil
}

// CheckDelta routes a signed level change: positive deltas leave the tank,
// negative deltas return fuel to it. A zero delta always passes.
func CheckDelta(tank model.Tank, delta decimal.Decimal) (Availability, error) {
	switch {
	case delta.IsPositive():
		return CheckSale(tank, delta)
	case delta.IsNegative():
		return CheckPurchase(tank, delta.Neg())
	default:
		return availability(tank), nil
	}
}

// BlendedCost is the volume weighted average unit cost after adding litres
// at unitCost to level litres held at avg.
func BlendedCost(avg, level, unitCost, litres decimal.Decimal) decimal.Decimal {
	total := level.Add(litres)
	if !total.IsPositive() {
		return unitCost
	}
	return avg.Mul(level).Add(unitCost.Mul(litres)).DivRound(total, 4)
}

type TankReader interface {
	GetTank(ctx context.Context, id uuid.UUID) (*model.Tank, error)
}

// Guard loads tanks and applies the checks above.
type Guard struct {
	tanks TankReader
}

func NewGuard(tanks TankReader) *Guard {
	return &Guard{tanks: tanks}
}

func (g *Guard) ValidateSale(ctx context.Context, tankID uuid.UUID, litres decimal.Decimal) (Availability, error) {
	tank, err := g.load(ctx, tankID)
	if err != nil {
		return Availability{}, err
	}
	return CheckSale(*tank, litres)
}

func (g *Guard) ValidatePurchase(ctx context.Context, tankID uuid.UUID, litres decimal.Decimal) (Availability, error) {
	tank, err := g.load(ctx, tankID)
	if err != nil {
		return Availability{}, err
	}
	return CheckPurchase(*tank, litres)
}

func (g *Guard) ValidateCapacityUpdate(ctx context.Context, tankID uuid.UUID, capacity decimal.Decimal) (Availability, error) {
	tank, err := g.load(ctx, tankID)
	if err != nil {
		return Availability{}, err
	}
	return CheckCapacity(*tank, capacity)
}

// A nil tank with a nil error is treated as absent.
func (g *Guard) load(ctx context.Context, tankID uuid.UUID) (*model.Tank, error) {
	tank, err := g.tanks.GetTank(ctx, tankID)
	if err != nil {
		return nil, err
	}
	if tank == nil {
		return nil, ErrTankNotFound
	}
	return tank, nil
}
