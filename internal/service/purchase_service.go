package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/fuelops/internal/inventory"
	"github.com/nurpe/fuelops/internal/model"
	"github.com/nurpe/fuelops/internal/repository"
)

type PurchaseStore interface {
	Create(ctx context.Context, p model.Purchase) (*model.Purchase, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	List(ctx context.Context, status *model.PurchaseStatus) ([]model.Purchase, error)
	Unload(ctx context.Context, id uuid.UUID) (*model.UnloadResult, error)
}

type PurchaseService struct {
	purchases PurchaseStore
	tanks     TankStore
	guard     *inventory.Guard
}

func NewPurchaseService(purchases PurchaseStore, tanks TankStore) *PurchaseService {
	return &PurchaseService{
		purchases: purchases,
		tanks:     tanks,
		guard:     inventory.NewGuard(tanks),
	}
}

type CreatePurchaseInput struct {
	TankID   uuid.UUID
	Supplier string
	Litres   decimal.Decimal
	UnitCost decimal.Decimal
	Date     time.Time
}

// Create records a delivery as pending. The tank is not touched until the
// purchase is unloaded.
func (s *PurchaseService) Create(ctx context.Context, input CreatePurchaseInput) (*model.Purchase, error) {
	if err := positive("litres", input.Litres); err != nil {
		return nil, err
	}
	if err := positive("unitCost", input.UnitCost); err != nil {
		return nil, err
	}
	if input.Date.IsZero() {
		return nil, invalid("date is required")
	}
	tank, err := s.tanks.GetTank(ctx, input.TankID)
	if err != nil {
		return nil, notFound(err, "tank")
	}
	if !tank.IsActive {
		return nil, invalid("tank %s is inactive", tank.Name)
	}

	return s.purchases.Create(ctx, model.Purchase{
		TankID:    tank.ID,
		Supplier:  strings.TrimSpace(input.Supplier),
		Litres:    input.Litres,
		UnitCost:  input.UnitCost,
		TotalCost: input.Litres.Mul(input.UnitCost).Round(2),
		Status:    model.PurchaseStatusPending,
		Date:      dateOnly(input.Date),
	})
}

func (s *PurchaseService) Get(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	p, err := s.purchases.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "purchase")
	}
	return p, nil
}

func (s *PurchaseService) List(ctx context.Context, status *model.PurchaseStatus) ([]model.Purchase, error) {
	return s.purchases.List(ctx, status)
}

// Unload applies a pending purchase to its tank exactly once: the level
// rises by the purchased litres and the average unit cost is reblended.
func (s *PurchaseService) Unload(ctx context.Context, id uuid.UUID) (*model.UnloadResult, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == model.PurchaseStatusUnloaded {
		return nil, ErrAlreadyUnloaded
	}
	if _, err := s.guard.ValidatePurchase(ctx, p.TankID, p.Litres); err != nil {
		inventoryRejected(err)
		return nil, notFound(err, "tank")
	}

	result, err := s.purchases.Unload(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyApplied) {
			return nil, ErrAlreadyUnloaded
		}
		return nil, tankConflict(notFound(err, "purchase"))
	}
	unloaded(result.Purchase.Litres)
	return result, nil
}
