package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/fuelops/internal/inventory"
	"github.com/nurpe/fuelops/internal/model"
	"github.com/nurpe/fuelops/internal/repository"
)

type TankStore interface {
	ListFuelTypes(ctx context.Context) ([]model.FuelType, error)
	GetFuelType(ctx context.Context, id uuid.UUID) (*model.FuelType, error)
	FuelTypesByName(ctx context.Context) (map[string]model.FuelType, error)
	ListTanks(ctx context.Context, includeInactive bool) ([]model.Tank, error)
	GetTank(ctx context.Context, id uuid.UUID) (*model.Tank, error)
	ActiveTankForFuelType(ctx context.Context, fuelTypeID uuid.UUID) (*model.Tank, error)
	CreateTank(ctx context.Context, tank model.Tank, meta repository.AuditMeta) (*model.Tank, error)
	UpdateTank(
		ctx context.Context,
		id uuid.UUID,
		action string,
		meta repository.AuditMeta,
		mutate func(current model.Tank) (model.Tank, error),
	) (*model.Tank, error)
	ListPumps(ctx context.Context) ([]model.Pump, error)
	GetPump(ctx context.Context, id uuid.UUID) (*model.Pump, error)
	CreatePump(ctx context.Context, pump model.Pump) (*model.Pump, error)
}

type AuditStore interface {
	List(ctx context.Context, entityType string, limit int) ([]model.AuditLog, error)
}

type TankService struct {
	tanks TankStore
	audit AuditStore
	guard *inventory.Guard
}

func NewTankService(tanks TankStore, audit AuditStore) *TankService {
	return &TankService{
		tanks: tanks,
		audit: audit,
		guard: inventory.NewGuard(tanks),
	}
}

func (s *TankService) ListFuelTypes(ctx context.Context) ([]model.FuelType, error) {
	return s.tanks.ListFuelTypes(ctx)
}

func (s *TankService) ListTanks(ctx context.Context, includeInactive bool) ([]model.Tank, error) {
	return s.tanks.ListTanks(ctx, includeInactive)
}

type CreateTankInput struct {
	Name         string
	FuelTypeID   uuid.UUID
	CapacityLit  decimal.Decimal
	CurrentLevel decimal.Decimal
	AvgUnitCost  decimal.Decimal
	Principal    model.Principal
}

func (s *TankService) CreateTank(ctx context.Context, input CreateTankInput) (*model.Tank, error) {
	if !input.Principal.IsOwner() {
		return nil, ErrPermissionDenied
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	if err := positive("capacityLit", input.CapacityLit); err != nil {
		return nil, err
	}
	if input.CurrentLevel.IsNegative() || input.CurrentLevel.GreaterThan(input.CapacityLit) {
		return nil, invalid("currentLevel must be within [0, capacityLit]")
	}
	if input.AvgUnitCost.IsNegative() {
		return nil, invalid("avgUnitCost must not be negative")
	}
	if _, err := s.tanks.GetFuelType(ctx, input.FuelTypeID); err != nil {
		return nil, notFound(err, "fuel type")
	}

	return s.tanks.CreateTank(ctx, model.Tank{
		Name:         name,
		FuelTypeID:   input.FuelTypeID,
		CapacityLit:  input.CapacityLit,
		CurrentLevel: input.CurrentLevel,
		AvgUnitCost:  input.AvgUnitCost,
	}, repository.AuditMeta{Actor: input.Principal.UserID, Reason: "tank created"})
}

type UpdateTankInput struct {
	ID           uuid.UUID
	Name         *string
	CapacityLit  *decimal.Decimal
	CurrentLevel *decimal.Decimal
	Reason       string
	Principal    model.Principal
}

// UpdateTank edits a tank's name, capacity or level. Capacity changes go
// through the guard; a direct level edit must stay within [0, capacity].
// The checks run again against the locked row before writing.
func (s *TankService) UpdateTank(ctx context.Context, input UpdateTankInput) (*model.Tank, error) {
	if !input.Principal.IsOwner() {
		return nil, ErrPermissionDenied
	}
	if input.Name == nil && input.CapacityLit == nil && input.CurrentLevel == nil {
		return nil, invalid("nothing to update")
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, invalid("name must not be empty")
	}
	if input.CapacityLit != nil && input.CurrentLevel == nil {
		if _, err := s.guard.ValidateCapacityUpdate(ctx, input.ID, *input.CapacityLit); err != nil {
			return nil, s.guardError(err)
		}
	}

	meta := repository.AuditMeta{Actor: input.Principal.UserID, Reason: strings.TrimSpace(input.Reason)}
	tank, err := s.tanks.UpdateTank(ctx, input.ID, model.AuditActionTankUpdate, meta, func(current model.Tank) (model.Tank, error) {
		next := current
		if input.Name != nil {
			next.Name = strings.TrimSpace(*input.Name)
		}
		if input.CurrentLevel != nil {
			next.CurrentLevel = *input.CurrentLevel
		}
		if input.CapacityLit != nil {
			if _, err := inventory.CheckCapacity(next, *input.CapacityLit); err != nil {
				return current, err
			}
			next.CapacityLit = *input.CapacityLit
		}
		if next.CurrentLevel.IsNegative() || next.CurrentLevel.GreaterThan(next.CapacityLit) {
			return current, invalid("currentLevel must be within [0, capacityLit]")
		}
		return next, nil
	})
	if err != nil {
		return nil, s.guardError(err)
	}
	return tank, nil
}

func (s *TankService) DeactivateTank(ctx context.Context, id uuid.UUID, reason string, principal model.Principal) (*model.Tank, error) {
	if !principal.IsOwner() {
		return nil, ErrPermissionDenied
	}
	meta := repository.AuditMeta{Actor: principal.UserID, Reason: strings.TrimSpace(reason)}
	tank, err := s.tanks.UpdateTank(ctx, id, model.AuditActionTankDeactivate, meta, func(current model.Tank) (model.Tank, error) {
		if !current.IsActive {
			return current, ErrAlreadyProcessed
		}
		next := current
		next.IsActive = false
		return next, nil
	})
	if err != nil {
		return nil, notFound(err, "tank")
	}
	return tank, nil
}

// ValidateSale is a dry run of the sale check for display.
func (s *TankService) ValidateSale(ctx context.Context, tankID uuid.UUID, litres decimal.Decimal) (inventory.Availability, error) {
	result, err := s.guard.ValidateSale(ctx, tankID, litres)
	return result, s.guardError(err)
}

func (s *TankService) ValidatePurchase(ctx context.Context, tankID uuid.UUID, litres decimal.Decimal) (inventory.Availability, error) {
	result, err := s.guard.ValidatePurchase(ctx, tankID, litres)
	return result, s.guardError(err)
}

func (s *TankService) ListPumps(ctx context.Context) ([]model.Pump, error) {
	return s.tanks.ListPumps(ctx)
}

func (s *TankService) CreatePump(ctx context.Context, name string, fuelTypeID uuid.UUID, principal model.Principal) (*model.Pump, error) {
	if !principal.IsOwner() {
		return nil, ErrPermissionDenied
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name is required")
	}
	if _, err := s.tanks.GetFuelType(ctx, fuelTypeID); err != nil {
		return nil, notFound(err, "fuel type")
	}
	return s.tanks.CreatePump(ctx, model.Pump{Name: name, FuelTypeID: fuelTypeID})
}

func (s *TankService) AuditLogs(ctx context.Context, entityType string, limit int, principal model.Principal) ([]model.AuditLog, error) {
	if !principal.IsOwner() {
		return nil, ErrPermissionDenied
	}
	return s.audit.List(ctx, strings.TrimSpace(entityType), limit)
}

func (s *TankService) guardError(err error) error {
	if err == nil {
		return nil
	}
	err = notFound(err, "tank")
	var v *inventory.Violation
	if errors.As(err, &v) || errors.Is(err, ErrInvalidInput) {
		inventoryRejected(err)
	}
	return err
}
