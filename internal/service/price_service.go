package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/fuelops/internal/model"
	"github.com/nurpe/fuelops/internal/repository"
)

type PriceStore interface {
	Active(ctx context.Context) ([]model.Price, error)
	ActiveFor(ctx context.Context, fuelTypeID uuid.UUID) (*model.Price, error)
	History(ctx context.Context, fuelTypeID *uuid.UUID) ([]model.Price, error)
	Replace(ctx context.Context, fuelTypeID uuid.UUID, perLitre decimal.Decimal, effective time.Time, meta repository.AuditMeta) (*model.Price, error)
}

type FuelTypeDirectory interface {
	FuelTypesByName(ctx context.Context) (map[string]model.FuelType, error)
}

type PriceService struct {
	prices    PriceStore
	fuelTypes FuelTypeDirectory
	now       func() time.Time
}

func NewPriceService(prices PriceStore, fuelTypes FuelTypeDirectory) *PriceService {
	return &PriceService{prices: prices, fuelTypes: fuelTypes, now: time.Now}
}

type SetPricesInput struct {
	// Prices maps fuel type names, matched case-insensitively, to the new
	// price per litre.
	Prices    map[string]decimal.Decimal
	Date      *time.Time
	Principal model.Principal
}

// SetPrices replaces the active price of each named fuel type. Every name and
// value is checked before any price changes.
func (s *PriceService) SetPrices(ctx context.Context, input SetPricesInput) ([]model.Price, error) {
	if !input.Principal.IsOwner() {
		return nil, ErrPermissionDenied
	}
	if len(input.Prices) == 0 {
		return nil, invalid("prices must not be empty")
	}

	byName, err := s.fuelTypes.FuelTypesByName(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(input.Prices))
	for name := range input.Prices {
		names = append(names, name)
	}
	sort.Strings(names)

	type change struct {
		fuelType model.FuelType
		value    decimal.Decimal
	}
	changes := make([]change, 0, len(names))
	seen := make(map[uuid.UUID]string, len(names))
	for _, name := range names {
		ft, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, notFoundf("fuel type %q", name)
		}
		if other, dup := seen[ft.ID]; dup {
			return nil, invalid("%q and %q name the same fuel type", other, name)
		}
		seen[ft.ID] = name
		value := input.Prices[name]
		if err := positive("price for "+ft.Name, value); err != nil {
			return nil, err
		}
		changes = append(changes, change{fuelType: ft, value: value})
	}

	effective := s.now().UTC()
	if input.Date != nil && !input.Date.IsZero() {
		effective = dateOnly(*input.Date)
	}
	meta := repository.AuditMeta{Actor: input.Principal.UserID, Reason: "price snapshot"}

	result := make([]model.Price, 0, len(changes))
	for _, c := range changes {
		price, err := s.prices.Replace(ctx, c.fuelType.ID, c.value, effective, meta)
		if err != nil {
			return nil, err
		}
		result = append(result, *price)
	}
	return result, nil
}

func (s *PriceService) Active(ctx context.Context) ([]model.Price, error) {
	return s.prices.Active(ctx)
}

func (s *PriceService) History(ctx context.Context, fuelTypeID *uuid.UUID) ([]model.Price, error) {
	return s.prices.History(ctx, fuelTypeID)
}
