package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/nurpe/fuelops/internal/inventory"
	"github.com/nurpe/fuelops/internal/model"
)

func TestCreateTank(t *testing.T) {
	store := newMemStore()
	svc := NewTankService(store, auditStore{store})
	ctx := context.Background()
	petrol := store.fuel("Petrol")

	input := CreateTankInput{Name: "T1", FuelTypeID: petrol.ID, CapacityLit: d("1000"), CurrentLevel: d("200"), AvgUnitCost: d("7"), Principal: owner}
	tank, err := svc.CreateTank(ctx, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !tank.IsActive || !tank.CurrentLevel.Equal(d("200")) {
		t.Errorf("unexpected tank %+v", tank)
	}

	cases := []struct {
		name   string
		mutate func(*CreateTankInput)
		want   error
	}{
		{"worker", func(in *CreateTankInput) { in.Principal = worker }, ErrPermissionDenied},
		{"level above capacity", func(in *CreateTankInput) { in.CurrentLevel = d("1001") }, ErrInvalidInput},
		{"zero capacity", func(in *CreateTankInput) { in.CapacityLit = d("0"); in.CurrentLevel = d("0") }, ErrInvalidInput},
		{"unknown fuel", func(in *CreateTankInput) { in.FuelTypeID = uuid.New() }, ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := input
			tc.mutate(&in)
			if _, err := svc.CreateTank(ctx, in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestUpdateTankCapacity(t *testing.T) {
	store := newMemStore()
	tank := store.addTank("Diesel", "600", "1000", "6")
	svc := NewTankService(store, auditStore{store})
	ctx := context.Background()

	below := d("500")
	_, err := svc.UpdateTank(ctx, UpdateTankInput{ID: tank.ID, CapacityLit: &below, Principal: owner})
	if !errors.Is(err, ErrBelowCurrentLevel) {
		t.Fatalf("expected below current level, got %v", err)
	}
	var v *inventory.Violation
	if !errors.As(err, &v) || !v.Available.Equal(d("600")) {
		t.Errorf("unexpected violation %+v", v)
	}

	exact := d("600")
	updated, err := svc.UpdateTank(ctx, UpdateTankInput{ID: tank.ID, CapacityLit: &exact, Reason: "recalibrated", Principal: owner})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.CapacityLit.Equal(d("600")) {
		t.Errorf("capacity %s", updated.CapacityLit)
	}

	level := d("700")
	if _, err := svc.UpdateTank(ctx, UpdateTankInput{ID: tank.ID, CurrentLevel: &level, Principal: owner}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected level outside capacity to be rejected, got %v", err)
	}

	if _, err := svc.UpdateTank(ctx, UpdateTankInput{ID: tank.ID, CapacityLit: &exact, Principal: worker}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}

	logs, err := svc.AuditLogs(ctx, "tank", 10, owner)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 || logs[0].Action != model.AuditActionTankUpdate || logs[0].Reason != "recalibrated" {
		t.Errorf("unexpected audit %+v", logs)
	}
}

func TestDeactivateTank(t *testing.T) {
	store := newMemStore()
	tank := store.addTank("Diesel", "0", "1000", "6")
	svc := NewTankService(store, auditStore{store})
	ctx := context.Background()

	got, err := svc.DeactivateTank(ctx, tank.ID, "decommissioned", owner)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if got.IsActive {
		t.Error("tank still active")
	}
	if _, err := svc.DeactivateTank(ctx, tank.ID, "again", owner); !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("expected already processed, got %v", err)
	}
	if _, err := svc.DeactivateTank(ctx, uuid.New(), "", owner); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.ValidatePurchase(ctx, tank.ID, d("10")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected inactive tank rejection, got %v", err)
	}
}

func TestValidateSaleAndPurchase(t *testing.T) {
	store := newMemStore()
	tank := store.addTank("Petrol", "300", "1000", "7")
	svc := NewTankService(store, auditStore{store})
	ctx := context.Background()

	avail, err := svc.ValidateSale(ctx, tank.ID, d("300"))
	if err != nil {
		t.Fatalf("validate sale: %v", err)
	}
	if !avail.Headroom.Equal(d("700")) {
		t.Errorf("expected headroom 700, got %s", avail.Headroom)
	}
	if _, err := svc.ValidateSale(ctx, tank.ID, d("300.5")); !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("expected insufficient stock, got %v", err)
	}
	if _, err := svc.ValidatePurchase(ctx, tank.ID, d("701")); !errors.Is(err, ErrInsufficientCapacity) {
		t.Errorf("expected insufficient capacity, got %v", err)
	}
	if _, err := svc.ValidatePurchase(ctx, uuid.New(), d("1")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if !store.tanks[tank.ID].CurrentLevel.Equal(d("300")) {
		t.Error("validation moved the tank")
	}
}
