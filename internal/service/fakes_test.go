package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/fuelops/internal/inventory"
	"github.com/nurpe/fuelops/internal/model"
	"github.com/nurpe/fuelops/internal/repository"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

var (
	owner  = model.Principal{UserID: "owner-1", Role: model.RoleOwner}
	worker = model.Principal{UserID: "worker-1", Role: model.RoleWorker}
	noMeta = repository.AuditMeta{}
)

type readingKey struct {
	pump uuid.UUID
	date time.Time
}

// memStore keeps station state in maps and applies the same guarded updates
// the SQL repositories do.
type memStore struct {
	fuelTypes map[uuid.UUID]model.FuelType
	tanks     map[uuid.UUID]*model.Tank
	pumps     map[uuid.UUID]*model.Pump
	prices    []*model.Price
	readings  map[readingKey]*model.DailyReading
	sales     []model.Sale
	purchases map[uuid.UUID]*model.Purchase
	clients   map[uuid.UUID]*model.Client
	credits   map[uuid.UUID]*model.ClientCredit
	audit     []model.AuditLog

	// stale makes the next guarded tank update fail as if another writer got
	// there first.
	stale bool
}

func newMemStore() *memStore {
	s := &memStore{
		fuelTypes: map[uuid.UUID]model.FuelType{},
		tanks:     map[uuid.UUID]*model.Tank{},
		pumps:     map[uuid.UUID]*model.Pump{},
		readings:  map[readingKey]*model.DailyReading{},
		purchases: map[uuid.UUID]*model.Purchase{},
		clients:   map[uuid.UUID]*model.Client{},
		credits:   map[uuid.UUID]*model.ClientCredit{},
	}
	for _, name := range []string{"Petrol", "Diesel", "Premium Petrol"} {
		ft := model.FuelType{ID: uuid.New(), Name: name}
		s.fuelTypes[ft.ID] = ft
	}
	return s
}

func (s *memStore) fuel(name string) model.FuelType {
	for _, ft := range s.fuelTypes {
		if ft.Name == name {
			return ft
		}
	}
	panic("unknown fuel " + name)
}

func (s *memStore) addTank(fuel, level, capacity, avg string) *model.Tank {
	ft := s.fuel(fuel)
	t := &model.Tank{
		ID:           uuid.New(),
		Name:         fuel + " tank",
		FuelTypeID:   ft.ID,
		FuelTypeName: ft.Name,
		CapacityLit:  d(capacity),
		CurrentLevel: d(level),
		AvgUnitCost:  d(avg),
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	s.tanks[t.ID] = t
	return t
}

func (s *memStore) addPump(fuel string) *model.Pump {
	ft := s.fuel(fuel)
	p := &model.Pump{ID: uuid.New(), Name: fuel + " pump", FuelTypeID: ft.ID, FuelTypeName: ft.Name, IsActive: true}
	s.pumps[p.ID] = p
	return p
}

func (s *memStore) addClient(limit, balance string) *model.Client {
	c := &model.Client{ID: uuid.New(), Name: "Client", CreditLimit: d(limit), Balance: d(balance), IsActive: true}
	s.clients[c.ID] = c
	return c
}

func (s *memStore) withdraw(tankID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	t, ok := s.tanks[tankID]
	if !ok || !t.IsActive {
		return decimal.Zero, repository.ErrConditionFailed
	}
	if delta.IsZero() {
		return t.CurrentLevel, nil
	}
	next := t.CurrentLevel.Sub(delta)
	if s.stale || next.IsNegative() || next.GreaterThan(t.CapacityLit) {
		s.stale = false
		return decimal.Zero, &repository.TankConflict{TankID: tankID, Delta: delta}
	}
	t.CurrentLevel = next
	return next, nil
}

// TankStore

func (s *memStore) ListFuelTypes(context.Context) ([]model.FuelType, error) {
	out := make([]model.FuelType, 0, len(s.fuelTypes))
	for _, ft := range s.fuelTypes {
		out = append(out, ft)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memStore) GetFuelType(_ context.Context, id uuid.UUID) (*model.FuelType, error) {
	ft, ok := s.fuelTypes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &ft, nil
}

func (s *memStore) FuelTypesByName(context.Context) (map[string]model.FuelType, error) {
	out := make(map[string]model.FuelType, len(s.fuelTypes))
	for _, ft := range s.fuelTypes {
		out[strings.ToLower(ft.Name)] = ft
	}
	return out, nil
}

func (s *memStore) ListTanks(_ context.Context, includeInactive bool) ([]model.Tank, error) {
	var out []model.Tank
	for _, t := range s.tanks {
		if t.IsActive || includeInactive {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *memStore) GetTank(_ context.Context, id uuid.UUID) (*model.Tank, error) {
	t, ok := s.tanks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *memStore) ActiveTankForFuelType(_ context.Context, fuelTypeID uuid.UUID) (*model.Tank, error) {
	for _, t := range s.tanks {
		if t.FuelTypeID == fuelTypeID && t.IsActive {
			copied := *t
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memStore) CreateTank(_ context.Context, tank model.Tank, meta repository.AuditMeta) (*model.Tank, error) {
	tank.ID = uuid.New()
	tank.IsActive = true
	s.tanks[tank.ID] = &tank
	s.audit = append(s.audit, model.AuditLog{Action: model.AuditActionTankCreate, EntityType: "tank", EntityID: tank.ID, Actor: meta.Actor})
	copied := tank
	return &copied, nil
}

func (s *memStore) UpdateTank(
	_ context.Context,
	id uuid.UUID,
	action string,
	meta repository.AuditMeta,
	mutate func(current model.Tank) (model.Tank, error),
) (*model.Tank, error) {
	t, ok := s.tanks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	next, err := mutate(*t)
	if err != nil {
		return nil, err
	}
	*t = next
	s.audit = append(s.audit, model.AuditLog{Action: action, EntityType: "tank", EntityID: id, Actor: meta.Actor, Reason: meta.Reason})
	copied := next
	return &copied, nil
}

func (s *memStore) ListPumps(context.Context) ([]model.Pump, error) {
	var out []model.Pump
	for _, p := range s.pumps {
		out = append(out, *p)
	}
	return out, nil
}

func (s *memStore) GetPump(_ context.Context, id uuid.UUID) (*model.Pump, error) {
	p, ok := s.pumps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *memStore) CreatePump(_ context.Context, pump model.Pump) (*model.Pump, error) {
	pump.ID = uuid.New()
	pump.IsActive = true
	s.pumps[pump.ID] = &pump
	copied := pump
	return &copied, nil
}

// ReadingStore

func (s *memStore) GetReading(_ context.Context, pumpID uuid.UUID, date time.Time) (*model.DailyReading, error) {
	r, ok := s.readings[readingKey{pumpID, date}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *r
	return &copied, nil
}

func (s *memStore) ListReadings(_ context.Context, from, to time.Time, pumpID *uuid.UUID) ([]model.DailyReading, error) {
	var out []model.DailyReading
	for k, r := range s.readings {
		if k.date.Before(from) || !k.date.Before(to) {
			continue
		}
		if pumpID != nil && k.pump != *pumpID {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (s *memStore) upsert(reading model.DailyReading) (model.DailyReading, decimal.Decimal, bool) {
	k := readingKey{reading.PumpID, reading.Date}
	previous := decimal.Zero
	existing, existed := s.readings[k]
	if existed {
		previous = existing.FuelSold
		reading.ID = existing.ID
	} else {
		reading.ID = uuid.New()
	}
	s.readings[k] = &reading
	return reading, previous, existed
}

func (s *memStore) snapshot() (map[uuid.UUID]decimal.Decimal, map[readingKey]*model.DailyReading) {
	levels := make(map[uuid.UUID]decimal.Decimal, len(s.tanks))
	for id, t := range s.tanks {
		levels[id] = t.CurrentLevel
	}
	readings := make(map[readingKey]*model.DailyReading, len(s.readings))
	for k, r := range s.readings {
		copied := *r
		readings[k] = &copied
	}
	return levels, readings
}

func (s *memStore) restore(levels map[uuid.UUID]decimal.Decimal, readings map[readingKey]*model.DailyReading) {
	for id, level := range levels {
		s.tanks[id].CurrentLevel = level
	}
	s.readings = readings
}

func (s *memStore) Record(_ context.Context, entry repository.ReadingEntry) (*model.ReadingResult, error) {
	levels, readings := s.snapshot()
	saved, previous, existed := s.upsert(entry.Reading)
	delta := saved.FuelSold.Sub(previous)
	level, err := s.withdraw(entry.TankID, delta)
	if err != nil {
		s.restore(levels, readings)
		return nil, err
	}
	return &model.ReadingResult{Reading: saved, TankID: entry.TankID, NetDelta: delta, TankLevel: level, Updated: existed}, nil
}

func (s *memStore) RecordBulk(_ context.Context, entries []repository.ReadingEntry) (*model.BulkReadingResult, error) {
	levels, readings := s.snapshot()
	result := &model.BulkReadingResult{}
	deltas := map[uuid.UUID]*model.TankAdjustment{}
	var order []uuid.UUID
	for _, entry := range entries {
		saved, previous, _ := s.upsert(entry.Reading)
		result.Readings = append(result.Readings, saved)
		adj, ok := deltas[entry.TankID]
		if !ok {
			adj = &model.TankAdjustment{TankID: entry.TankID, FuelTypeID: entry.FuelTypeID}
			deltas[entry.TankID] = adj
			order = append(order, entry.TankID)
		}
		adj.NetDelta = adj.NetDelta.Add(saved.FuelSold.Sub(previous))
	}
	for _, id := range order {
		adj := deltas[id]
		level, err := s.withdraw(id, adj.NetDelta)
		if err != nil {
			s.restore(levels, readings)
			return nil, err
		}
		adj.TankLevel = level
		result.Adjustments = append(result.Adjustments, *adj)
	}
	return result, nil
}

func (s *memStore) CreateSale(_ context.Context, sale model.Sale) (*model.Sale, decimal.Decimal, error) {
	level, err := s.withdraw(sale.TankID, sale.Litres)
	if err != nil {
		return nil, decimal.Zero, err
	}
	sale.ID = uuid.New()
	s.sales = append(s.sales, sale)
	return &sale, level, nil
}

// PriceStore

func (s *memStore) Active(context.Context) ([]model.Price, error) {
	var out []model.Price
	for _, p := range s.prices {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *memStore) ActiveFor(_ context.Context, fuelTypeID uuid.UUID) (*model.Price, error) {
	for _, p := range s.prices {
		if p.IsActive && p.FuelTypeID == fuelTypeID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memStore) History(_ context.Context, fuelTypeID *uuid.UUID) ([]model.Price, error) {
	var out []model.Price
	for _, p := range s.prices {
		if fuelTypeID == nil || p.FuelTypeID == *fuelTypeID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *memStore) Replace(_ context.Context, fuelTypeID uuid.UUID, perLitre decimal.Decimal, effective time.Time, meta repository.AuditMeta) (*model.Price, error) {
	for _, p := range s.prices {
		if p.FuelTypeID == fuelTypeID {
			p.IsActive = false
		}
	}
	p := &model.Price{ID: uuid.New(), FuelTypeID: fuelTypeID, PerLitre: perLitre, IsActive: true, CreatedAt: effective}
	s.prices = append(s.prices, p)
	s.audit = append(s.audit, model.AuditLog{Action: model.AuditActionPriceSet, EntityType: "fuel_type", EntityID: fuelTypeID, Actor: meta.Actor})
	copied := *p
	return &copied, nil
}

// CreditStore

func (s *memStore) CreateClient(_ context.Context, c model.Client) (*model.Client, error) {
	c.ID = uuid.New()
	c.IsActive = true
	s.clients[c.ID] = &c
	copied := c
	return &copied, nil
}

func (s *memStore) GetClient(_ context.Context, id uuid.UUID) (*model.Client, error) {
	c, ok := s.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *memStore) ListClients(context.Context, bool) ([]model.Client, error) {
	var out []model.Client
	for _, c := range s.clients {
		out = append(out, *c)
	}
	return out, nil
}

func (s *memStore) UpdateClient(_ context.Context, c model.Client) (*model.Client, error) {
	existing, ok := s.clients[c.ID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c.Balance = existing.Balance
	*existing = c
	copied := c
	return &copied, nil
}

func (s *memStore) CreateCredit(_ context.Context, credit model.ClientCredit) (*model.CreditResult, error) {
	c, ok := s.clients[credit.ClientID]
	if !ok || !c.IsActive || c.Balance.Add(credit.TotalAmount).GreaterThan(c.CreditLimit) {
		return nil, repository.ErrConditionFailed
	}
	c.Balance = c.Balance.Add(credit.TotalAmount)
	credit.ID = uuid.New()
	credit.Status = model.CreditStatusUnpaid
	s.credits[credit.ID] = &credit
	return &model.CreditResult{Credit: credit, ClientBalance: c.Balance}, nil
}

func (s *memStore) GetCredit(_ context.Context, id uuid.UUID) (*model.ClientCredit, error) {
	c, ok := s.credits[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *memStore) ListCredits(_ context.Context, clientID *uuid.UUID, status *model.CreditStatus) ([]model.ClientCredit, error) {
	var out []model.ClientCredit
	for _, c := range s.credits {
		if clientID != nil && c.ClientID != *clientID {
			continue
		}
		if status != nil && c.Status != *status {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *memStore) MarkPaid(_ context.Context, id uuid.UUID, method model.PaymentMethod, paidAt time.Time) (*model.CreditResult, error) {
	credit, ok := s.credits[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if credit.Status == model.CreditStatusPaid {
		return nil, repository.ErrAlreadyApplied
	}
	credit.Status = model.CreditStatusPaid
	credit.PaymentMethod = &method
	credit.PaidDate = &paidAt
	client := s.clients[credit.ClientID]
	client.Balance = client.Balance.Sub(credit.TotalAmount)
	return &model.CreditResult{Credit: *credit, ClientBalance: client.Balance}, nil
}

func (s *memStore) outstanding(clientID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, c := range s.credits {
		if c.ClientID == clientID && c.Status == model.CreditStatusUnpaid {
			total = total.Add(c.TotalAmount)
		}
	}
	return total
}

// purchaseStore and auditStore adapt memStore to interfaces whose method
// names overlap.
type purchaseStore struct{ *memStore }

func (s purchaseStore) Create(_ context.Context, p model.Purchase) (*model.Purchase, error) {
	p.ID = uuid.New()
	p.Status = model.PurchaseStatusPending
	s.purchases[p.ID] = &p
	copied := p
	return &copied, nil
}

func (s purchaseStore) Get(_ context.Context, id uuid.UUID) (*model.Purchase, error) {
	p, ok := s.purchases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (s purchaseStore) List(_ context.Context, status *model.PurchaseStatus) ([]model.Purchase, error) {
	var out []model.Purchase
	for _, p := range s.purchases {
		if status == nil || p.Status == *status {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s purchaseStore) Unload(_ context.Context, id uuid.UUID) (*model.UnloadResult, error) {
	p, ok := s.purchases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if p.Status == model.PurchaseStatusUnloaded {
		return nil, repository.ErrAlreadyApplied
	}
	t := s.tanks[p.TankID]
	avg := inventory.BlendedCost(t.AvgUnitCost, t.CurrentLevel, p.UnitCost, p.Litres)
	if _, err := s.withdraw(p.TankID, p.Litres.Neg()); err != nil {
		return nil, err
	}
	t.AvgUnitCost = avg
	now := time.Now()
	p.Status = model.PurchaseStatusUnloaded
	p.UnloadedAt = &now
	return &model.UnloadResult{Purchase: *p, TankLevel: t.CurrentLevel, AvgUnitCost: avg}, nil
}

type auditStore struct{ *memStore }

func (s auditStore) List(_ context.Context, entityType string, _ int) ([]model.AuditLog, error) {
	var out []model.AuditLog
	for _, l := range s.audit {
		if entityType == "" || l.EntityType == entityType {
			out = append(out, l)
		}
	}
	return out, nil
}
