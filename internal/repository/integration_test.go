package repository

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nurpe/fuelops/internal/db"
	"github.com/nurpe/fuelops/internal/model"
)

var (
	dsnOnce   sync.Once
	dsn       string
	dsnErr    error
	container *postgres.PostgresContainer
)

func TestMain(m *testing.M) {
	code := m.Run()
	if container != nil {
		_ = testcontainers.TerminateContainer(container)
	}
	os.Exit(code)
}

// testDB connects to DATABASE_URL when set and otherwise starts a disposable
// postgres container shared by the package. Tables are emptied per test.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	if os.Getenv("INTEGRATION_TESTS") == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run database tests")
	}

	dsnOnce.Do(func() {
		if url := os.Getenv("DATABASE_URL"); url != "" {
			dsn = url
			return
		}
		ctx := context.Background()
		var err error
		container, err = postgres.Run(ctx, "postgres:16-alpine",
			postgres.WithDatabase("fuelops_test"),
			postgres.WithUsername("fuelops"),
			postgres.WithPassword("fuelops"),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			dsnErr = err
			return
		}
		dsn, dsnErr = container.ConnectionString(ctx, "sslmode=disable")
	})
	if dsnErr != nil {
		t.Fatalf("start postgres: %v", dsnErr)
	}

	database, err := db.Open(dsn, gormlogger.Silent)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.Exec(`TRUNCATE audit_logs, online_payments, cash_receipts, client_credits, purchases,
		sales, daily_readings, clients, prices, pumps, tanks CASCADE`).Error; err != nil {
		t.Fatalf("truncate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return database
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

type fixture struct {
	tanks    *TankRepository
	readings *ReadingRepository
	tank     *model.Tank
	pump     *model.Pump
}

func newFixture(t *testing.T, database *gorm.DB, level, capacity string) fixture {
	t.Helper()
	ctx := context.Background()
	tanks := NewTankRepository(database)
	byName, err := tanks.FuelTypesByName(ctx)
	if err != nil {
		t.Fatal(err)
	}
	petrol, ok := byName["petrol"]
	if !ok {
		t.Fatal("petrol not seeded")
	}
	tank, err := tanks.CreateTank(ctx, model.Tank{
		Name:         "T1",
		FuelTypeID:   petrol.ID,
		CapacityLit:  dec(capacity),
		CurrentLevel: dec(level),
		AvgUnitCost:  dec("7"),
	}, AuditMeta{Actor: "owner"})
	if err != nil {
		t.Fatalf("create tank: %v", err)
	}
	pump, err := tanks.CreatePump(ctx, model.Pump{Name: "P1", FuelTypeID: petrol.ID})
	if err != nil {
		t.Fatalf("create pump: %v", err)
	}
	return fixture{tanks: tanks, readings: NewReadingRepository(database), tank: tank, pump: pump}
}

func (f fixture) entry(date time.Time, opening, closing, price string) ReadingEntry {
	sold := dec(closing).Sub(dec(opening))
	return ReadingEntry{
		Reading: model.DailyReading{
			PumpID:        f.pump.ID,
			Date:          date,
			OpeningLitres: dec(opening),
			ClosingLitres: dec(closing),
			FuelSold:      sold,
			PricePerLitre: dec(price),
			Revenue:       sold.Mul(dec(price)),
		},
		TankID:     f.tank.ID,
		FuelTypeID: f.tank.FuelTypeID,
	}
}

func TestReadingRecordAndResubmit(t *testing.T) {
	database := testDB(t)
	f := newFixture(t, database, "500", "1000")
	ctx := context.Background()
	date := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	first, err := f.readings.Record(ctx, f.entry(date, "0", "50", "10"))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !first.TankLevel.Equal(dec("450")) || first.Updated {
		t.Fatalf("unexpected result %+v", first)
	}

	second, err := f.readings.Record(ctx, f.entry(date, "0", "80", "10"))
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if !second.NetDelta.Equal(dec("30")) || !second.TankLevel.Equal(dec("420")) || !second.Updated {
		t.Fatalf("unexpected result %+v", second)
	}

	rows, err := f.readings.ListReadings(ctx, date, date.AddDate(0, 0, 1), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || !rows[0].FuelSold.Equal(dec("80")) {
		t.Errorf("unexpected readings %+v", rows)
	}
}

func TestReadingConflictRollsBack(t *testing.T) {
	database := testDB(t)
	f := newFixture(t, database, "40", "1000")
	ctx := context.Background()
	date := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	_, err := f.readings.Record(ctx, f.entry(date, "0", "50", "10"))
	var conflict *TankConflict
	if !errors.As(err, &conflict) || conflict.TankID != f.tank.ID {
		t.Fatalf("expected tank conflict, got %v", err)
	}
	if _, err := f.readings.GetReading(ctx, f.pump.ID, date); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("reading survived rollback: %v", err)
	}
	tank, err := f.tanks.GetTank(ctx, f.tank.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !tank.CurrentLevel.Equal(dec("40")) {
		t.Errorf("level %s after rollback", tank.CurrentLevel)
	}
}

func TestConcurrentSalesNeverOverdraw(t *testing.T) {
	database := testDB(t)
	f := newFixture(t, database, "500", "1000")
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.readings.CreateSale(ctx, model.Sale{
				PumpID:        f.pump.ID,
				TankID:        f.tank.ID,
				FuelTypeID:    f.tank.FuelTypeID,
				Date:          time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
				Litres:        dec("60"),
				PricePerLitre: dec("10"),
				Revenue:       dec("600"),
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, ErrConditionFailed) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 8 {
		t.Errorf("expected 8 sales to fit, got %d", succeeded)
	}
	tank, err := f.tanks.GetTank(ctx, f.tank.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !tank.CurrentLevel.Equal(dec("20")) {
		t.Errorf("expected level 20, got %s", tank.CurrentLevel)
	}
}

func TestUnloadOnce(t *testing.T) {
	database := testDB(t)
	f := newFixture(t, database, "450", "1000")
	purchases := NewPurchaseRepository(database)
	ctx := context.Background()

	p, err := purchases.Create(ctx, model.Purchase{
		TankID:    f.tank.ID,
		Supplier:  "Depot",
		Litres:    dec("200"),
		UnitCost:  dec("8"),
		TotalCost: dec("1600"),
		Status:    model.PurchaseStatusPending,
		Date:      time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	result, err := purchases.Unload(ctx, p.ID)
	if err != nil {
		t.Fatalf("unload: %v", err)
	}
	if !result.TankLevel.Equal(dec("650")) || !result.AvgUnitCost.Equal(dec("7.3077")) {
		t.Errorf("unexpected result %+v", result)
	}
	if result.Purchase.Status != model.PurchaseStatusUnloaded || result.Purchase.UnloadedAt == nil {
		t.Errorf("purchase not marked unloaded: %+v", result.Purchase)
	}

	if _, err := purchases.Unload(ctx, p.ID); !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("expected already applied, got %v", err)
	}
	tank, _ := f.tanks.GetTank(ctx, f.tank.ID)
	if !tank.CurrentLevel.Equal(dec("650")) {
		t.Errorf("second unload moved level to %s", tank.CurrentLevel)
	}
}

func TestCreditLedger(t *testing.T) {
	database := testDB(t)
	f := newFixture(t, database, "0", "1000")
	credits := NewCreditRepository(database)
	ctx := context.Background()

	client, err := credits.CreateClient(ctx, model.Client{Name: "Fleet", CreditLimit: dec("1000")})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	credit := func(amount string) (*model.CreditResult, error) {
		return credits.CreateCredit(ctx, model.ClientCredit{
			ClientID:      client.ID,
			FuelTypeID:    f.tank.FuelTypeID,
			Litres:        dec("1"),
			PricePerLitre: dec(amount),
			TotalAmount:   dec(amount),
			CreditDate:    time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			Status:        model.CreditStatusUnpaid,
		})
	}

	first, err := credit("600")
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if _, err := credit("500"); !errors.Is(err, ErrConditionFailed) {
		t.Fatalf("expected limit to hold, got %v", err)
	}
	second, err := credit("400")
	if err != nil {
		t.Fatalf("credit to the limit: %v", err)
	}

	paidOn := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)
	paid, err := credits.MarkPaid(ctx, first.Credit.ID, model.PaymentMethodWorker, paidOn)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if !paid.ClientBalance.Equal(dec("400")) {
		t.Errorf("expected balance 400, got %s", paid.ClientBalance)
	}
	if _, err := credits.MarkPaid(ctx, first.Credit.ID, model.PaymentMethodOwner, time.Now()); !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("expected already applied, got %v", err)
	}

	if _, err := credits.MarkPaid(ctx, second.Credit.ID, model.PaymentMethodOwner, paidOn); err != nil {
		t.Fatalf("owner settlement: %v", err)
	}
	totals, err := NewReportRepository(database).Totals(ctx, paidOn, paidOn.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if !totals.CreditPayments.Equal(dec("600")) || !totals.OwnerCreditPayments.Equal(dec("400")) {
		t.Errorf("settlements split as received %s owner %s", totals.CreditPayments, totals.OwnerCreditPayments)
	}

	outstanding, err := credits.OutstandingByClient(ctx)
	if err != nil {
		t.Fatal(err)
	}
	stored, _ := credits.GetClient(ctx, client.ID)
	if !outstanding[client.ID].Equal(stored.Balance) {
		t.Errorf("balance %s differs from unpaid total %s", stored.Balance, outstanding[client.ID])
	}
}

func TestPriceReplaceAndReportTotals(t *testing.T) {
	database := testDB(t)
	f := newFixture(t, database, "500", "1000")
	prices := NewPriceRepository(database)
	reports := NewReportRepository(database)
	receipts := NewReceiptRepository(database)
	ctx := context.Background()
	date := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	for _, v := range []string{"100", "101"} {
		if _, err := prices.Replace(ctx, f.tank.FuelTypeID, dec(v), date, AuditMeta{Actor: "owner"}); err != nil {
			t.Fatalf("replace: %v", err)
		}
	}
	active, err := prices.Active(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 || !active[0].PerLitre.Equal(dec("101")) {
		t.Fatalf("unexpected active prices %+v", active)
	}

	if _, err := f.readings.Record(ctx, f.entry(date, "0", "100", "10")); err != nil {
		t.Fatal(err)
	}
	if _, err := receipts.CreateCash(ctx, model.CashReceipt{Date: date, Amount: dec("600")}); err != nil {
		t.Fatal(err)
	}
	if _, err := receipts.CreateOnline(ctx, model.OnlinePayment{Date: date, Amount: dec("400"), Provider: "upi"}); err != nil {
		t.Fatal(err)
	}

	totals, err := reports.Totals(ctx, date, date.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if !totals.ReadingSales.Equal(dec("1000")) || !totals.CashReceipts.Equal(dec("600")) || !totals.OnlinePayments.Equal(dec("400")) {
		t.Errorf("unexpected totals %+v", totals)
	}
	count, err := reports.CountReadings(ctx, date, date.AddDate(0, 0, 1))
	if err != nil || count != 1 {
		t.Errorf("count %d err %v", count, err)
	}
	missing, err := reports.PumpsWithoutReading(ctx, date.AddDate(0, 0, 1))
	if err != nil || len(missing) != 1 {
		t.Errorf("expected the pump to be missing the next day, got %d err %v", len(missing), err)
	}
}

func TestCreateTankAndPump(t *testing.T) {
	database := testDB(t)
	f := newFixture(t, database, "250", "1000")
	ctx := context.Background()

	if f.tank.ID == uuid.Nil || f.pump.ID == uuid.Nil {
		t.Fatalf("ids not returned: tank %s pump %s", f.tank.ID, f.pump.ID)
	}
	if f.tank.FuelTypeName != "Petrol" || !f.tank.CurrentLevel.Equal(dec("250")) || !f.tank.IsActive {
		t.Errorf("unexpected tank %+v", f.tank)
	}
	if f.pump.FuelTypeID != f.tank.FuelTypeID || !f.pump.IsActive {
		t.Errorf("unexpected pump %+v", f.pump)
	}
	logs, err := NewAuditRepository(database).List(ctx, "tank", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 || logs[0].EntityID != f.tank.ID {
		t.Errorf("expected one audit entry for the tank, got %+v", logs)
	}
}

func TestPriceReplaceKeepsOneActivePerFuel(t *testing.T) {
	database := testDB(t)
	prices := NewPriceRepository(database)
	ctx := context.Background()
	byName, err := NewTankRepository(database).FuelTypesByName(ctx)
	if err != nil {
		t.Fatal(err)
	}
	petrol, diesel := byName["petrol"].ID, byName["diesel"].ID
	date := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	if _, err := prices.Replace(ctx, diesel, dec("90"), date, AuditMeta{Actor: "owner"}); err != nil {
		t.Fatalf("replace diesel: %v", err)
	}

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			saved, err := prices.Replace(ctx, petrol, dec("100").Add(decimal.NewFromInt(int64(i))), date, AuditMeta{Actor: "owner"})
			if err == nil && saved.ID == uuid.Nil {
				err = errors.New("price id not returned")
			}
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("replace petrol: %v", err)
		}
	}

	var counts []struct {
		FuelTypeID uuid.UUID
		Active     int64
	}
	if err := database.Raw(`
		SELECT fuel_type_id, COUNT(*) AS active FROM prices WHERE is_active GROUP BY fuel_type_id
	`).Scan(&counts).Error; err != nil {
		t.Fatal(err)
	}
	if len(counts) != 2 {
		t.Fatalf("expected active prices for two fuels, got %+v", counts)
	}
	for _, c := range counts {
		if c.Active != 1 {
			t.Errorf("fuel %s has %d active prices", c.FuelTypeID, c.Active)
		}
	}
	history, err := prices.History(ctx, &petrol)
	if err != nil || len(history) != writers {
		t.Errorf("expected %d petrol prices in history, got %d err %v", writers, len(history), err)
	}

	err = database.Exec(`INSERT INTO prices (fuel_type_id, per_litre, is_active) VALUES (?, 1, TRUE)`, petrol).Error
	if err == nil {
		t.Error("second active price for a fuel type was accepted")
	}
}
