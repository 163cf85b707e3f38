package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`CREATE TABLE IF NOT EXISTS fuel_types (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(64) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_fuel_types_name ON fuel_types (LOWER(name));`,
	`INSERT INTO fuel_types (name) VALUES ('Petrol'), ('Diesel'), ('Premium Petrol')
		ON CONFLICT DO NOTHING;`,
	`CREATE TABLE IF NOT EXISTS tanks (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(128) NOT NULL,
		fuel_type_id UUID NOT NULL REFERENCES fuel_types(id),
		capacity_lit NUMERIC(14,3) NOT NULL CHECK (capacity_lit > 0),
		current_level NUMERIC(14,3) NOT NULL DEFAULT 0,
		avg_unit_cost NUMERIC(14,4) NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT chk_tanks_level CHECK (current_level >= 0 AND current_level <= capacity_lit)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_tanks_fuel_type_id ON tanks (fuel_type_id) WHERE is_active;`,
	`CREATE TABLE IF NOT EXISTS pumps (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(128) NOT NULL,
		fuel_type_id UUID NOT NULL REFERENCES fuel_types(id),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS prices (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		fuel_type_id UUID NOT NULL REFERENCES fuel_types(id),
		per_litre NUMERIC(12,4) NOT NULL CHECK (per_litre > 0),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_prices_fuel_type_created ON prices (fuel_type_id, created_at DESC);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_prices_active_fuel_type ON prices (fuel_type_id) WHERE is_active;`,
	`CREATE TABLE IF NOT EXISTS clients (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(255) NOT NULL,
		owner_name VARCHAR(255) NOT NULL DEFAULT '',
		phone VARCHAR(32) NOT NULL DEFAULT '',
		credit_limit NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (credit_limit >= 0),
		balance NUMERIC(14,2) NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS daily_readings (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		pump_id UUID NOT NULL REFERENCES pumps(id),
		date DATE NOT NULL,
		opening_litres NUMERIC(14,3) NOT NULL,
		closing_litres NUMERIC(14,3) NOT NULL,
		fuel_sold NUMERIC(14,3) NOT NULL,
		price_per_litre NUMERIC(12,4) NOT NULL,
		revenue NUMERIC(14,2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_daily_readings_pump_date ON daily_readings (pump_id, date);`,
	`CREATE INDEX IF NOT EXISTS idx_daily_readings_date ON daily_readings (date);`,
	`CREATE TABLE IF NOT EXISTS sales (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		pump_id UUID NOT NULL REFERENCES pumps(id),
		tank_id UUID NOT NULL REFERENCES tanks(id),
		fuel_type_id UUID NOT NULL REFERENCES fuel_types(id),
		date DATE NOT NULL,
		litres NUMERIC(14,3) NOT NULL CHECK (litres > 0),
		price_per_litre NUMERIC(12,4) NOT NULL,
		revenue NUMERIC(14,2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_sales_date ON sales (date);`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'purchase_status') THEN
			CREATE TYPE purchase_status AS ENUM ('pending', 'unloaded');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'credit_status') THEN
			CREATE TYPE credit_status AS ENUM ('unpaid', 'paid');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'payment_method') THEN
			CREATE TYPE payment_method AS ENUM ('UPI', 'Worker', 'Owner');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS purchases (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		tank_id UUID NOT NULL REFERENCES tanks(id),
		supplier VARCHAR(255) NOT NULL DEFAULT '',
		litres NUMERIC(14,3) NOT NULL CHECK (litres > 0),
		unit_cost NUMERIC(12,4) NOT NULL CHECK (unit_cost > 0),
		total_cost NUMERIC(14,2) NOT NULL,
		status purchase_status NOT NULL DEFAULT 'pending',
		date DATE NOT NULL,
		unloaded_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_purchases_tank_id ON purchases (tank_id, date DESC);`,
	`CREATE TABLE IF NOT EXISTS client_credits (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		client_id UUID NOT NULL REFERENCES clients(id),
		fuel_type_id UUID NOT NULL REFERENCES fuel_types(id),
		litres NUMERIC(14,3) NOT NULL CHECK (litres > 0),
		price_per_litre NUMERIC(12,4) NOT NULL,
		total_amount NUMERIC(14,2) NOT NULL CHECK (total_amount > 0),
		credit_date DATE NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		status credit_status NOT NULL DEFAULT 'unpaid',
		payment_method payment_method,
		paid_date TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_client_credits_client_status ON client_credits (client_id, status);`,
	`CREATE INDEX IF NOT EXISTS idx_client_credits_credit_date ON client_credits (credit_date);`,
	`CREATE INDEX IF NOT EXISTS idx_client_credits_paid_date ON client_credits (paid_date) WHERE paid_date IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS cash_receipts (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		date DATE NOT NULL,
		amount NUMERIC(14,2) NOT NULL CHECK (amount > 0),
		note TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_cash_receipts_date ON cash_receipts (date);`,
	`CREATE TABLE IF NOT EXISTS online_payments (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		date DATE NOT NULL,
		amount NUMERIC(14,2) NOT NULL CHECK (amount > 0),
		provider VARCHAR(64) NOT NULL DEFAULT '',
		reference VARCHAR(128) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_online_payments_date ON online_payments (date);`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		action VARCHAR(64) NOT NULL,
		entity_type VARCHAR(64) NOT NULL,
		entity_id UUID NOT NULL,
		old_values JSONB,
		new_values JSONB,
		reason TEXT NOT NULL DEFAULT '',
		actor VARCHAR(128) NOT NULL DEFAULT '',
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs (entity_type, entity_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
