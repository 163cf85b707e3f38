package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/fuelops/internal/model"
)

const tankColumns = `
	t.id,
	t.name,
	t.fuel_type_id,
	ft.name AS fuel_type_name,
	t.capacity_lit,
	t.current_level,
	t.avg_unit_cost,
	t.is_active,
	t.created_at,
	t.updated_at
`

// insertedRow receives RETURNING id. gorm scans a bare uuid.UUID as a byte
// slice, so the id always goes through a struct field.
type insertedRow struct {
	ID uuid.UUID
}

type TankRepository struct {
	db *gorm.DB
}

func NewTankRepository(db *gorm.DB) *TankRepository {
	return &TankRepository{db: db}
}

func (r *TankRepository) ListFuelTypes(ctx context.Context) ([]model.FuelType, error) {
	var rows []model.FuelType
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, created_at FROM fuel_types ORDER BY name ASC
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *TankRepository) GetFuelType(ctx context.Context, id uuid.UUID) (*model.FuelType, error) {
	var row model.FuelType
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, created_at FROM fuel_types WHERE id = ? LIMIT 1
	`, id).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

// FuelTypesByName maps lower-cased fuel type names to rows.
func (r *TankRepository) FuelTypesByName(ctx context.Context) (map[string]model.FuelType, error) {
	types, err := r.ListFuelTypes(ctx)
	if err != nil {
		return nil, err
	}
	result := make(map[string]model.FuelType, len(types))
	for _, ft := range types {
		result[strings.ToLower(ft.Name)] = ft
	}
	return result, nil
}

func (r *TankRepository) ListTanks(ctx context.Context, includeInactive bool) ([]model.Tank, error) {
	query := `SELECT ` + tankColumns + `
		FROM tanks t
		JOIN fuel_types ft ON ft.id = t.fuel_type_id
	`
	if !includeInactive {
		query += " WHERE t.is_active"
	}
	query += " ORDER BY ft.name ASC, t.name ASC"

	var rows []model.Tank
	if err := r.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *TankRepository) GetTank(ctx context.Context, id uuid.UUID) (*model.Tank, error) {
	return getTank(r.db.WithContext(ctx), id, false)
}

// ActiveTankForFuelType returns the oldest active tank holding the fuel type.
func (r *TankRepository) ActiveTankForFuelType(ctx context.Context, fuelTypeID uuid.UUID) (*model.Tank, error) {
	var tank model.Tank
	if err := r.db.WithContext(ctx).Raw(`SELECT `+tankColumns+`
		FROM tanks t
		JOIN fuel_types ft ON ft.id = t.fuel_type_id
		WHERE t.fuel_type_id = ? AND t.is_active
		ORDER BY t.created_at ASC
		LIMIT 1
	`, fuelTypeID).Scan(&tank).Error; err != nil {
		return nil, err
	}
	if tank.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &tank, nil
}

func (r *TankRepository) CreateTank(ctx context.Context, tank model.Tank, meta AuditMeta) (*model.Tank, error) {
	var saved model.Tank
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row insertedRow
		if err := tx.Raw(`
			INSERT INTO tanks (name, fuel_type_id, capacity_lit, current_level, avg_unit_cost)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id
		`, tank.Name, tank.FuelTypeID, tank.CapacityLit, tank.CurrentLevel, tank.AvgUnitCost).Scan(&row).Error; err != nil {
			return err
		}
		created, err := getTank(tx, row.ID, false)
		if err != nil {
			return err
		}
		saved = *created
		return writeAudit(tx, model.AuditActionTankCreate, "tank", row.ID, nil, saved, meta)
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdateTank locks the tank row, lets mutate compute the replacement and
// stores it together with an audit entry. An error from mutate aborts the
// transaction unchanged.
func (r *TankRepository) UpdateTank(
	ctx context.Context,
	id uuid.UUID,
	action string,
	meta AuditMeta,
	mutate func(current model.Tank) (model.Tank, error),
) (*model.Tank, error) {
	var saved model.Tank
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := getTank(tx, id, true)
		if err != nil {
			return err
		}
		next, err := mutate(*current)
		if err != nil {
			return err
		}
		if err := tx.Exec(`
			UPDATE tanks
			SET
				name = ?,
				capacity_lit = ?,
				current_level = ?,
				is_active = ?,
				updated_at = NOW()
			WHERE id = ?
		`, next.Name, next.CapacityLit, next.CurrentLevel, next.IsActive, id).Error; err != nil {
			return err
		}
		updated, err := getTank(tx, id, false)
		if err != nil {
			return err
		}
		saved = *updated
		return writeAudit(tx, action, "tank", id, current, saved, meta)
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *TankRepository) ListPumps(ctx context.Context) ([]model.Pump, error) {
	var rows []model.Pump
	if err := r.db.WithContext(ctx).Raw(`
		SELECT p.id, p.name, p.fuel_type_id, ft.name AS fuel_type_name, p.is_active, p.created_at
		FROM pumps p
		JOIN fuel_types ft ON ft.id = p.fuel_type_id
		ORDER BY p.name ASC
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *TankRepository) GetPump(ctx context.Context, id uuid.UUID) (*model.Pump, error) {
	var pump model.Pump
	if err := r.db.WithContext(ctx).Raw(`
		SELECT p.id, p.name, p.fuel_type_id, ft.name AS fuel_type_name, p.is_active, p.created_at
		FROM pumps p
		JOIN fuel_types ft ON ft.id = p.fuel_type_id
		WHERE p.id = ?
		LIMIT 1
	`, id).Scan(&pump).Error; err != nil {
		return nil, err
	}
	if pump.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &pump, nil
}

func (r *TankRepository) CreatePump(ctx context.Context, pump model.Pump) (*model.Pump, error) {
	var row insertedRow
	if err := r.db.WithContext(ctx).Raw(`
		INSERT INTO pumps (name, fuel_type_id) VALUES (?, ?) RETURNING id
	`, pump.Name, pump.FuelTypeID).Scan(&row).Error; err != nil {
		return nil, err
	}
	return r.GetPump(ctx, row.ID)
}

func getTank(tx *gorm.DB, id uuid.UUID, forUpdate bool) (*model.Tank, error) {
	query := `SELECT ` + tankColumns + `
		FROM tanks t
		JOIN fuel_types ft ON ft.id = t.fuel_type_id
		WHERE t.id = ?
	`
	if forUpdate {
		query += " FOR UPDATE OF t"
	}

	var tank model.Tank
	if err := tx.Raw(query, id).Scan(&tank).Error; err != nil {
		return nil, err
	}
	if tank.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &tank, nil
}
