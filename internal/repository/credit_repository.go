package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nurpe/fuelops/internal/model"
)

const clientColumns = `
	id,
	name,
	owner_name,
	phone,
	credit_limit,
	balance,
	is_active,
	created_at,
	updated_at
`

const creditColumns = `
	id,
	client_id,
	fuel_type_id,
	litres,
	price_per_litre,
	total_amount,
	credit_date,
	note,
	status,
	payment_method,
	paid_date,
	created_at
`

type CreditRepository struct {
	db *gorm.DB
}

func NewCreditRepository(db *gorm.DB) *CreditRepository {
	return &CreditRepository{db: db}
}

func (r *CreditRepository) CreateClient(ctx context.Context, c model.Client) (*model.Client, error) {
	var saved model.Client
	if err := r.db.WithContext(ctx).Raw(`
		INSERT INTO clients (name, owner_name, phone, credit_limit)
		VALUES (?, ?, ?, ?)
		RETURNING `+clientColumns,
		c.Name, c.OwnerName, c.Phone, c.CreditLimit,
	).Scan(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *CreditRepository) GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var c model.Client
	if err := r.db.WithContext(ctx).Raw(`SELECT `+clientColumns+`
		FROM clients WHERE id = ? LIMIT 1
	`, id).Scan(&c).Error; err != nil {
		return nil, err
	}
	if c.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *CreditRepository) ListClients(ctx context.Context, includeInactive bool) ([]model.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients`
	if !includeInactive {
		query += " WHERE is_active"
	}
	query += " ORDER BY name ASC"

	var rows []model.Client
	if err := r.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateClient stores the editable client fields. Balance is never written
// here; it only moves with credits.
func (r *CreditRepository) UpdateClient(ctx context.Context, c model.Client) (*model.Client, error) {
	var saved model.Client
	res := r.db.WithContext(ctx).Raw(`
		UPDATE clients
		SET
			name = ?,
			owner_name = ?,
			phone = ?,
			credit_limit = ?,
			is_active = ?,
			updated_at = NOW()
		WHERE id = ?
		RETURNING `+clientColumns,
		c.Name, c.OwnerName, c.Phone, c.CreditLimit, c.IsActive, c.ID,
	).Scan(&saved)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &saved, nil
}

// CreateCredit inserts an unpaid credit and raises the client balance in one
// transaction. The limit check is part of the balance UPDATE, so two
// concurrent credits cannot both squeeze under it.
func (r *CreditRepository) CreateCredit(ctx context.Context, credit model.ClientCredit) (*model.CreditResult, error) {
	var result model.CreditResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row struct {
			Balance decimal.Decimal
		}
		res := tx.Raw(`
			UPDATE clients
			SET balance = balance + ?, updated_at = NOW()
			WHERE id = ?
				AND is_active
				AND balance + ? <= credit_limit
			RETURNING balance
		`, credit.TotalAmount, credit.ClientID, credit.TotalAmount).Scan(&row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConditionFailed
		}

		var saved model.ClientCredit
		if err := tx.Raw(`
			INSERT INTO client_credits (
				client_id,
				fuel_type_id,
				litres,
				price_per_litre,
				total_amount,
				credit_date,
				note,
				status
			) VALUES (?, ?, ?, ?, ?, ?, ?, 'unpaid')
			RETURNING `+creditColumns,
			credit.ClientID,
			credit.FuelTypeID,
			credit.Litres,
			credit.PricePerLitre,
			credit.TotalAmount,
			credit.CreditDate,
			credit.Note,
		).Scan(&saved).Error; err != nil {
			return err
		}
		result = model.CreditResult{Credit: saved, ClientBalance: row.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *CreditRepository) GetCredit(ctx context.Context, id uuid.UUID) (*model.ClientCredit, error) {
	var credit model.ClientCredit
	if err := r.db.WithContext(ctx).Raw(`SELECT `+creditColumns+`
		FROM client_credits WHERE id = ? LIMIT 1
	`, id).Scan(&credit).Error; err != nil {
		return nil, err
	}
	if credit.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &credit, nil
}

func (r *CreditRepository) ListCredits(ctx context.Context, clientID *uuid.UUID, status *model.CreditStatus) ([]model.ClientCredit, error) {
	query := `SELECT ` + creditColumns + ` FROM client_credits WHERE TRUE`
	args := []interface{}{}
	if clientID != nil {
		query += " AND client_id = ?"
		args = append(args, *clientID)
	}
	if status != nil {
		query += " AND status = ?"
		args = append(args, string(*status))
	}
	query += " ORDER BY credit_date DESC, created_at DESC"

	var rows []model.ClientCredit
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkPaid settles an unpaid credit and takes its amount off the client
// balance. A credit that is already paid yields ErrAlreadyApplied.
func (r *CreditRepository) MarkPaid(ctx context.Context, id uuid.UUID, method model.PaymentMethod, paidAt time.Time) (*model.CreditResult, error) {
	var result model.CreditResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked struct {
			ID          uuid.UUID
			ClientID    uuid.UUID
			Status      model.CreditStatus
			TotalAmount decimal.Decimal
		}
		if err := tx.Table("client_credits").
			Select("id", "client_id", "status", "total_amount").
			Where("id = ?", id).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Take(&locked).Error; err != nil {
			return err
		}
		if locked.Status == model.CreditStatusPaid {
			return ErrAlreadyApplied
		}

		var saved model.ClientCredit
		if err := tx.Raw(`
			UPDATE client_credits
			SET status = 'paid', payment_method = ?, paid_date = ?
			WHERE id = ?
			RETURNING `+creditColumns, string(method), paidAt, id).Scan(&saved).Error; err != nil {
			return err
		}

		var row struct {
			Balance decimal.Decimal
		}
		if err := tx.Raw(`
			UPDATE clients
			SET balance = balance - ?, updated_at = NOW()
			WHERE id = ?
			RETURNING balance
		`, locked.TotalAmount, locked.ClientID).Scan(&row).Error; err != nil {
			return err
		}
		result = model.CreditResult{Credit: saved, ClientBalance: row.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// OutstandingByClient sums unpaid credits per client; it must agree with the
// stored balances.
func (r *CreditRepository) OutstandingByClient(ctx context.Context) (map[uuid.UUID]decimal.Decimal, error) {
	var rows []struct {
		ClientID    uuid.UUID
		Outstanding decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT client_id, COALESCE(SUM(total_amount), 0) AS outstanding
		FROM client_credits
		WHERE status = 'unpaid'
		GROUP BY client_id
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	result := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, row := range rows {
		result[row.ClientID] = row.Outstanding
	}
	return result, nil
}
