package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/fuelops/internal/model"
)

// AuditMeta describes who changed something and why.
type AuditMeta struct {
	Actor  string
	Reason string
}

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) List(ctx context.Context, entityType string, limit int) ([]model.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `
		SELECT id, action, entity_type, entity_id, old_values, new_values, reason, actor, timestamp
		FROM audit_logs
	`
	args := []interface{}{}
	if entityType != "" {
		query += " WHERE entity_type = ?"
		args = append(args, entityType)
	}
	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	var rows []model.AuditLog
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func writeAudit(tx *gorm.DB, action, entityType string, entityID uuid.UUID, oldValues, newValues interface{}, meta AuditMeta) error {
	oldJSON, err := model.NewJSONValue(oldValues)
	if err != nil {
		return err
	}
	newJSON, err := model.NewJSONValue(newValues)
	if err != nil {
		return err
	}
	return tx.Exec(`
		INSERT INTO audit_logs (action, entity_type, entity_id, old_values, new_values, reason, actor)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, action, entityType, entityID, oldJSON, newJSON, meta.Reason, meta.Actor).Error
}
