package repository

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// withdraw moves delta litres out of an active tank (a negative delta puts
// fuel back). The bounds are part of the UPDATE itself so concurrent writers
// cannot drive the level outside [0, capacity].
func withdraw(tx *gorm.DB, tankID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	var row struct {
		CurrentLevel decimal.Decimal
	}
	if delta.IsZero() {
		res := tx.Raw(`SELECT current_level FROM tanks WHERE id = ? AND is_active`, tankID).Scan(&row)
		if res.Error != nil {
			return decimal.Zero, res.Error
		}
		if res.RowsAffected == 0 {
			return decimal.Zero, ErrConditionFailed
		}
		return row.CurrentLevel, nil
	}

	res := tx.Raw(`
		UPDATE tanks
		SET current_level = current_level - ?, updated_at = NOW()
		WHERE id = ?
			AND is_active
			AND current_level - ? >= 0
			AND current_level - ? <= capacity_lit
		RETURNING current_level
	`, delta, tankID, delta, delta).Scan(&row)
	if res.Error != nil {
		return decimal.Zero, res.Error
	}
	if res.RowsAffected == 0 {
		return decimal.Zero, ErrConditionFailed
	}
	return row.CurrentLevel, nil
}
