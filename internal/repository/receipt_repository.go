package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/fuelops/internal/model"
)

type ReceiptRepository struct {
	db *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

func (r *ReceiptRepository) CreateCash(ctx context.Context, receipt model.CashReceipt) (*model.CashReceipt, error) {
	var saved model.CashReceipt
	if err := r.db.WithContext(ctx).Raw(`
		INSERT INTO cash_receipts (date, amount, note)
		VALUES (?, ?, ?)
		RETURNING id, date, amount, note, created_at
	`, receipt.Date, receipt.Amount, receipt.Note).Scan(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *ReceiptRepository) ListCash(ctx context.Context, from, to time.Time) ([]model.CashReceipt, error) {
	var rows []model.CashReceipt
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, date, amount, note, created_at
		FROM cash_receipts
		WHERE date >= ? AND date < ?
		ORDER BY date ASC, created_at ASC
	`, from, to).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReceiptRepository) CreateOnline(ctx context.Context, payment model.OnlinePayment) (*model.OnlinePayment, error) {
	var saved model.OnlinePayment
	if err := r.db.WithContext(ctx).Raw(`
		INSERT INTO online_payments (date, amount, provider, reference)
		VALUES (?, ?, ?, ?)
		RETURNING id, date, amount, provider, reference, created_at
	`, payment.Date, payment.Amount, payment.Provider, payment.Reference).Scan(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *ReceiptRepository) ListOnline(ctx context.Context, from, to time.Time) ([]model.OnlinePayment, error) {
	var rows []model.OnlinePayment
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, date, amount, provider, reference, created_at
		FROM online_payments
		WHERE date >= ? AND date < ?
		ORDER BY date ASC, created_at ASC
	`, from, to).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
