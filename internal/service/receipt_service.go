package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nurpe/fuelops/internal/model"
)

type ReceiptStore interface {
	CreateCash(ctx context.Context, receipt model.CashReceipt) (*model.CashReceipt, error)
	ListCash(ctx context.Context, from, to time.Time) ([]model.CashReceipt, error)
	CreateOnline(ctx context.Context, payment model.OnlinePayment) (*model.OnlinePayment, error)
	ListOnline(ctx context.Context, from, to time.Time) ([]model.OnlinePayment, error)
}

type ReceiptService struct {
	receipts ReceiptStore
}

func NewReceiptService(receipts ReceiptStore) *ReceiptService {
	return &ReceiptService{receipts: receipts}
}

func (s *ReceiptService) RecordCash(ctx context.Context, date time.Time, amount decimal.Decimal, note string) (*model.CashReceipt, error) {
	if date.IsZero() {
		return nil, invalid("date is required")
	}
	if err := positive("amount", amount); err != nil {
		return nil, err
	}
	return s.receipts.CreateCash(ctx, model.CashReceipt{
		Date:   dateOnly(date),
		Amount: amount,
		Note:   strings.TrimSpace(note),
	})
}

func (s *ReceiptService) RecordOnline(ctx context.Context, date time.Time, amount decimal.Decimal, provider, reference string) (*model.OnlinePayment, error) {
	if date.IsZero() {
		return nil, invalid("date is required")
	}
	if err := positive("amount", amount); err != nil {
		return nil, err
	}
	return s.receipts.CreateOnline(ctx, model.OnlinePayment{
		Date:      dateOnly(date),
		Amount:    amount,
		Provider:  strings.TrimSpace(provider),
		Reference: strings.TrimSpace(reference),
	})
}

func (s *ReceiptService) ListCash(ctx context.Context, from, to time.Time) ([]model.CashReceipt, error) {
	start, end, err := rangeDays(from, to)
	if err != nil {
		return nil, err
	}
	return s.receipts.ListCash(ctx, start, end)
}

func (s *ReceiptService) ListOnline(ctx context.Context, from, to time.Time) ([]model.OnlinePayment, error) {
	start, end, err := rangeDays(from, to)
	if err != nil {
		return nil, err
	}
	return s.receipts.ListOnline(ctx, start, end)
}
