package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/fuelops/internal/model"
	"github.com/nurpe/fuelops/internal/reconcile"
)

type ReportStore interface {
	Totals(ctx context.Context, from, to time.Time) (model.Totals, error)
	FuelSales(ctx context.Context, from, to time.Time) ([]model.FuelSales, error)
	LatestPurchaseCosts(ctx context.Context) (map[uuid.UUID]decimal.Decimal, error)
	ActivePrices(ctx context.Context) (map[uuid.UUID]decimal.Decimal, error)
	PumpsWithoutReading(ctx context.Context, date time.Time) ([]model.Pump, error)
	CountReadings(ctx context.Context, from, to time.Time) (int64, error)
}

type ExcelGenerator interface {
	Generate(summary model.Summary) ([]byte, error)
}

type PDFGenerator interface {
	Generate(summary model.Summary) ([]byte, error)
}

type ReportService struct {
	repo   ReportStore
	excel  ExcelGenerator
	pdf    PDFGenerator
	params reconcile.Params
}

func NewReportService(repo ReportStore, excel ExcelGenerator, pdf PDFGenerator, params reconcile.Params) *ReportService {
	return &ReportService{
		repo:   repo,
		excel:  excel,
		pdf:    pdf,
		params: params,
	}
}

type SummaryInput struct {
	Period string
	Date   time.Time
	From   time.Time
	To     time.Time
}

// Summary reconciles sales against money received and credit extended over
// the requested window.
func (s *ReportService) Summary(ctx context.Context, input SummaryInput) (*model.Summary, error) {
	period, err := model.ParsePeriod(input.Period)
	if err != nil {
		return nil, invalid("%s", err.Error())
	}
	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}
	window, err := reconcile.NewWindow(period, date, input.From, input.To)
	if err != nil {
		return nil, invalid("%s", err.Error())
	}
	return s.summarize(ctx, window)
}

func (s *ReportService) summarize(ctx context.Context, window model.Window) (*model.Summary, error) {
	totals, err := s.repo.Totals(ctx, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("aggregate totals: %w", err)
	}
	fuels, err := s.repo.FuelSales(ctx, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("aggregate fuel sales: %w", err)
	}
	costs, err := s.repo.LatestPurchaseCosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load purchase costs: %w", err)
	}
	prices, err := s.repo.ActivePrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active prices: %w", err)
	}

	summary := reconcile.Summarize(reconcile.Input{
		Window:        window,
		Totals:        totals,
		Fuels:         fuels,
		PurchaseCosts: costs,
		ActivePrices:  prices,
	}, s.params)
	return &summary, nil
}

// Validate is the single-day balance check, listing pumps that still lack a
// reading for the day.
func (s *ReportService) Validate(ctx context.Context, date time.Time) (*model.DayValidation, error) {
	if date.IsZero() {
		return nil, invalid("date is required")
	}
	window, err := reconcile.NewWindow(model.PeriodDay, date, time.Time{}, time.Time{})
	if err != nil {
		return nil, invalid("%s", err.Error())
	}
	summary, err := s.summarize(ctx, window)
	if err != nil {
		return nil, err
	}
	missing, err := s.repo.PumpsWithoutReading(ctx, window.Start)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountReadings(ctx, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	if missing == nil {
		missing = []model.Pump{}
	}
	return &model.DayValidation{
		Date:          window.Start,
		Summary:       *summary,
		Status:        reconcile.Status(*summary),
		MissingPumps:  missing,
		ReadingsCount: count,
	}, nil
}

type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

func (s *ReportService) Export(ctx context.Context, input SummaryInput, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "pdf" {
		return nil, invalid("format must be xlsx or pdf")
	}

	summary, err := s.Summary(ctx, input)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("reconciliation_%s_%s", summary.Window.Start.Format("20060102"), summary.Window.LastDay().Format("20060102"))
	if format == "pdf" {
		content, err := s.pdf.Generate(*summary)
		if err != nil {
			return nil, fmt.Errorf("render pdf: %w", err)
		}
		return &ExportResult{FileName: name + ".pdf", ContentType: "application/pdf", Content: content}, nil
	}

	content, err := s.excel.Generate(*summary)
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return &ExportResult{
		FileName:    name + ".xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     content,
	}, nil
}
