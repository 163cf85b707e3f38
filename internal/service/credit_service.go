package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/fuelops/internal/model"
	"github.com/nurpe/fuelops/internal/repository"
)

type CreditStore interface {
	CreateClient(ctx context.Context, c model.Client) (*model.Client, error)
	GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error)
	ListClients(ctx context.Context, includeInactive bool) ([]model.Client, error)
	UpdateClient(ctx context.Context, c model.Client) (*model.Client, error)
	CreateCredit(ctx context.Context, credit model.ClientCredit) (*model.CreditResult, error)
	GetCredit(ctx context.Context, id uuid.UUID) (*model.ClientCredit, error)
	ListCredits(ctx context.Context, clientID *uuid.UUID, status *model.CreditStatus) ([]model.ClientCredit, error)
	MarkPaid(ctx context.Context, id uuid.UUID, method model.PaymentMethod, paidAt time.Time) (*model.CreditResult, error)
}

type FuelTypeLookup interface {
	GetFuelType(ctx context.Context, id uuid.UUID) (*model.FuelType, error)
}

type CreditService struct {
	credits   CreditStore
	fuelTypes FuelTypeLookup
	epsilon   decimal.Decimal
	now       func() time.Time
}

func NewCreditService(credits CreditStore, fuelTypes FuelTypeLookup, epsilon decimal.Decimal) *CreditService {
	return &CreditService{
		credits:   credits,
		fuelTypes: fuelTypes,
		epsilon:   epsilon,
		now:       time.Now,
	}
}

type CreateClientInput struct {
	Name        string
	OwnerName   string
	Phone       string
	CreditLimit decimal.Decimal
	Principal   model.Principal
}

func (s *CreditService) CreateClient(ctx context.Context, input CreateClientInput) (*model.Client, error) {
	if !input.Principal.IsOwner() {
		return nil, ErrPermissionDenied
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	if input.CreditLimit.IsNegative() {
		return nil, invalid("creditLimit must not be negative")
	}
	return s.credits.CreateClient(ctx, model.Client{
		Name:        name,
		OwnerName:   strings.TrimSpace(input.OwnerName),
		Phone:       strings.TrimSpace(input.Phone),
		CreditLimit: input.CreditLimit,
	})
}

func (s *CreditService) GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	c, err := s.credits.GetClient(ctx, id)
	if err != nil {
		return nil, notFound(err, "client")
	}
	return c, nil
}

func (s *CreditService) ListClients(ctx context.Context, includeInactive bool) ([]model.Client, error) {
	return s.credits.ListClients(ctx, includeInactive)
}

type UpdateClientInput struct {
	ID          uuid.UUID
	Name        *string
	OwnerName   *string
	Phone       *string
	CreditLimit *decimal.Decimal
	IsActive    *bool
	Principal   model.Principal
}

// UpdateClient edits client details. A limit below the current balance is
// accepted; the limit only gates new credit.
func (s *CreditService) UpdateClient(ctx context.Context, input UpdateClientInput) (*model.Client, error) {
	if !input.Principal.IsOwner() {
		return nil, ErrPermissionDenied
	}
	client, err := s.GetClient(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, invalid("name must not be empty")
		}
		client.Name = name
	}
	if input.OwnerName != nil {
		client.OwnerName = strings.TrimSpace(*input.OwnerName)
	}
	if input.Phone != nil {
		client.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.CreditLimit != nil {
		if input.CreditLimit.IsNegative() {
			return nil, invalid("creditLimit must not be negative")
		}
		client.CreditLimit = *input.CreditLimit
	}
	if input.IsActive != nil {
		client.IsActive = *input.IsActive
	}

	updated, err := s.credits.UpdateClient(ctx, *client)
	if err != nil {
		return nil, notFound(err, "client")
	}
	return updated, nil
}

type CreateCreditInput struct {
	ClientID      uuid.UUID
	FuelTypeID    uuid.UUID
	Litres        decimal.Decimal
	PricePerLitre decimal.Decimal
	// TotalAmount defaults to litres times price.
	TotalAmount *decimal.Decimal
	CreditDate  time.Time
	Note        string
}

// CreateCredit extends unpaid credit to a client and raises its balance.
// Credit that would take the balance above the limit is refused.
func (s *CreditService) CreateCredit(ctx context.Context, input CreateCreditInput) (*model.CreditResult, error) {
	if err := positive("litres", input.Litres); err != nil {
		return nil, err
	}
	if err := positive("pricePerLitre", input.PricePerLitre); err != nil {
		return nil, err
	}
	amount := input.Litres.Mul(input.PricePerLitre).Round(2)
	if input.TotalAmount != nil {
		if input.TotalAmount.Sub(amount).Abs().GreaterThanOrEqual(s.epsilon) {
			return nil, invalid("totalAmount %s does not match litres x pricePerLitre %s", input.TotalAmount.String(), amount.String())
		}
		amount = *input.TotalAmount
	}
	if err := positive("totalAmount", amount); err != nil {
		return nil, err
	}

	client, err := s.GetClient(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}
	if !client.IsActive {
		return nil, invalid("client %s is inactive", client.Name)
	}
	if _, err := s.fuelTypes.GetFuelType(ctx, input.FuelTypeID); err != nil {
		return nil, notFound(err, "fuel type")
	}
	if client.Balance.Add(amount).GreaterThan(client.CreditLimit) {
		return nil, creditLimit(client, amount)
	}

	date := input.CreditDate
	if date.IsZero() {
		date = s.now()
	}
	result, err := s.credits.CreateCredit(ctx, model.ClientCredit{
		ClientID:      client.ID,
		FuelTypeID:    input.FuelTypeID,
		Litres:        input.Litres,
		PricePerLitre: input.PricePerLitre,
		TotalAmount:   amount,
		CreditDate:    dateOnly(date),
		Note:          strings.TrimSpace(input.Note),
		Status:        model.CreditStatusUnpaid,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConditionFailed) {
			return nil, creditLimit(client, amount)
		}
		return nil, err
	}
	creditEvent("extended", amount)
	return result, nil
}

func (s *CreditService) GetCredit(ctx context.Context, id uuid.UUID) (*model.ClientCredit, error) {
	c, err := s.credits.GetCredit(ctx, id)
	if err != nil {
		return nil, notFound(err, "credit")
	}
	return c, nil
}

func (s *CreditService) ListCredits(ctx context.Context, clientID *uuid.UUID, status *model.CreditStatus) ([]model.ClientCredit, error) {
	return s.credits.ListCredits(ctx, clientID, status)
}

// MarkPaid settles a credit through UPI, a worker or the owner and lowers the
// client balance by its amount.
func (s *CreditService) MarkPaid(ctx context.Context, id uuid.UUID, rawMethod string) (*model.CreditResult, error) {
	method, ok := model.ParsePaymentMethod(rawMethod)
	if !ok {
		return nil, &PaymentMethodError{Given: rawMethod}
	}
	credit, err := s.GetCredit(ctx, id)
	if err != nil {
		return nil, err
	}
	if credit.Status == model.CreditStatusPaid {
		return nil, ErrAlreadyPaid
	}

	result, err := s.credits.MarkPaid(ctx, id, method, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyApplied) {
			return nil, ErrAlreadyPaid
		}
		return nil, notFound(err, "credit")
	}
	creditEvent("settled_"+strings.ToLower(string(method)), result.Credit.TotalAmount)
	return result, nil
}

// CreditLimitError reports the figures behind a refused credit.
type CreditLimitError struct {
	ClientID    uuid.UUID       `json:"clientId"`
	Balance     decimal.Decimal `json:"balance"`
	CreditLimit decimal.Decimal `json:"creditLimit"`
	Requested   decimal.Decimal `json:"requested"`
}

func creditLimit(c *model.Client, amount decimal.Decimal) error {
	return &CreditLimitError{
		ClientID:    c.ID,
		Balance:     c.Balance,
		CreditLimit: c.CreditLimit,
		Requested:   amount,
	}
}

func (e *CreditLimitError) Error() string {
	return ErrCreditLimitExceeded.Error() + ": balance " + e.Balance.String() +
		" + " + e.Requested.String() + " > limit " + e.CreditLimit.String()
}

func (e *CreditLimitError) Unwrap() error {
	return ErrCreditLimitExceeded
}

type PaymentMethodError struct {
	Given string `json:"given"`
}

func (e *PaymentMethodError) Error() string {
	return ErrInvalidPaymentMethod.Error() + ": " + e.Given + " (allowed: UPI, Worker, Owner)"
}

func (e *PaymentMethodError) Unwrap() error {
	return ErrInvalidPaymentMethod
}
