package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Client struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	OwnerName   string          `json:"ownerName"`
	Phone       string          `json:"phone"`
	CreditLimit decimal.Decimal `json:"creditLimit"`
	Balance     decimal.Decimal `json:"balance"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type CreditStatus string

const (
	CreditStatusUnpaid CreditStatus = "unpaid"
	CreditStatusPaid   CreditStatus = "paid"
)

func ParseCreditStatus(raw string) (CreditStatus, error) {
	switch CreditStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case CreditStatusUnpaid:
		return CreditStatusUnpaid, nil
	case CreditStatusPaid:
		return CreditStatusPaid, nil
	default:
		return "", fmt.Errorf("unknown credit status %q", raw)
	}
}

type PaymentMethod string

const (
	PaymentMethodUPI    PaymentMethod = "UPI"
	PaymentMethodWorker PaymentMethod = "Worker"
	PaymentMethodOwner  PaymentMethod = "Owner"
)

// ParsePaymentMethod accepts the three settlement channels, ignoring case.
func ParsePaymentMethod(raw string) (PaymentMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "upi":
		return PaymentMethodUPI, true
	case "worker":
		return PaymentMethodWorker, true
	case "owner":
		return PaymentMethodOwner, true
	default:
		return "", false
	}
}

// CountsAsReceived reports whether a settlement brings new money into the
// station. Owner settlements were already in the owner's hands.
func (m PaymentMethod) CountsAsReceived() bool {
	return m == PaymentMethodUPI || m == PaymentMethodWorker
}

var PaymentMethods = []PaymentMethod{PaymentMethodUPI, PaymentMethodWorker, PaymentMethodOwner}

// SettlementMethods returns the stored names of the methods that do, or do
// not, count as received.
func SettlementMethods(received bool) []string {
	var out []string
	for _, m := range PaymentMethods {
		if m.CountsAsReceived() == received {
			out = append(out, string(m))
		}
	}
	return out
}

type ClientCredit struct {
	ID            uuid.UUID       `json:"id"`
	ClientID      uuid.UUID       `json:"clientId"`
	FuelTypeID    uuid.UUID       `json:"fuelTypeId"`
	Litres        decimal.Decimal `json:"litres"`
	PricePerLitre decimal.Decimal `json:"pricePerLitre"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	CreditDate    time.Time       `json:"creditDate"`
	Note          string          `json:"note"`
	Status        CreditStatus    `json:"status"`
	PaymentMethod *PaymentMethod  `json:"paymentMethod,omitempty"`
	PaidDate      *time.Time      `json:"paidDate,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type CreditResult struct {
	Credit        ClientCredit    `json:"credit"`
	ClientBalance decimal.Decimal `json:"clientBalance"`
}
