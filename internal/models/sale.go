package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod int32

const (
	PaymentCash         PaymentMethod = 1
	PaymentMobileMoney  PaymentMethod = 2
	PaymentBankTransfer PaymentMethod = 3
)

var PaymentMethods = []PaymentMethod{PaymentCash, PaymentMobileMoney, PaymentBankTransfer}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentMobileMoney, PaymentBankTransfer:
		return true
	}
	return false
}

func (m PaymentMethod) String() string {
	switch m {
	case PaymentCash:
		return "Cash"
	case PaymentMobileMoney:
		return "Mobile Money"
	case PaymentBankTransfer:
		return "Bank Transfer"
	}
	return "Unknown"
}

type SaleItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Unit      Unit            `json:"unit"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// SaleSubmission is the finalized payload handed to the remote sales endpoint.
type SaleSubmission struct {
	Items         []SaleItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	Discount      decimal.Decimal `json:"discount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Change        decimal.Decimal `json:"change"`
	Reference     string          `json:"reference,omitempty"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
}

// SaleReceipt is what the remote API returns once it accepted a sale.
type SaleReceipt struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status"`
}

type CompletedSale struct {
	SaleSubmission
	ID        string    `json:"id"`
	CashierID int64     `json:"cashier_id"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status"`
}

func NewCompletedSale(cashierID int64, sub SaleSubmission, receipt SaleReceipt) CompletedSale {
	items := make([]SaleItem, len(sub.Items))
	copy(items, sub.Items)
	sub.Items = items

	return CompletedSale{
		SaleSubmission: sub,
		ID:             receipt.ID,
		CashierID:      cashierID,
		CreatedAt:      receipt.CreatedAt,
		Status:         receipt.Status,
	}
}
