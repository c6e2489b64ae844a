package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MethodStripe = "stripe"
	MethodPayPal = "paypal"
	MethodCheck  = "check"
)

// SupportedCurrencies are the values of the payment_currency enum. Lowercase.
var SupportedCurrencies = []string{"usd", "eur"}

func IsSupportedCurrency(code string) bool {
	for _, c := range SupportedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}

// Payment is one accepted payment in the ledger. Rows are created by the
// intake handlers and never mutated afterwards; the composite unique index on
// (payment_method, transaction_id) is what makes the intake idempotent.
type Payment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	IsDonation bool `gorm:"not null" json:"is_donation"`

	// Personal details
	FirstName       string  `gorm:"not null" json:"first_name"`
	LastName        string  `gorm:"not null" json:"last_name"` // empty for Stripe
	Email           string  `gorm:"not null" json:"email"`
	AddressStreet   *string `json:"address_street,omitempty"`
	AddressCity     *string `json:"address_city,omitempty"`
	AddressState    *string `json:"address_state,omitempty"`
	AddressPostcode *string `json:"address_postcode,omitempty"`
	AddressCountry  *string `json:"address_country,omitempty"`

	// Donation-specific columns (MusicBrainz username etc.)
	EditorName *string `json:"editor_name,omitempty"`
	CanContact *bool   `json:"can_contact,omitempty"`
	Anonymous  *bool   `json:"anonymous,omitempty"`

	// Organization-specific column
	InvoiceNumber *int `json:"invoice_number,omitempty"`

	// Transaction details
	PaymentDate   time.Time       `gorm:"type:timestamp with time zone;not null;default:now()" json:"payment_date"`
	PaymentMethod string          `gorm:"type:varchar(16);not null;uniqueIndex:payment_method_transaction_idx" json:"payment_method"`
	TransactionID string          `gorm:"not null;uniqueIndex:payment_method_transaction_idx" json:"transaction_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(11,2);not null" json:"amount"` // net: gross - fee
	Fee           decimal.Decimal `gorm:"type:numeric(11,2)" json:"fee"`
	Currency      string          `gorm:"type:varchar(3);not null" json:"currency"`
	Memo          *string         `json:"memo,omitempty"`
}

func (Payment) TableName() string {
	return "payment"
}
