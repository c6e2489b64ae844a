package stripewebhooks

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"metabrainz-payments/internal/domain/payment"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v75"
)

// minimumGrossCents matches the 0.50 floor PayPal payments get; balance
// transactions report minor units.
const minimumGrossCents = 50

// NormalizeCharge projects an expanded charge into a ledger payment. A nil
// payment with a non-empty reason means the event is acknowledged and
// dropped. Classification comes from the charge metadata our checkout and
// donation pages attach: is_donation ("True"/"False"), and either
// editor/anonymous/can_contact or invoice_number.
func NormalizeCharge(ch *stripe.Charge) (*payment.Payment, string) {
	bt := ch.BalanceTransaction
	if bt == nil {
		return nil, fmt.Sprintf("charge %s has no balance transaction", ch.ID)
	}

	currency := strings.ToLower(string(bt.Currency))
	if !payment.IsSupportedCurrency(currency) {
		return nil, fmt.Sprintf("unsupported currency %q", bt.Currency)
	}
	if bt.Amount < minimumGrossCents {
		return nil, fmt.Sprintf("tiny payment (%d %s cents)", bt.Amount, currency)
	}

	var firstName, email string
	var address *stripe.Address
	if ch.BillingDetails != nil {
		firstName = ch.BillingDetails.Name
		email = ch.BillingDetails.Email
		address = ch.BillingDetails.Address
	}
	if email == "" {
		email = ch.Metadata["email"]
	}
	if email == "" {
		email = ch.ReceiptEmail
	}
	if email == "" {
		return nil, fmt.Sprintf("charge %s has no payer email", ch.ID)
	}

	isDonation := true
	if v, ok := ch.Metadata["is_donation"]; ok {
		isDonation = v == "True"
	} else {
		log.Printf("Stripe: charge %s has no is_donation metadata, treating as donation", ch.ID)
	}

	p := &payment.Payment{
		IsDonation:    isDonation,
		FirstName:     firstName,
		LastName:      "", // Stripe only reports a single name
		Email:         email,
		PaymentMethod: payment.MethodStripe,
		TransactionID: ch.ID,
		Amount:        decimal.New(bt.Net, -2),
		Fee:           decimal.New(bt.Fee, -2),
		Currency:      currency,
	}
	if address != nil {
		p.AddressStreet = nonEmpty(address.Line1)
		p.AddressCity = nonEmpty(address.City)
		p.AddressState = nonEmpty(address.State)
		p.AddressPostcode = nonEmpty(address.PostalCode)
		p.AddressCountry = nonEmpty(address.Country)
	}

	if isDonation {
		p.EditorName = nonEmpty(ch.Metadata["editor"])
		anonymous := ch.Metadata["anonymous"] == "True"
		canContact := ch.Metadata["can_contact"] == "True"
		p.Anonymous = &anonymous
		p.CanContact = &canContact
	} else {
		if n, err := strconv.Atoi(ch.Metadata["invoice_number"]); err == nil {
			p.InvoiceNumber = &n
		} else {
			log.Printf("Stripe: charge %s has no usable invoice number (%q)",
				ch.ID, ch.Metadata["invoice_number"])
		}
	}

	return p, ""
}

func nonEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
