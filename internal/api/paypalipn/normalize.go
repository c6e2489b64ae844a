package paypalipn

import (
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"metabrainz-payments/internal/domain/payment"

	"github.com/shopspring/decimal"
)

// Config holds the PayPal-specific pieces of the currency registry.
type Config struct {
	// AccountIDs maps an uppercase currency code to the receiver address
	// expected for that currency.
	AccountIDs map[string]string
	// Business is the house account: notifications naming it as the payer
	// business are our own disbursements, not incoming revenue.
	Business string
}

var minimumGross = decimal.NewFromFloat(0.50)

// Normalize projects a verified IPN form into a ledger payment. A nil payment
// with a non-empty reason means the notification is authentic but should be
// acknowledged and dropped.
func Normalize(form url.Values, cfg Config) (*payment.Payment, string) {
	if status := form.Get("payment_status"); status != "Completed" {
		return nil, fmt.Sprintf("payment not completed, status %q", status)
	}

	currency := strings.ToLower(form.Get("mc_currency"))
	if !payment.IsSupportedCurrency(currency) {
		return nil, fmt.Sprintf("unsupported currency %q", form.Get("mc_currency"))
	}

	if form.Get("business") == cfg.Business {
		return nil, "payment to the house address"
	}

	receiver := form.Get("receiver_email")
	if expected, ok := cfg.AccountIDs[strings.ToUpper(currency)]; ok && receiver != expected {
		log.Printf("PayPal: received %s payment to %q, expected %q", currency, receiver, expected)
	}
	if !isRegisteredAccount(receiver, cfg.AccountIDs) {
		log.Printf("PayPal: unexpected receiver email %q", receiver)
	}

	gross, err := decimal.NewFromString(form.Get("mc_gross"))
	if err != nil {
		return nil, fmt.Sprintf("malformed mc_gross %q", form.Get("mc_gross"))
	}
	if gross.LessThan(minimumGross) {
		return nil, fmt.Sprintf("tiny payment (%s %s)", gross, currency)
	}
	fee, err := decimal.NewFromString(form.Get("mc_fee"))
	if err != nil {
		return nil, fmt.Sprintf("malformed mc_fee %q", form.Get("mc_fee"))
	}
	if fee.IsNegative() {
		return nil, fmt.Sprintf("negative mc_fee %q", form.Get("mc_fee"))
	}

	email := form.Get("payer_email")
	if email == "" {
		return nil, "missing payer_email"
	}
	txnID := form.Get("txn_id")
	if txnID == "" {
		return nil, "missing txn_id"
	}

	options := parseOptions(form)

	// IPNs that predate the is_donation option are donations.
	isDonation := true
	if v, ok := options["is_donation"]; ok {
		isDonation = v == "yes"
	}

	p := &payment.Payment{
		IsDonation:      isDonation,
		FirstName:       form.Get("first_name"),
		LastName:        form.Get("last_name"),
		Email:           email,
		AddressStreet:   optional(form, "address_street"),
		AddressCity:     optional(form, "address_city"),
		AddressState:    optional(form, "address_state"),
		AddressPostcode: optional(form, "address_zip"),
		AddressCountry:  optional(form, "address_country"),
		PaymentMethod:   payment.MethodPayPal,
		TransactionID:   txnID,
		Amount:          gross.Sub(fee),
		Fee:             fee,
		Currency:        currency,
	}

	if isDonation {
		p.EditorName = optional(form, "custom")
		if v, ok := options["anonymous"]; ok {
			anonymous := v == "yes"
			p.Anonymous = &anonymous
		} else {
			log.Printf("PayPal: donation %s carries no anonymous option", txnID)
		}
		if v, ok := options["contact"]; ok {
			canContact := v == "yes"
			p.CanContact = &canContact
		} else {
			log.Printf("PayPal: donation %s carries no contact option", txnID)
		}
	} else {
		if v, ok := options["invoice_number"]; ok {
			if n, err := strconv.Atoi(v); err == nil {
				p.InvoiceNumber = &n
			} else {
				log.Printf("PayPal: malformed invoice number %q on %s", v, txnID)
			}
		} else {
			log.Printf("PayPal: organization payment %s carries no invoice number", txnID)
		}
	}

	return p, ""
}

// parseOptions flattens the positional option_name{N}/option_selection{N}
// pairs into a map. The scan starts at 1 and stops at the first absent name.
// A present name with a missing selection is recorded empty and logged.
func parseOptions(form url.Values) map[string]string {
	options := make(map[string]string)
	for i := 1; ; i++ {
		nameKey := fmt.Sprintf("option_name%d", i)
		if !form.Has(nameKey) {
			break
		}
		name := form.Get(nameKey)
		selectionKey := fmt.Sprintf("option_selection%d", i)
		if !form.Has(selectionKey) {
			log.Printf("PayPal: option %q has no %s", name, selectionKey)
			options[name] = ""
			continue
		}
		options[name] = form.Get(selectionKey)
	}
	return options
}

func isRegisteredAccount(receiver string, accounts map[string]string) bool {
	for _, addr := range accounts {
		if addr == receiver {
			return true
		}
	}
	return false
}

func optional(form url.Values, key string) *string {
	if !form.Has(key) {
		return nil
	}
	v := form.Get(key)
	if v == "" {
		return nil
	}
	return &v
}
