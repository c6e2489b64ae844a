package config

import "testing"

func TestParseAccountIDs(t *testing.T) {
	accounts := parseAccountIDs("usd:paypal-usd@metabrainz.org, EUR:paypal-eur@metabrainz.org")

	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %v", accounts)
	}
	if accounts["USD"] != "paypal-usd@metabrainz.org" {
		t.Fatalf("USD account = %q", accounts["USD"])
	}
	if accounts["EUR"] != "paypal-eur@metabrainz.org" {
		t.Fatalf("EUR account = %q", accounts["EUR"])
	}
}

func TestPayPalAccountFor(t *testing.T) {
	PAYPAL_ACCOUNT_IDS = map[string]string{"USD": "paypal-usd@metabrainz.org"}

	addr, ok := PayPalAccountFor("usd")
	if !ok || addr != "paypal-usd@metabrainz.org" {
		t.Fatalf("PayPalAccountFor(usd) = %q, %v", addr, ok)
	}
	if _, ok := PayPalAccountFor("rub"); ok {
		t.Fatalf("expected no account for rub")
	}
}

func TestStripeKeySelection(t *testing.T) {
	STRIPE_SECRET_KEY = "sk_live"
	STRIPE_TEST_SECRET_KEY = "sk_test"

	PAYMENT_PRODUCTION = true
	if got := StripeKey(); got != "sk_live" {
		t.Fatalf("production key = %q", got)
	}

	PAYMENT_PRODUCTION = false
	if got := StripeKey(); got != "sk_test" {
		t.Fatalf("test key = %q", got)
	}

	STRIPE_TEST_SECRET_KEY = ""
	if got := StripeKey(); got != "sk_live" {
		t.Fatalf("fallback key = %q", got)
	}
}
