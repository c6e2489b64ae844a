package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

var (
	PORT   string
	DB_URL string

	// PAYMENT_PRODUCTION selects live vs sandbox PayPal verification and the
	// live vs test Stripe secret key.
	PAYMENT_PRODUCTION bool

	// PAYPAL_ACCOUNT_IDS maps an uppercase currency code to the receiver
	// address expected for payments in that currency.
	PAYPAL_ACCOUNT_IDS map[string]string
	PAYPAL_BUSINESS    string

	STRIPE_SECRET_KEY      string
	STRIPE_TEST_SECRET_KEY string
	STRIPE_WEBHOOK_SECRET  string

	MB_MAIL_SERVER_URI string
	MAIL_FROM_DOMAIN   string
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")

	PAYMENT_PRODUCTION = getEnv("PAYMENT_PRODUCTION", "false") == "true"

	PAYPAL_ACCOUNT_IDS = parseAccountIDs(mustEnv("PAYPAL_ACCOUNT_IDS"))
	PAYPAL_BUSINESS = mustEnv("PAYPAL_BUSINESS")

	STRIPE_SECRET_KEY = mustEnv("STRIPE_SECRET_KEY")
	STRIPE_TEST_SECRET_KEY = getEnv("STRIPE_TEST_SECRET_KEY", "")
	STRIPE_WEBHOOK_SECRET = mustEnv("STRIPE_WEBHOOK_SECRET")

	MB_MAIL_SERVER_URI = mustEnv("MB_MAIL_SERVER_URI")
	MAIL_FROM_DOMAIN = getEnv("MAIL_FROM_DOMAIN", "metabrainz.org")
}

// StripeKey returns the secret key matching PAYMENT_PRODUCTION.
func StripeKey() string {
	if PAYMENT_PRODUCTION || STRIPE_TEST_SECRET_KEY == "" {
		return STRIPE_SECRET_KEY
	}
	return STRIPE_TEST_SECRET_KEY
}

// PayPalAccountFor returns the receiver address registered for a currency
// code (any case). Second value is false when the currency has no account.
func PayPalAccountFor(currency string) (string, bool) {
	addr, ok := PAYPAL_ACCOUNT_IDS[strings.ToUpper(currency)]
	return addr, ok
}

// parseAccountIDs parses "USD:donations@example.org,EUR:eur@example.org".
func parseAccountIDs(raw string) map[string]string {
	accounts := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		currency, addr, ok := strings.Cut(pair, ":")
		if !ok {
			log.Fatalf("Malformed PAYPAL_ACCOUNT_IDS entry: %q", pair)
		}
		accounts[strings.ToUpper(strings.TrimSpace(currency))] = strings.TrimSpace(addr)
	}
	return accounts
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
