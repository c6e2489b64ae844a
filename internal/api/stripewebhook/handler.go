package stripewebhooks

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"metabrainz-payments/internal/ledger"
	"metabrainz-payments/internal/receipt"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/paymentintent"
	"github.com/stripe/stripe-go/v75/webhook"
)

// IntentFetcher loads a payment intent with its latest charge and balance
// transaction expanded. Tests inject a fake; production uses the Stripe API.
type IntentFetcher func(id string) (*stripe.PaymentIntent, error)

// FetchPaymentIntent is the production IntentFetcher. It relies on stripe.Key
// having been set at boot.
func FetchPaymentIntent(id string) (*stripe.PaymentIntent, error) {
	return paymentintent.Get(id, &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Expand: []*string{stripe.String("latest_charge.balance_transaction")},
		},
	})
}

type Handler struct {
	WebhookSecret string
	Ledger        ledger.Ledger
	Receipts      receipt.Sender
	Intents       IntentFetcher
}

func NewHandler(webhookSecret string, store ledger.Ledger, receipts receipt.Sender, intents IntentFetcher) *Handler {
	return &Handler{
		WebhookSecret: webhookSecret,
		Ledger:        store,
		Receipts:      receipts,
		Intents:       intents,
	}
}

// Webhook handles Stripe's signed event callbacks. Only two event types
// produce ledger entries: one-time checkout completions and paid subscription
// invoices. Everything else is acknowledged so Stripe stops redelivering.
func (h *Handler) Webhook(c *gin.Context) {
	payload, err := readBody(c, 65536)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "error reading request body"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		h.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		if isSignatureError(err) {
			log.Printf("Stripe: signature verification failed: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		} else {
			log.Printf("Stripe: malformed webhook payload: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		}
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		if session.Mode != stripe.CheckoutSessionModePayment {
			// Subscription checkouts are recorded when their invoice is paid.
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		if session.PaymentIntent == nil || session.PaymentIntent.ID == "" {
			log.Printf("Stripe: checkout session %s has no payment intent", session.ID)
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		h.recordCharge(c, session.PaymentIntent.ID)

	case "invoice.paid":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		// The payment intent comes from the invoice itself, never from the
		// checkout session that may have started the subscription.
		if invoice.PaymentIntent == nil || invoice.PaymentIntent.ID == "" {
			log.Printf("Stripe: invoice %s has no payment intent", invoice.ID)
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		h.recordCharge(c, invoice.PaymentIntent.ID)

	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// recordCharge expands the payment intent, normalises its charge and inserts
// it. The receipt goes out only when the insert created a row.
func (h *Handler) recordCharge(c *gin.Context, intentID string) {
	intent, err := h.Intents(intentID)
	if err != nil {
		log.Printf("Stripe: failed to fetch payment intent %s: %v", intentID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch payment intent"})
		return
	}
	if intent.LatestCharge == nil {
		log.Printf("Stripe: payment intent %s has no charge", intentID)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	p, skip := NormalizeCharge(intent.LatestCharge)
	if p == nil {
		log.Printf("Stripe: skipping charge: %s", skip)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	result, err := h.Ledger.Insert(p)
	if err != nil {
		log.Printf("Stripe: ledger insert failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ledger error"})
		return
	}
	if result == ledger.Duplicate {
		log.Printf("Stripe: charge %s already recorded", p.TransactionID)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	log.Printf("Stripe: payment added, id %d", p.ID)

	if err := h.Receipts.SendReceipt(p); err != nil {
		log.Printf("Stripe: receipt for payment %d failed: %v", p.ID, err)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}

func readBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
