package paypalipn

import (
	"io"
	"log"
	"net/http"
	"net/url"

	"metabrainz-payments/internal/ledger"
	"metabrainz-payments/internal/receipt"

	"github.com/gin-gonic/gin"
)

// Handler receives PayPal Instant Payment Notifications. PayPal redelivers
// anything that does not get a 200, so every outcome short of a ledger
// failure is acknowledged with an empty 200 body.
type Handler struct {
	Verifier *Verifier
	Ledger   ledger.Ledger
	Receipts receipt.Sender
	Config   Config
}

func NewHandler(verifier *Verifier, store ledger.Ledger, receipts receipt.Sender, cfg Config) *Handler {
	return &Handler{
		Verifier: verifier,
		Ledger:   store,
		Receipts: receipts,
		Config:   cfg,
	}
}

func (h *Handler) IPN(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 65536)
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Printf("PayPal: error reading IPN body: %v", err)
		c.String(http.StatusOK, "")
		return
	}
	form, err := url.ParseQuery(string(raw))
	if err != nil {
		log.Printf("PayPal: malformed IPN body: %v", err)
		c.String(http.StatusOK, "")
		return
	}

	verified, err := h.Verifier.Verify(c.Request.Context(), raw)
	if err != nil {
		log.Printf("PayPal: verification call failed: %v", err)
		c.String(http.StatusOK, "")
		return
	}
	if !verified {
		log.Printf("PayPal: IPN did not verify, dropping (txn_id %q)", form.Get("txn_id"))
		c.String(http.StatusOK, "")
		return
	}

	p, skip := Normalize(form, h.Config)
	if p == nil {
		log.Printf("PayPal: skipping IPN: %s", skip)
		c.String(http.StatusOK, "")
		return
	}

	// Already-seen transaction ids are dropped up front; the unique index in
	// Insert still backstops concurrent deliveries of the same id.
	existing, err := h.Ledger.LookupByTxn(p.TransactionID)
	if err != nil {
		log.Printf("PayPal: ledger lookup failed: %v", err)
		c.String(http.StatusInternalServerError, "")
		return
	}
	if existing != nil {
		log.Printf("PayPal: transaction id %s has been used before", p.TransactionID)
		c.String(http.StatusOK, "")
		return
	}

	result, err := h.Ledger.Insert(p)
	if err != nil {
		log.Printf("PayPal: ledger insert failed: %v", err)
		c.String(http.StatusInternalServerError, "")
		return
	}
	if result == ledger.Duplicate {
		log.Printf("PayPal: transaction id %s inserted concurrently", p.TransactionID)
		c.String(http.StatusOK, "")
		return
	}
	log.Printf("PayPal: payment added, id %d", p.ID)

	// A failed receipt never rolls back the insert; it can be resent by hand.
	if err := h.Receipts.SendReceipt(p); err != nil {
		log.Printf("PayPal: receipt for payment %d failed: %v", p.ID, err)
	}
	c.String(http.StatusOK, "")
}
