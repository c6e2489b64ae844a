package receipt

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"metabrainz-payments/internal/domain/payment"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPayment(isDonation bool) *payment.Payment {
	editor := "tester"
	p := &payment.Payment{
		ID:            1,
		IsDonation:    isDonation,
		FirstName:     "Tester",
		LastName:      "Testing",
		Email:         "test@example.org",
		PaymentDate:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		PaymentMethod: payment.MethodPayPal,
		TransactionID: "TEST1",
		Amount:        decimal.RequireFromString("41.50"),
		Fee:           decimal.RequireFromString("1.00"),
		Currency:      "usd",
	}
	if isDonation {
		p.EditorName = &editor
	}
	return p
}

func TestSendReceiptDonation(t *testing.T) {
	var captured sendSingleRequest
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := NewEmitter(srv.URL, "metabrainz.org")
	require.NoError(t, e.SendReceipt(testPayment(true)))

	assert.Equal(t, "/send_single", path)
	assert.Equal(t, "donations@metabrainz.org", captured.From)
	assert.Equal(t, "test@example.org", captured.To)
	assert.Equal(t, "donation-receipt", captured.TemplateID)
	assert.Equal(t, "Receipt for your donation to the MetaBrainz Foundation", captured.Params["subject"])
	assert.NotEmpty(t, captured.MessageID)
	assert.NotNil(t, captured.InReplyTo)
	assert.NotNil(t, captured.References)

	body, ok := captured.Params["body"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(body, "Dear Tester Testing:"))

	require.Len(t, captured.Attachments, 1)
	att := captured.Attachments[0]
	assert.Equal(t, "metabrainz_donation.pdf", att.Name)
	assert.Equal(t, "application/pdf", att.ContentType)
	pdf, err := base64.StdEncoding.DecodeString(att.Data)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))
}

func TestSendReceiptPayment(t *testing.T) {
	var captured sendSingleRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := NewEmitter(srv.URL, "metabrainz.org")
	require.NoError(t, e.SendReceipt(testPayment(false)))

	assert.Equal(t, "payments@metabrainz.org", captured.From)
	assert.Equal(t, "payment-receipt", captured.TemplateID)
	assert.Equal(t, "Receipt for your payment to the MetaBrainz Foundation", captured.Params["subject"])
	require.Len(t, captured.Attachments, 1)
	assert.Equal(t, "metabrainz_payment.pdf", captured.Attachments[0].Name)
}

func TestSendReceiptMailServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewEmitter(srv.URL, "metabrainz.org")
	err := e.SendReceipt(testPayment(true))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
