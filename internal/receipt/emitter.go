package receipt

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"metabrainz-payments/internal/domain/payment"

	"github.com/google/uuid"
)

// Sender dispatches a receipt for a freshly inserted ledger row.
type Sender interface {
	SendReceipt(p *payment.Payment) error
}

// Emitter renders the PDF receipt and hands it to the MetaBrainz mail server.
type Emitter struct {
	ServerURI  string // base URI of the mail server, no trailing slash
	FromDomain string
	Client     *http.Client
}

func NewEmitter(serverURI, fromDomain string) *Emitter {
	return &Emitter{
		ServerURI:  strings.TrimRight(serverURI, "/"),
		FromDomain: fromDomain,
		Client:     &http.Client{Timeout: 30 * time.Second},
	}
}

type attachment struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        string `json:"data"` // base64
}

// sendSingleRequest is the mail server's /send_single payload.
type sendSingleRequest struct {
	From        string         `json:"from"`
	To          string         `json:"to"`
	TemplateID  string         `json:"template_id"`
	Params      map[string]any `json:"params"`
	Language    *string        `json:"language"`
	InReplyTo   []string       `json:"in_reply_to"`
	Sender      *string        `json:"sender"`
	References  []string       `json:"references"`
	ReplyTo     *string        `json:"reply_to"`
	MessageID   string         `json:"message_id"`
	Attachments []attachment   `json:"attachments,omitempty"`
}

func (e *Emitter) SendReceipt(p *payment.Payment) error {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)

	editor := ""
	if p.EditorName != nil {
		editor = *p.EditorName
	}
	pdf, err := RenderPDF(Details{
		Date:       p.PaymentDate,
		Amount:     p.Amount,
		Name:       name,
		IsDonation: p.IsDonation,
		EditorName: editor,
	})
	if err != nil {
		return err
	}

	subject := "Receipt for your payment to the MetaBrainz Foundation"
	local := "payments"
	templateID := "payment-receipt"
	fileName := "metabrainz_payment.pdf"
	if p.IsDonation {
		subject = "Receipt for your donation to the MetaBrainz Foundation"
		local = "donations"
		templateID = "donation-receipt"
		fileName = "metabrainz_donation.pdf"
	}

	req := sendSingleRequest{
		From:       local + "@" + e.FromDomain,
		To:         p.Email,
		TemplateID: templateID,
		Params: map[string]any{
			"subject": subject,
			"body":    mailBody(name, p.IsDonation),
		},
		InReplyTo:  []string{},
		References: []string{},
		MessageID:  uuid.NewString(),
		Attachments: []attachment{{
			Name:        fileName,
			ContentType: "application/pdf",
			Data:        base64.StdEncoding.EncodeToString(pdf),
		}},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	resp, err := e.Client.Post(e.ServerURI+"/send_single", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("mail server returned status %d", resp.StatusCode)
	}
	return nil
}

func mailBody(name string, isDonation bool) string {
	if isDonation {
		return fmt.Sprintf(
			"Dear %s:\n\n"+
				"Thank you very much for your donation to the MetaBrainz Foundation!\n\n"+
				"Your donation will allow the MetaBrainz Foundation to continue operating "+
				"and improving the MusicBrainz project and its related projects. The "+
				"foundation depends on donations from the community and therefore deeply "+
				"appreciates your support.\n\n"+
				"The MetaBrainz Foundation is a United States 501(c)(3) tax-exempt public "+
				"charity. This allows US taxpayers to deduct this donation from their "+
				"taxes under section 170 of the Internal Revenue Service code.\n\n"+
				"Please save a printed copy of the attached PDF receipt for your records.", name)
	}
	return fmt.Sprintf(
		"Dear %s:\n\n"+
			"Thank you very much for your payment to the MetaBrainz Foundation!\n\n"+
			"Your payment will allow the MetaBrainz Foundation to continue operating "+
			"and improving the MusicBrainz project and its related projects. The "+
			"foundation depends on these payments and therefore deeply appreciates "+
			"your support.\n\n"+
			"Please save a printed copy of the attached PDF receipt for your records.", name)
}
