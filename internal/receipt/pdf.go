package receipt

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

const (
	primaryFont = "Helvetica"

	pageLeft  = 52.0
	pageRight = 550.0
)

// Details is everything the receipt shows.
type Details struct {
	Date       time.Time
	Amount     decimal.Decimal
	Name       string
	IsDonation bool
	EditorName string
}

// RenderPDF builds the single-page receipt: header with the foundation name
// and receipt type, the foundation address, a note addressed to the payer,
// the transaction details and a thank-you line.
func RenderPDF(d Details) ([]byte, error) {
	receiptType := "Payment Receipt"
	contact := "payments@metabrainz.org"
	if d.IsDonation {
		receiptType = "Donation Receipt"
		contact = "donations@metabrainz.org"
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetTitle(receiptType, false)
	pdf.SetAuthor("MetaBrainz Foundation Inc.", false)
	pdf.SetMargins(pageLeft, 60, 44)
	pdf.AddPage()

	// Header
	pdf.SetFont(primaryFont, "", 14)
	pdf.Text(pageLeft+3, 92, receiptType)
	pdf.SetFont(primaryFont, "B", 16)
	org := "MetaBrainz Foundation Inc."
	pdf.Text(pageRight-pdf.GetStringWidth(org), 92, org)
	pdf.Line(pageLeft, 97, pageRight, 97)

	// Foundation address
	pdf.SetXY(pageLeft, 120)
	pdf.SetFont(primaryFont, "", 12)
	pdf.MultiCell(0, 16, fmt.Sprintf(
		"3565 South Higuera St., Suite B\n"+
			"San Luis Obispo, CA 93401\n\n"+
			"%s\n"+
			"https://metabrainz.org", contact),
		"", "R", false)

	// Note to the payer
	pdf.Ln(30)
	pdf.MultiCell(0, 16, noteText(d.Name, d.IsDonation), "", "L", false)

	// Transaction details
	pdf.Ln(30)
	pdf.SetFont(primaryFont, "B", 12)
	pdf.MultiCell(0, 16, detailsText(d), "", "C", false)

	pdf.Ln(40)
	pdf.SetFont(primaryFont, "B", 20)
	pdf.MultiCell(0, 24, "Thank you for your support!", "", "C", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func noteText(name string, isDonation bool) string {
	if isDonation {
		return fmt.Sprintf(
			"Dear %s:\n\n"+
				"Thank you very much for your donation to the MetaBrainz Foundation!\n\n"+
				"Your donation will allow the MetaBrainz Foundation to continue operating "+
				"and improving the MusicBrainz project and its related projects. The "+
				"foundation depends on donations from the community and therefore deeply "+
				"appreciates your support.\n\n"+
				"The MetaBrainz Foundation is a United States 501(c)(3) tax-exempt public "+
				"charity. This allows US taxpayers to deduct this donation from their taxes "+
				"under section 170 of the Internal Revenue Service code.\n\n"+
				"Please save a printed copy of this receipt for your records.", name)
	}
	return fmt.Sprintf(
		"Dear %s:\n\n"+
			"Thank you very much for your payment to the MetaBrainz Foundation!\n\n"+
			"Your payment will allow the MetaBrainz Foundation to continue operating "+
			"and improving the MusicBrainz project and its related projects. The "+
			"foundation depends on these payments and therefore deeply appreciates "+
			"your support.\n\n"+
			"Please save a printed copy of this receipt for your records.", name)
}

func detailsText(d Details) string {
	date := d.Date.UTC().Format("2006-01-02 15:04:05 MST")
	if d.IsDonation {
		return fmt.Sprintf("Donation date: %s\nDonation amount: %s\nDonation editor: %s",
			date, d.Amount.StringFixed(2), d.EditorName)
	}
	return fmt.Sprintf("Payment date: %s\nAmount: %s", date, d.Amount.StringFixed(2))
}
