package paypalipn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	liveVerifyURL    = "https://www.paypal.com/cgi-bin/webscr"
	sandboxVerifyURL = "https://www.sandbox.paypal.com/cgi-bin/webscr"
)

// Verifier performs the IPN verification handshake: the raw notification body
// is echoed back to PayPal and only the literal response "VERIFIED" proves
// authenticity.
type Verifier struct {
	URL    string
	Client *http.Client
}

func NewVerifier(production bool) *Verifier {
	url := sandboxVerifyURL
	if production {
		url = liveVerifyURL
	}
	return &Verifier{
		URL:    url,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Verify posts cmd=_notify-validate plus the verbatim IPN body. The body must
// not be re-encoded; PayPal compares it byte-for-byte.
func (v *Verifier) Verify(ctx context.Context, rawBody []byte) (bool, error) {
	body := "cmd=_notify-validate&" + string(rawBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.URL, strings.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.Client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, fmt.Errorf("verification endpoint returned status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return false, err
	}
	return string(b) == "VERIFIED", nil
}
