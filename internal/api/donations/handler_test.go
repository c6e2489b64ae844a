package donations

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"metabrainz-payments/internal/domain/payment"
	"metabrainz-payments/internal/ledger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	nagStatus int
	nagValue  float64
	recent    []payment.Payment
	biggest   []ledger.DonationGroup

	gotLimit  int
	gotOffset int
}

func (f *fakeLedger) GetNagDays(editor string) (int, float64, error) {
	return f.nagStatus, f.nagValue, nil
}

func (f *fakeLedger) GetRecentDonations(limit, offset int) (int64, []payment.Payment, error) {
	f.gotLimit, f.gotOffset = limit, offset
	return int64(len(f.recent)), f.recent, nil
}

func (f *fakeLedger) GetBiggestDonations(limit, offset int) (int64, []ledger.DonationGroup, error) {
	f.gotLimit, f.gotOffset = limit, offset
	return int64(len(f.biggest)), f.biggest, nil
}

func newRouter(f *fakeLedger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(f)
	r := gin.New()
	r.GET("/donations/nag-check", h.NagCheck)
	r.GET("/donations/nag-check/:editor", h.NagCheck)
	r.GET("/donations/recent", h.Recent)
	r.GET("/donations/biggest", h.Biggest)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestNagCheck(t *testing.T) {
	tests := []struct {
		name   string
		status int
		value  float64
		want   string
	}{
		{"unknown editor", ledger.NagUnknown, 0, "-1,0\n"},
		{"not yet due", ledger.NagNotDue, 12.5, "0,12.5\n"},
		{"overdue", ledger.NagOverdue, -3.25, "1,-3.25\n"},
	}

	for _, tt := range tests {
		r := newRouter(&fakeLedger{nagStatus: tt.status, nagValue: tt.value})
		w := get(r, "/donations/nag-check/tester")
		require.Equal(t, http.StatusOK, w.Code, tt.name)
		assert.Equal(t, tt.want, w.Body.String(), tt.name)
	}
}

func TestNagCheckQueryParam(t *testing.T) {
	r := newRouter(&fakeLedger{nagStatus: ledger.NagNotDue, nagValue: 1})
	w := get(r, "/donations/nag-check?editor=tester")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0,1\n", w.Body.String())
}

func TestNagCheckMissingEditor(t *testing.T) {
	r := newRouter(&fakeLedger{})
	w := get(r, "/donations/nag-check")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecentDonations(t *testing.T) {
	f := &fakeLedger{recent: []payment.Payment{{
		ID:            7,
		IsDonation:    true,
		FirstName:     "Tester",
		Email:         "test@example.org",
		PaymentDate:   time.Now(),
		PaymentMethod: payment.MethodPayPal,
		TransactionID: "TEST1",
	}}}
	r := newRouter(f)

	w := get(r, "/donations/recent?limit=10&offset=20")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, f.gotLimit)
	assert.Equal(t, 20, f.gotOffset)
	assert.Contains(t, w.Body.String(), `"count":1`)
	assert.Contains(t, w.Body.String(), `"TEST1"`)
}

func TestPaginationDefaultsAndClamps(t *testing.T) {
	f := &fakeLedger{}
	r := newRouter(f)

	get(r, "/donations/biggest")
	assert.Equal(t, defaultPageSize, f.gotLimit)
	assert.Equal(t, 0, f.gotOffset)

	get(r, "/donations/biggest?limit=5000&offset=-3")
	assert.Equal(t, defaultPageSize, f.gotLimit, "oversized limit falls back to the default")
	assert.Equal(t, 0, f.gotOffset, "negative offset falls back to zero")
}
