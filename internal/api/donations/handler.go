package donations

import (
	"net/http"
	"strconv"

	"metabrainz-payments/internal/domain/payment"
	"metabrainz-payments/internal/ledger"

	"github.com/gin-gonic/gin"
)

const defaultPageSize = 30

// Ledger is the read side of the store these endpoints serve.
type Ledger interface {
	GetNagDays(editor string) (int, float64, error)
	GetRecentDonations(limit, offset int) (int64, []payment.Payment, error)
	GetBiggestDonations(limit, offset int) (int64, []ledger.DonationGroup, error)
}

type Handler struct {
	Ledger Ledger
}

func NewHandler(store Ledger) *Handler {
	return &Handler{Ledger: store}
}

// NagCheck reports whether a MusicBrainz editor should be prompted to donate.
// The MusicBrainz server consumes this cross-domain, hence the bare
// "<status>,<value>" plain-text response.
func (h *Handler) NagCheck(c *gin.Context) {
	editor := c.Param("editor")
	if editor == "" {
		editor = c.Query("editor")
	}
	if editor == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "editor not specified"})
		return
	}

	status, value, err := h.Ledger.GetNagDays(editor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check nag days"})
		return
	}
	c.String(http.StatusOK, "%d,%v\n", status, value)
}

// Recent lists donations newest first.
func (h *Handler) Recent(c *gin.Context) {
	limit, offset := pagination(c)
	count, rows, err := h.Ledger.GetRecentDonations(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load donations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count, "donations": rows})
}

// Biggest lists non-anonymous donors grouped by name, largest sum first.
func (h *Handler) Biggest(c *gin.Context) {
	limit, offset := pagination(c)
	count, groups, err := h.Ledger.GetBiggestDonations(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load donations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count, "donors": groups})
}

func pagination(c *gin.Context) (limit, offset int) {
	limit = defaultPageSize
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
