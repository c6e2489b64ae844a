package routes

import (
	"metabrainz-payments/internal/api/donations"
	"metabrainz-payments/internal/api/paypalipn"
	stripewebhooks "metabrainz-payments/internal/api/stripewebhook"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	PayPal    *paypalipn.Handler
	Stripe    *stripewebhooks.Handler
	Donations *donations.Handler
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Provider callbacks. These authenticate themselves (IPN handshake,
	// webhook signature), so they sit outside any middleware.
	r.POST("/payment/paypal/ipn", h.PayPal.IPN)
	r.POST("/payment/stripe/webhook/", h.Stripe.Webhook)

	r.GET("/donations/nag-check", h.Donations.NagCheck)
	r.GET("/donations/nag-check/:editor", h.Donations.NagCheck)
	r.GET("/donations/recent", h.Donations.Recent)
	r.GET("/donations/biggest", h.Donations.Biggest)
}
