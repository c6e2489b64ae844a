package main

import (
	"os"
	"time"

	"metabrainz-payments/config"
	"metabrainz-payments/database"
	"metabrainz-payments/internal/api/donations"
	"metabrainz-payments/internal/api/paypalipn"
	stripewebhooks "metabrainz-payments/internal/api/stripewebhook"
	routes "metabrainz-payments/internal/app/http"
	"metabrainz-payments/internal/ledger"
	"metabrainz-payments/internal/receipt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()
	database.InitDB()

	// Needed for the payment intent expansion calls.
	stripe.Key = config.StripeKey()

	store := ledger.NewStore(database.DB)
	receipts := receipt.NewEmitter(config.MB_MAIL_SERVER_URI, config.MAIL_FROM_DOMAIN)

	r := gin.Default()

	// The nag-check endpoint is consumed cross-domain by MusicBrainz.
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{getCORSOrigin()},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Handlers{
		PayPal: paypalipn.NewHandler(
			paypalipn.NewVerifier(config.PAYMENT_PRODUCTION),
			store,
			receipts,
			paypalipn.Config{
				AccountIDs: config.PAYPAL_ACCOUNT_IDS,
				Business:   config.PAYPAL_BUSINESS,
			},
		),
		Stripe: stripewebhooks.NewHandler(
			config.STRIPE_WEBHOOK_SECRET,
			store,
			receipts,
			stripewebhooks.FetchPaymentIntent,
		),
		Donations: donations.NewHandler(store),
	})

	r.Run(":" + config.PORT)
}

func getCORSOrigin() string {
	if origin := os.Getenv("CORS_ORIGIN"); origin != "" {
		return origin
	}
	return "*"
}
