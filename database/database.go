package database

import (
	"fmt"
	"log"

	"metabrainz-payments/config"
	"metabrainz-payments/internal/domain/payment"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	dsn := config.DB_URL
	if dsn == "" {
		log.Fatal("❌ DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}

	DB = db

	// The unique index on (payment_method, transaction_id) comes from the
	// model tags; it is the idempotency boundary for the whole intake path.
	if err := DB.AutoMigrate(&payment.Payment{}); err != nil {
		log.Fatal("❌ AutoMigrate error:", err)
	}

	fmt.Println("✅ Connected and migrated successfully")
}
