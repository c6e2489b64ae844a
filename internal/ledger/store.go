package ledger

import (
	"errors"
	"time"

	"metabrainz-payments/internal/domain/payment"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InsertResult reports whether Insert created a row or hit the unique index.
type InsertResult int

const (
	Inserted InsertResult = iota
	Duplicate
)

// Nag statuses returned by GetNagDays.
const (
	NagUnknown = -1 // editor has no recorded donations
	NagNotDue  = 0
	NagOverdue = 1
)

// Each dollar donated (net + fee) buys this many nag-free days.
const daysPerDollar = 7.5

// Ledger is the part of the store the intake handlers need.
type Ledger interface {
	LookupByTxn(transactionID string) (*payment.Payment, error)
	Insert(p *payment.Payment) (InsertResult, error)
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// LookupByTxn returns the payment with the given transaction id, or nil when
// none exists. Matching is case-sensitive.
func (s *Store) LookupByTxn(transactionID string) (*payment.Payment, error) {
	var p payment.Payment
	err := s.db.Where("transaction_id = ?", transactionID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Insert adds the payment iff no row with the same (payment_method,
// transaction_id) exists. The conflict is resolved inside a single statement,
// so two concurrent deliveries of the same notification produce exactly one
// row and exactly one Inserted result.
func (s *Store) Insert(p *payment.Payment) (InsertResult, error) {
	if p.PaymentDate.IsZero() {
		p.PaymentDate = time.Now().UTC()
	}
	res := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "payment_method"}, {Name: "transaction_id"}},
		DoNothing: true,
	}).Create(p)
	if res.Error != nil {
		return Duplicate, res.Error
	}
	if res.RowsAffected == 0 {
		return Duplicate, nil
	}
	return Inserted, nil
}

// GetRecentDonations returns donations ordered by payment date, newest
// first, plus the total donation count (computed before limit/offset).
func (s *Store) GetRecentDonations(limit, offset int) (int64, []payment.Payment, error) {
	var count int64
	if err := s.db.Model(&payment.Payment{}).Where("is_donation = ?", true).Count(&count).Error; err != nil {
		return 0, nil, err
	}

	var donations []payment.Payment
	err := s.db.
		Where("is_donation = ?", true).
		Order("payment_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&donations).Error
	if err != nil {
		return 0, nil, err
	}
	return count, donations, nil
}

// DonationGroup is one donor in the biggest-donations view: all non-anonymous
// donations from the same (first name, last name, editor) summed up.
type DonationGroup struct {
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	EditorName  *string         `json:"editor_name,omitempty"`
	PaymentDate time.Time       `json:"payment_date"` // most recent donation in the group
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
}

// GetBiggestDonations returns donor groups ordered by summed amount, plus the
// total number of groups.
func (s *Store) GetBiggestDonations(limit, offset int) (int64, []DonationGroup, error) {
	var count int64
	err := s.db.Raw(`
		SELECT COUNT(*) FROM (
			SELECT 1
			  FROM payment
			 WHERE is_donation = true AND anonymous = false
			 GROUP BY first_name, last_name, editor_name
		) AS donor_groups`).Scan(&count).Error
	if err != nil {
		return 0, nil, err
	}

	var groups []DonationGroup
	err = s.db.Raw(`
		SELECT first_name,
		       last_name,
		       editor_name,
		       MAX(payment_date) AS payment_date,
		       SUM(amount)       AS amount,
		       SUM(fee)          AS fee
		  FROM payment
		 WHERE is_donation = true AND anonymous = false
		 GROUP BY first_name, last_name, editor_name
		 ORDER BY amount DESC
		 LIMIT ? OFFSET ?`, limit, offset).Scan(&groups).Error
	if err != nil {
		return 0, nil, err
	}
	return count, groups, nil
}

// GetNagDays decides whether an editor should be prompted to donate. Each
// dollar of a donation (net + fee) buys 7.5 nag-free days; the row with the
// highest remaining balance wins. Status is NagUnknown for editors without
// donations, NagNotDue while the balance is non-negative, NagOverdue after.
// Editor matching is case-insensitive.
func (s *Store) GetNagDays(editor string) (int, float64, error) {
	var rows []struct {
		Nag float64
	}
	err := s.db.Raw(`
		SELECT ((amount + COALESCE(fee, 0)) * ?) -
		       ((EXTRACT(EPOCH FROM now()) - EXTRACT(EPOCH FROM payment_date)) / 86400) AS nag
		  FROM payment
		 WHERE lower(editor_name) = lower(?)
		 ORDER BY nag DESC
		 LIMIT 1`, daysPerDollar, editor).Scan(&rows).Error
	if err != nil {
		return NagUnknown, 0, err
	}
	if len(rows) == 0 {
		return NagUnknown, 0, nil
	}
	if rows[0].Nag >= 0 {
		return NagNotDue, rows[0].Nag, nil
	}
	return NagOverdue, rows[0].Nag, nil
}
