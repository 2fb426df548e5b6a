package postgres

import (
	"context"
	"database/sql"
	"errors"

	apperrors "github.com/autorentar/rental-payments/internal"
	"github.com/jmoiron/sqlx"
)

const ownerForBookingQuery = `
SELECT c.owner_id
FROM bookings b
JOIN cars c ON c.id = b.car_id
WHERE b.id = ?`

type OwnerRepository struct {
	db *sqlx.DB
}

func NewOwnerRepository(db *sqlx.DB) *OwnerRepository {
	return &OwnerRepository{db: db}
}

func (r *OwnerRepository) OwnerForBooking(ctx context.Context, bookingID string) (string, error) {
	var ownerID string
	err := r.db.GetContext(ctx, &ownerID, r.db.Rebind(ownerForBookingQuery), bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.ErrOwnerNotFound
	}
	if err != nil {
		return "", err
	}
	return ownerID, nil
}
