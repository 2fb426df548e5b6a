package booking

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Booking is the bookings storage row. Dates are kept in the ISO text form
// the callers send; TotalAmount is in cents.
type Booking struct {
	ID                   string     `gorm:"column:id;primaryKey" json:"id,omitempty"`
	CarID                string     `gorm:"column:car_id;not null;index" json:"car_id"`
	RenterID             string     `gorm:"column:renter_id;not null;index" json:"renter_id"`
	StartAt              string     `gorm:"column:start_at;not null" json:"start_at"`
	EndAt                string     `gorm:"column:end_at;not null" json:"end_at"`
	TotalAmount          int64      `gorm:"column:total_amount;not null" json:"total_amount"`
	Status               string     `gorm:"column:status;not null" json:"status"`
	GuaranteeType        *string    `gorm:"column:guarantee_type" json:"guarantee_type"`
	GuaranteeAmountCents *int64     `gorm:"column:guarantee_amount_cents" json:"guarantee_amount_cents"`
	PickupLocation       *string    `gorm:"column:pickup_location" json:"pickup_location,omitempty"`
	DropoffLocation      *string    `gorm:"column:dropoff_location" json:"dropoff_location,omitempty"`
	Notes                *string    `gorm:"column:notes" json:"notes,omitempty"`
	CancelledAt          *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CancellationReason   *string    `gorm:"column:cancellation_reason" json:"cancellation_reason,omitempty"`
	CreatedAt            time.Time  `gorm:"column:created_at" json:"-"`
	UpdatedAt            time.Time  `gorm:"column:updated_at" json:"-"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
