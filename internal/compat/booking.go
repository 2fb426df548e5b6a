package compat

import (
	"time"

	"github.com/autorentar/rental-payments/internal/core/datamodel/booking"
)

type BookingRow = booking.Booking

type BookingInsert struct {
	CarID                string  `json:"car_id"`
	RenterID             string  `json:"renter_id"`
	StartDate            string  `json:"start_date"`
	EndDate              string  `json:"end_date"`
	TotalPriceCents      int64   `json:"total_price_cents"`
	Status               *string `json:"status,omitempty"`
	GuaranteeType        *string `json:"guarantee_type,omitempty"`
	GuaranteeAmountCents *int64  `json:"guarantee_amount_cents,omitempty"`
	PickupLocation       *string `json:"pickup_location,omitempty"`
	DropoffLocation      *string `json:"dropoff_location,omitempty"`
	Notes                *string `json:"notes,omitempty"`
}

// BookingUpdate is a partial booking; nil means absent.
type BookingUpdate struct {
	CarID                *string `json:"car_id,omitempty"`
	RenterID             *string `json:"renter_id,omitempty"`
	StartDate            *string `json:"start_date,omitempty"`
	EndDate              *string `json:"end_date,omitempty"`
	TotalPriceCents      *int64  `json:"total_price_cents,omitempty"`
	Status               *string `json:"status,omitempty"`
	GuaranteeType        *string `json:"guarantee_type,omitempty"`
	GuaranteeAmountCents *int64  `json:"guarantee_amount_cents,omitempty"`
	PickupLocation       *string `json:"pickup_location,omitempty"`
	DropoffLocation      *string `json:"dropoff_location,omitempty"`
	Notes                *string `json:"notes,omitempty"`
	CancelledByUserID    *string `json:"cancelled_by_user_id,omitempty"`
	CancellationReason   *string `json:"cancellation_reason,omitempty"`
}

type BookingDTO struct {
	ID                   string     `json:"id"`
	CarID                string     `json:"car_id"`
	RenterID             string     `json:"renter_id"`
	StartDate            string     `json:"start_date"`
	EndDate              string     `json:"end_date"`
	TotalPriceCents      int64      `json:"total_price_cents"`
	Status               string     `json:"status"`
	GuaranteeType        *string    `json:"guarantee_type"`
	GuaranteeAmountCents *int64     `json:"guarantee_amount_cents"`
	PickupLocation       *string    `json:"pickup_location,omitempty"`
	DropoffLocation      *string    `json:"dropoff_location,omitempty"`
	Notes                *string    `json:"notes,omitempty"`
	CancelledAt          *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason   *string    `json:"cancellation_reason,omitempty"`
}

var BookingUpdatePolicies = map[string]Policy{
	"car_id":                 Definedness,
	"renter_id":              Definedness,
	"start_date":             Definedness,
	"end_date":               Definedness,
	"total_price_cents":      Definedness,
	"status":                 Definedness,
	"guarantee_type":         Definedness,
	"guarantee_amount_cents": Definedness,
	"pickup_location":        Definedness,
	"dropoff_location":       Definedness,
	"notes":                  Definedness,
	"cancelled_by_user_id":   Truthy,
	"cancellation_reason":    Definedness,
}

var bookingUpdateRules = []fieldRule[BookingUpdate]{
	{name: "car_id", columns: []string{"car_id"}, get: func(d BookingUpdate) (any, bool) { return opt(d.CarID) }},
	{name: "renter_id", columns: []string{"renter_id"}, get: func(d BookingUpdate) (any, bool) { return opt(d.RenterID) }},
	{name: "start_date", columns: []string{"start_at"}, get: func(d BookingUpdate) (any, bool) { return opt(d.StartDate) }},
	{name: "end_date", columns: []string{"end_at"}, get: func(d BookingUpdate) (any, bool) { return opt(d.EndDate) }},
	{name: "total_price_cents", columns: []string{"total_amount"}, get: func(d BookingUpdate) (any, bool) { return opt(d.TotalPriceCents) }},
	{name: "status", columns: []string{"status"}, get: func(d BookingUpdate) (any, bool) { return opt(d.Status) }},
	{name: "guarantee_type", columns: []string{"guarantee_type"}, get: func(d BookingUpdate) (any, bool) { return opt(d.GuaranteeType) }},
	{name: "guarantee_amount_cents", columns: []string{"guarantee_amount_cents"}, get: func(d BookingUpdate) (any, bool) { return opt(d.GuaranteeAmountCents) }},
	{name: "pickup_location", columns: []string{"pickup_location"}, get: func(d BookingUpdate) (any, bool) { return opt(d.PickupLocation) }},
	{name: "dropoff_location", columns: []string{"dropoff_location"}, get: func(d BookingUpdate) (any, bool) { return opt(d.DropoffLocation) }},
	{name: "notes", columns: []string{"notes"}, get: func(d BookingUpdate) (any, bool) { return opt(d.Notes) }},
	{
		name: "cancelled_by_user_id",
		get:  func(d BookingUpdate) (any, bool) { return opt(d.CancelledByUserID) },
		// the canceller is not stored; only the moment of cancellation is
		apply: func(m *Mapper, patch Patch, _ any) {
			patch["cancelled_at"] = m.now()
		},
	},
	{name: "cancellation_reason", columns: []string{"cancellation_reason"}, get: func(d BookingUpdate) (any, bool) { return opt(d.CancellationReason) }},
}

func (m *Mapper) ToDBBookingInsert(in BookingInsert) *BookingRow {
	status := booking.StatusPending
	if in.Status != nil && *in.Status != "" {
		status = *in.Status
	}
	return &BookingRow{
		CarID:                in.CarID,
		RenterID:             in.RenterID,
		StartAt:              in.StartDate,
		EndAt:                in.EndDate,
		TotalAmount:          in.TotalPriceCents,
		Status:               status,
		GuaranteeType:        in.GuaranteeType,
		GuaranteeAmountCents: in.GuaranteeAmountCents,
		PickupLocation:       in.PickupLocation,
		DropoffLocation:      in.DropoffLocation,
		Notes:                in.Notes,
	}
}

func (m *Mapper) ToDBBookingUpdate(in BookingUpdate) Patch {
	return mapUpdate(m, in, bookingUpdateRules, BookingUpdatePolicies)
}

func FromDBBooking(row *BookingRow) BookingDTO {
	return BookingDTO{
		ID:                   row.ID,
		CarID:                row.CarID,
		RenterID:             row.RenterID,
		StartDate:            row.StartAt,
		EndDate:              row.EndAt,
		TotalPriceCents:      row.TotalAmount,
		Status:               row.Status,
		GuaranteeType:        row.GuaranteeType,
		GuaranteeAmountCents: row.GuaranteeAmountCents,
		PickupLocation:       row.PickupLocation,
		DropoffLocation:      row.DropoffLocation,
		Notes:                row.Notes,
		CancelledAt:          row.CancelledAt,
		CancellationReason:   row.CancellationReason,
	}
}
