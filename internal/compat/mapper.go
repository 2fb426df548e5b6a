// Package compat translates between the caller-facing DTO shapes and the
// storage rows for bookings, cars and payments.
//
// Insert mappings are total. Update mappings return a Patch holding only the
// columns the partial DTO sets, following the per-field policy tables below.
// The only failing paths are unknown payment enum values.
package compat

import "time"

// Clock supplies the mapping time for cancellation stamps and title years.
type Clock func() time.Time

type Mapper struct {
	now Clock
}

func NewMapper(clock Clock) *Mapper {
	if clock == nil {
		clock = time.Now
	}
	return &Mapper{now: clock}
}

var defaultMapper = NewMapper(time.Now)

// Patch is a partial storage row keyed by column name.
type Patch map[string]any

// Columns returns the column names in the patch, for gorm Select.
func (p Patch) Columns() []string {
	cols := make([]string, 0, len(p))
	for c := range p {
		cols = append(cols, c)
	}
	return cols
}

func ToDBBookingInsert(in BookingInsert) *BookingRow {
	return defaultMapper.ToDBBookingInsert(in)
}

func ToDBBookingUpdate(in BookingUpdate) Patch {
	return defaultMapper.ToDBBookingUpdate(in)
}

func ToDBCarInsert(in CarInsert) *CarRow {
	return defaultMapper.ToDBCarInsert(in)
}

func ToDBCarUpdate(in CarUpdate) Patch {
	return defaultMapper.ToDBCarUpdate(in)
}

func ToDBPaymentInsert(in PaymentInsert) (*PaymentRow, error) {
	return defaultMapper.ToDBPaymentInsert(in)
}

func ToDBPaymentUpdate(in PaymentUpdate) (Patch, error) {
	return defaultMapper.ToDBPaymentUpdate(in)
}
