package store

import "github.com/yeremiapane/venue-booking/models"

type Status string

const (
	StatusAvailable Status = "available"
	StatusOccupied  Status = "occupied"
	StatusPartial   Status = "partial"
	StatusYours     Status = "yours"
)

// DeriveStatus is the reconciliation rule: a table is occupied when at least
// one booking exists for it on the loaded date.
func DeriveStatus(bookings []models.Booking) Status {
	if len(bookings) > 0 {
		return StatusOccupied
	}
	return StatusAvailable
}

// ViewStatus refines the derived status for display. "yours" wins when the
// user holds a booking on the table; "partial" marks a canonical booking whose
// guests have only partly arrived.
func ViewStatus(view TableView, userID uint) Status {
	if userID != 0 {
		for _, b := range view.Bookings {
			if b.UserID == userID {
				return StatusYours
			}
		}
	}
	if b, ok := view.CanonicalBooking(); ok {
		if arrived := b.ArrivedCount(); arrived > 0 && arrived < b.GuestCount {
			return StatusPartial
		}
	}
	return DeriveStatus(view.Bookings)
}
