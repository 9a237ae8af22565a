package store

import (
	"context"

	"github.com/yeremiapane/venue-booking/models"
)

// Backend is the persistence the store mediates. Implementations must return
// ErrNotFound (possibly wrapped) for missing records.
type Backend interface {
	ListTables(ctx context.Context) ([]models.Table, error)
	GetTable(ctx context.Context, id uint) (*models.Table, error)
	CreateTable(ctx context.Context, table *models.Table) error
	UpdateTable(ctx context.Context, id uint, updates map[string]interface{}) error
	DeleteTable(ctx context.Context, id uint) error

	ListBookings(ctx context.Context, date string) ([]models.Booking, error)
	// ListBookingsWithTables is ListBookings with each booking's table preloaded.
	ListBookingsWithTables(ctx context.Context, date string) ([]models.Booking, error)
	// UserBookings lists a user's bookings on or after from, ordered by date.
	UserBookings(ctx context.Context, userID uint, from string) ([]models.Booking, error)
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	UpdateBooking(ctx context.Context, id uint, updates map[string]interface{}) error
	// AddBookingCharge increments a booking's total_price in place and returns
	// the booking as stored afterwards.
	AddBookingCharge(ctx context.Context, id uint, amount float64) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id uint) error
	DeleteBookingsForTable(ctx context.Context, tableID uint, date string) error
}

// Identity is the signed-in user a store acts for.
type Identity struct {
	UserID  uint   `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// Mode is the top-level view the identity is allowed to see.
func (i *Identity) Mode() string {
	if i != nil && i.IsAdmin {
		return "admin"
	}
	return "guest"
}
