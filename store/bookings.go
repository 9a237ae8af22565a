package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yeremiapane/venue-booking/models"
	"github.com/yeremiapane/venue-booking/report"
	"gorm.io/datatypes"
)

// Reserve books tableID for the selected date on behalf of the signed-in user.
// A non-positive total is replaced by the table's price for the guest count.
// No capacity limit is applied: walk-in overflow beyond CapacityMax is allowed.
func (s *Store) Reserve(ctx context.Context, tableID uint, bookingName string, guests []models.Guest, total float64) (*models.Booking, error) {
	if err := s.requireIdentity(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(bookingName)
	if name == "" {
		return nil, fmt.Errorf("%w: booking name is required", ErrInvalidInput)
	}
	if len(guests) == 0 {
		return nil, fmt.Errorf("%w: at least one guest is required", ErrInvalidInput)
	}
	list, err := normalizeGuests(guests)
	if err != nil {
		return nil, err
	}

	// the snapshot can lag behind another admin's edits, so check the table
	// against the backend before booking it
	table, err := s.backend.GetTable(ctx, tableID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.refetch(ctx)
			return nil, fmt.Errorf("table %d: %w", tableID, ErrNotFound)
		}
		s.logger().WithError(err).WithField("table_id", tableID).Error("Error fetching table")
		return nil, fmt.Errorf("load table %d: %w", tableID, err)
	}
	if total <= 0 {
		total = table.PriceFor(len(list))
	}

	booking := &models.Booking{
		TableID:     tableID,
		UserID:      s.identity.UserID,
		BookingDate: s.SelectedDate(),
		BookingName: name,
		GuestName:   s.identity.Email,
		GuestCount:  len(list),
		GuestList:   datatypes.JSONSlice[models.Guest](list),
		TotalPrice:  total,
		Status:      models.BookingConfirmed,
	}
	if err := s.backend.CreateBooking(ctx, booking); err != nil {
		s.metrics.ObserveMutation("reserve", err)
		s.logger().WithError(err).WithField("table_id", tableID).Error("Booking failed")
		return nil, fmt.Errorf("reserve table %d: %w", tableID, err)
	}

	s.afterMutation(ctx, "reserve")
	return booking, nil
}

// CancelBooking deletes a booking the identity owns (any booking for admins).
func (s *Store) CancelBooking(ctx context.Context, bookingID uint) error {
	if _, err := s.authorizeBooking(ctx, bookingID); err != nil {
		return err
	}
	if err := s.backend.DeleteBooking(ctx, bookingID); err != nil {
		s.metrics.ObserveMutation("cancel_booking", err)
		s.logger().WithError(err).WithField("booking_id", bookingID).Error("Error canceling booking")
		return fmt.Errorf("cancel booking %d: %w", bookingID, err)
	}

	s.afterMutation(ctx, "cancel_booking")
	return nil
}

// UpdateBooking partially overwrites a booking. A replaced guest list also
// replaces the guest count; the total only changes when the patch sets it.
func (s *Store) UpdateBooking(ctx context.Context, bookingID uint, patch models.BookingPatch) error {
	if _, err := s.authorizeBooking(ctx, bookingID); err != nil {
		return err
	}
	if err := validate.Struct(patch); err != nil {
		return validationError(err)
	}
	if patch.GuestList != nil {
		list, err := normalizeGuests(*patch.GuestList)
		if err != nil {
			return err
		}
		patch.GuestList = &list
	}

	updates := patch.Updates()
	if len(updates) == 0 {
		return nil
	}
	if err := s.backend.UpdateBooking(ctx, bookingID, updates); err != nil {
		s.metrics.ObserveMutation("update_booking", err)
		s.logger().WithError(err).WithField("booking_id", bookingID).Error("Error updating booking")
		return fmt.Errorf("update booking %d: %w", bookingID, err)
	}

	s.afterMutation(ctx, "update_booking")
	return nil
}

// ToggleGuestArrival flips one guest's arrival flag by rewriting the list.
func (s *Store) ToggleGuestArrival(ctx context.Context, bookingID uint, guestID string) (*models.Guest, error) {
	booking, err := s.authorizeBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	list := append([]models.Guest(nil), booking.GuestList...)
	idx := -1
	for i := range list {
		if list[i].ID == guestID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("guest %q: %w", guestID, ErrNotFound)
	}
	list[idx].Arrived = !list[idx].Arrived

	if err := s.UpdateBooking(ctx, bookingID, models.BookingPatch{GuestList: &list}); err != nil {
		return nil, err
	}
	guest := list[idx]
	return &guest, nil
}

// AddCharge adds amount to the total of the table's canonical booking.
func (s *Store) AddCharge(ctx context.Context, tableID uint, amount float64) (*models.Booking, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if err := s.ensureTables(ctx); err != nil {
		return nil, err
	}

	view, ok := s.Table(tableID)
	if !ok {
		return nil, fmt.Errorf("table %d: %w", tableID, ErrNotFound)
	}
	booking, ok := view.CanonicalBooking()
	if !ok {
		return nil, ErrNoBooking
	}

	updated, err := s.backend.AddBookingCharge(ctx, booking.ID, amount)
	if err != nil {
		s.metrics.ObserveMutation("add_charge", err)
		s.logger().WithError(err).WithField("booking_id", booking.ID).Error("Error adding charge")
		return nil, fmt.Errorf("add charge to booking %d: %w", booking.ID, err)
	}

	s.afterMutation(ctx, "add_charge")
	return updated, nil
}

// ReleaseTable makes a table available again for the selected date by
// deleting its bookings on that date.
func (s *Store) ReleaseTable(ctx context.Context, tableID uint) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	date := s.SelectedDate()
	if err := s.backend.DeleteBookingsForTable(ctx, tableID, date); err != nil {
		s.metrics.ObserveMutation("release_table", err)
		s.logger().WithError(err).WithField("table_id", tableID).Error("Error removing booking")
		return fmt.Errorf("release table %d on %s: %w", tableID, date, err)
	}

	s.afterMutation(ctx, "release_table")
	return nil
}

// UserBookings lists the signed-in user's bookings from today on. A failed
// fetch yields an empty list.
func (s *Store) UserBookings(ctx context.Context) ([]models.Booking, error) {
	if err := s.requireIdentity(); err != nil {
		return nil, err
	}
	bookings, err := s.backend.UserBookings(ctx, s.identity.UserID, models.Today())
	if err != nil {
		s.logger().WithError(err).Error("Error fetching user bookings")
		return []models.Booking{}, nil
	}
	return bookings, nil
}

// GenerateReport aggregates the arrivals of date. It never fails: a fetch
// error is logged and produces the empty report.
func (s *Store) GenerateReport(ctx context.Context, date string) report.Report {
	bookings, err := s.backend.ListBookingsWithTables(ctx, date)
	if err != nil {
		s.logger().WithError(err).WithField("date", date).Error("Error fetching report data")
		return report.Empty(date)
	}
	return report.Aggregate(date, bookings)
}

// Booking returns one booking the identity may see and change.
func (s *Store) Booking(ctx context.Context, bookingID uint) (*models.Booking, error) {
	return s.authorizeBooking(ctx, bookingID)
}

// authorizeBooking loads a booking and checks the identity may change it.
func (s *Store) authorizeBooking(ctx context.Context, bookingID uint) (*models.Booking, error) {
	if err := s.requireIdentity(); err != nil {
		return nil, err
	}
	booking, err := s.backend.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("booking %d: %w", bookingID, ErrNotFound)
		}
		return nil, fmt.Errorf("load booking %d: %w", bookingID, err)
	}
	if !s.identity.IsAdmin && booking.UserID != s.identity.UserID {
		return nil, ErrForbidden
	}
	return booking, nil
}

// normalizeGuests trims names, validates them and gives every guest an id.
func normalizeGuests(guests []models.Guest) ([]models.Guest, error) {
	out := make([]models.Guest, len(guests))
	for i, g := range guests {
		g.FirstName = strings.TrimSpace(g.FirstName)
		g.LastName = strings.TrimSpace(g.LastName)
		if err := validate.Struct(g); err != nil {
			return nil, validationError(fmt.Errorf("guest %d: %v", i+1, err))
		}
		if g.ID == "" {
			g.ID = uuid.NewString()
		}
		out[i] = g
	}
	return out, nil
}
