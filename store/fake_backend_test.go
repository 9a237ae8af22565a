package store_test

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/yeremiapane/venue-booking/models"
	"github.com/yeremiapane/venue-booking/store"
	"gorm.io/datatypes"
)

// fakeBackend is an in-memory store.Backend with per-operation failure injection.
type fakeBackend struct {
	mu            sync.Mutex
	tables        []models.Table
	bookings      []models.Booking
	nextTableID   uint
	nextBookingID uint
	fail          map[string]error

	listCalls int
	// onList runs outside the lock after ListBookings has read its result.
	onList func(date string)
}

var _ store.Backend = (*fakeBackend)(nil)

func newFakeBackend(tables ...models.Table) *fakeBackend {
	f := &fakeBackend{fail: make(map[string]error)}
	for _, t := range tables {
		f.nextTableID++
		if t.ID == 0 {
			t.ID = f.nextTableID
		}
		f.tables = append(f.tables, t)
	}
	return f
}

func (f *fakeBackend) failOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = err
}

func (f *fakeBackend) clearFailures() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = make(map[string]error)
}

func (f *fakeBackend) err(op string) error {
	return f.fail[op]
}

func (f *fakeBackend) bookingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bookings)
}

// insertBooking simulates a write by another client.
func (f *fakeBackend) insertBooking(b models.Booking) models.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextBookingID++
	b.ID = f.nextBookingID
	f.bookings = append(f.bookings, b.Clone())
	return b
}

func (f *fakeBackend) table(id uint) *models.Table {
	for i := range f.tables {
		if f.tables[i].ID == id {
			return &f.tables[i]
		}
	}
	return nil
}

func (f *fakeBackend) ListTables(ctx context.Context) ([]models.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("ListTables"); err != nil {
		return nil, err
	}
	out := append([]models.Table(nil), f.tables...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeBackend) GetTable(ctx context.Context, id uint) (*models.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("GetTable"); err != nil {
		return nil, err
	}
	for _, t := range f.tables {
		if t.ID == id {
			c := t
			return &c, nil
		}
	}
	return nil, fmt.Errorf("table %d: %w", id, store.ErrNotFound)
}

func (f *fakeBackend) CreateTable(ctx context.Context, table *models.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("CreateTable"); err != nil {
		return err
	}
	f.nextTableID++
	table.ID = f.nextTableID
	f.tables = append(f.tables, *table)
	return nil
}

func (f *fakeBackend) UpdateTable(ctx context.Context, id uint, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("UpdateTable"); err != nil {
		return err
	}
	t := f.table(id)
	if t == nil {
		return fmt.Errorf("table %d: %w", id, store.ErrNotFound)
	}
	for k, v := range updates {
		switch k {
		case "name":
			t.Name = v.(string)
		case "section":
			t.Section = v.(string)
		case "capacity_min":
			t.CapacityMin = v.(int)
		case "capacity_max":
			t.CapacityMax = v.(int)
		case "price_per_person":
			t.PricePerPerson = v.(float64)
		case "min_spend":
			t.MinSpend = v.(float64)
		case "position_x":
			t.PositionX = v.(float64)
		case "position_y":
			t.PositionY = v.(float64)
		}
	}
	return nil
}

func (f *fakeBackend) DeleteTable(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("DeleteTable"); err != nil {
		return err
	}
	if f.table(id) == nil {
		return fmt.Errorf("table %d: %w", id, store.ErrNotFound)
	}
	tables := f.tables[:0]
	for _, t := range f.tables {
		if t.ID != id {
			tables = append(tables, t)
		}
	}
	f.tables = tables
	bookings := f.bookings[:0]
	for _, b := range f.bookings {
		if b.TableID != id {
			bookings = append(bookings, b)
		}
	}
	f.bookings = bookings
	return nil
}

func (f *fakeBackend) ListBookings(ctx context.Context, date string) ([]models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.listCalls++
	err := f.err("ListBookings")
	var out []models.Booking
	for _, b := range f.bookings {
		if b.BookingDate == date {
			out = append(out, b.Clone())
		}
	}
	hook := f.onList
	f.mu.Unlock()

	if hook != nil {
		hook(date)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeBackend) setOnList(hook func(date string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onList = hook
}

func (f *fakeBackend) ListBookingsWithTables(ctx context.Context, date string) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("ListBookingsWithTables"); err != nil {
		return nil, err
	}
	var out []models.Booking
	for _, b := range f.bookings {
		if b.BookingDate != date {
			continue
		}
		c := b.Clone()
		if t := f.table(b.TableID); t != nil {
			tc := *t
			c.Table = &tc
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeBackend) UserBookings(ctx context.Context, userID uint, from string) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("UserBookings"); err != nil {
		return nil, err
	}
	var out []models.Booking
	for _, b := range f.bookings {
		if b.UserID == userID && b.BookingDate >= from {
			out = append(out, b.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].BookingDate < out[j].BookingDate })
	return out, nil
}

func (f *fakeBackend) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("GetBooking"); err != nil {
		return nil, err
	}
	for _, b := range f.bookings {
		if b.ID == id {
			c := b.Clone()
			return &c, nil
		}
	}
	return nil, fmt.Errorf("booking %d: %w", id, store.ErrNotFound)
}

func (f *fakeBackend) CreateBooking(ctx context.Context, booking *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("CreateBooking"); err != nil {
		return err
	}
	f.nextBookingID++
	booking.ID = f.nextBookingID
	f.bookings = append(f.bookings, booking.Clone())
	return nil
}

func (f *fakeBackend) AddBookingCharge(ctx context.Context, id uint, amount float64) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("AddBookingCharge"); err != nil {
		return nil, err
	}
	for i := range f.bookings {
		if f.bookings[i].ID == id {
			f.bookings[i].TotalPrice += amount
			c := f.bookings[i].Clone()
			return &c, nil
		}
	}
	return nil, fmt.Errorf("booking %d: %w", id, store.ErrNotFound)
}

func (f *fakeBackend) UpdateBooking(ctx context.Context, id uint, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("UpdateBooking"); err != nil {
		return err
	}
	for i := range f.bookings {
		b := &f.bookings[i]
		if b.ID != id {
			continue
		}
		for k, v := range updates {
			switch k {
			case "booking_name":
				b.BookingName = v.(string)
			case "guest_list":
				b.GuestList = append(datatypes.JSONSlice[models.Guest](nil), v.(datatypes.JSONSlice[models.Guest])...)
			case "guest_count":
				b.GuestCount = v.(int)
			case "total_price":
				b.TotalPrice = v.(float64)
			case "status":
				b.Status = v.(string)
			}
		}
		return nil
	}
	return fmt.Errorf("booking %d: %w", id, store.ErrNotFound)
}

func (f *fakeBackend) DeleteBooking(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("DeleteBooking"); err != nil {
		return err
	}
	for i, b := range f.bookings {
		if b.ID == id {
			f.bookings = append(f.bookings[:i], f.bookings[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("booking %d: %w", id, store.ErrNotFound)
}

func (f *fakeBackend) DeleteBookingsForTable(ctx context.Context, tableID uint, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("DeleteBookingsForTable"); err != nil {
		return err
	}
	kept := f.bookings[:0]
	for _, b := range f.bookings {
		if b.TableID == tableID && b.BookingDate == date {
			continue
		}
		kept = append(kept, b)
	}
	f.bookings = kept
	return nil
}
