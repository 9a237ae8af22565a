package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/venue-booking/models"
	"github.com/yeremiapane/venue-booking/store"
)

func seedTable(t *testing.T, repo *Repository, name string) models.Table {
	t.Helper()
	table := models.Table{Name: name, Section: "Main Floor", CapacityMin: 2, CapacityMax: 6, PricePerPerson: 50, PositionX: 50, PositionY: 50}
	require.NoError(t, repo.CreateTable(context.Background(), &table))
	return table
}

func seedBooking(t *testing.T, repo *Repository, tableID, userID uint, date string) models.Booking {
	t.Helper()
	booking := models.Booking{
		TableID:     tableID,
		UserID:      userID,
		BookingDate: date,
		BookingName: "Party",
		GuestCount:  2,
		GuestList: []models.Guest{
			{ID: "g1", FirstName: "Ana", LastName: "Putri", Arrived: true},
			{ID: "g2", FirstName: "Budi", LastName: "Santoso"},
		},
		TotalPrice: 150,
		Status:     models.BookingConfirmed,
	}
	require.NoError(t, repo.CreateBooking(context.Background(), &booking))
	return booking
}

func TestRepositoryTables(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	t2 := seedTable(t, repo, "Table 2")
	t1 := seedTable(t, repo, "Table 1")

	tables, err := repo.ListTables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, t2.ID, tables[0].ID)
	assert.Equal(t, t1.ID, tables[1].ID)

	require.NoError(t, repo.UpdateTable(ctx, t1.ID, map[string]interface{}{"position_x": 12.5, "name": "Window"}))
	tables, err = repo.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Window", tables[1].Name)
	assert.Equal(t, 12.5, tables[1].PositionX)

	assert.ErrorIs(t, repo.UpdateTable(ctx, 999, map[string]interface{}{"name": "x"}), store.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteTable(ctx, 999), store.ErrNotFound)
}

func TestRepositoryDeleteTableRemovesBookings(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	table := seedTable(t, repo, "Table 1")
	keep := seedTable(t, repo, "Table 2")
	seedBooking(t, repo, table.ID, 7, "2025-06-14")
	seedBooking(t, repo, keep.ID, 7, "2025-06-14")

	require.NoError(t, repo.DeleteTable(ctx, table.ID))

	bookings, err := repo.ListBookings(ctx, "2025-06-14")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, keep.ID, bookings[0].TableID)
}

func TestRepositoryBookings(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	table := seedTable(t, repo, "Table 1")
	b := seedBooking(t, repo, table.ID, 7, "2025-06-14")
	seedBooking(t, repo, table.ID, 8, "2025-06-15")

	bookings, err := repo.ListBookings(ctx, "2025-06-14")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Nil(t, bookings[0].Table)
	require.Len(t, bookings[0].GuestList, 2)
	assert.Equal(t, "Ana", bookings[0].GuestList[0].FirstName)
	assert.True(t, bookings[0].GuestList[0].Arrived)
	assert.Equal(t, 1, bookings[0].ArrivedCount())

	withTables, err := repo.ListBookingsWithTables(ctx, "2025-06-14")
	require.NoError(t, err)
	require.NotNil(t, withTables[0].Table)
	assert.Equal(t, "Table 1", withTables[0].Table.Name)

	got, err := repo.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Party", got.BookingName)

	_, err = repo.GetBooking(ctx, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRepositoryUpdateBookingGuestList(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	table := seedTable(t, repo, "Table 1")
	b := seedBooking(t, repo, table.ID, 7, "2025-06-14")

	list := []models.Guest{{ID: "g9", FirstName: "Citra", LastName: "Dewi"}}
	name := "Renamed"
	patch := models.BookingPatch{BookingName: &name, GuestList: &list}
	require.NoError(t, repo.UpdateBooking(ctx, b.ID, patch.Updates()))

	got, err := repo.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.BookingName)
	assert.Equal(t, 1, got.GuestCount)
	require.Len(t, got.GuestList, 1)
	assert.Equal(t, "Citra", got.GuestList[0].FirstName)
	assert.Equal(t, 150.0, got.TotalPrice)

	assert.ErrorIs(t, repo.UpdateBooking(ctx, 999, patch.Updates()), store.ErrNotFound)
}

func TestRepositoryDeleteBookings(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	table := seedTable(t, repo, "Table 1")
	b := seedBooking(t, repo, table.ID, 7, "2025-06-14")
	seedBooking(t, repo, table.ID, 8, "2025-06-14")
	seedBooking(t, repo, table.ID, 8, "2025-06-15")

	require.NoError(t, repo.DeleteBooking(ctx, b.ID))
	assert.ErrorIs(t, repo.DeleteBooking(ctx, b.ID), store.ErrNotFound)

	require.NoError(t, repo.DeleteBookingsForTable(ctx, table.ID, "2025-06-14"))
	left, err := repo.ListBookings(ctx, "2025-06-14")
	require.NoError(t, err)
	assert.Empty(t, left)

	other, err := repo.ListBookings(ctx, "2025-06-15")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestRepositoryUserBookings(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	table := seedTable(t, repo, "Table 1")
	seedBooking(t, repo, table.ID, 7, "2025-07-01")
	seedBooking(t, repo, table.ID, 7, "2025-06-20")
	seedBooking(t, repo, table.ID, 7, "2025-01-01")
	seedBooking(t, repo, table.ID, 8, "2025-06-20")

	bookings, err := repo.UserBookings(ctx, 7, "2025-06-14")
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "2025-06-20", bookings[0].BookingDate)
	assert.Equal(t, "2025-07-01", bookings[1].BookingDate)
	require.NotNil(t, bookings[0].Table)
}

func TestRepositoryProfile(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, db.Create(&models.Profile{ID: 3, FullName: "ana", IsAdmin: true}).Error)

	p, err := repo.Profile(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, p.IsAdmin)

	_, err = repo.Profile(context.Background(), 4)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRepositoryBacksStore(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()
	table := seedTable(t, repo, "Table 1")

	st := store.New(repo, store.WithDate("2025-06-14"), store.WithIdentity(store.Identity{UserID: 7, Email: "ana@example.com"}))
	require.NoError(t, st.LoadTables(ctx))

	b, err := st.Reserve(ctx, table.ID, "Party", []models.Guest{{FirstName: "Ana", LastName: "Putri"}}, 0)
	require.NoError(t, err)

	v, ok := st.Table(table.ID)
	require.True(t, ok)
	assert.Equal(t, store.StatusOccupied, v.Status)

	require.NoError(t, st.CancelBooking(ctx, b.ID))
	v, _ = st.Table(table.ID)
	assert.Equal(t, store.StatusAvailable, v.Status)
}

func TestRepositoryGetTable(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	table := seedTable(t, repo, "Window")

	got, err := repo.GetTable(context.Background(), table.ID)
	require.NoError(t, err)
	assert.Equal(t, "Window", got.Name)

	_, err = repo.GetTable(context.Background(), 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRepositoryAddBookingCharge(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()
	table := seedTable(t, repo, "Table 1")
	booking := seedBooking(t, repo, table.ID, 7, "2025-06-14")

	_, err := repo.AddBookingCharge(ctx, booking.ID, 10)
	require.NoError(t, err)
	updated, err := repo.AddBookingCharge(ctx, booking.ID, 15.5)
	require.NoError(t, err)
	assert.Equal(t, 175.5, updated.TotalPrice)
	assert.Len(t, updated.GuestList, 2)

	_, err = repo.AddBookingCharge(ctx, 999, 10)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
