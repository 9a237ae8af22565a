package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/venue-booking/models"
	"github.com/yeremiapane/venue-booking/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the gorm-backed implementation of store.Backend.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

var _ store.Backend = (*Repository)(nil)

func notFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, store.ErrNotFound)
	}
	return err
}

func (r *Repository) exists(ctx context.Context, model interface{}, id uint) error {
	var count int64
	if err := r.DB.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) ListTables(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *Repository) GetTable(ctx context.Context, id uint) (*models.Table, error) {
	var table models.Table
	if err := r.DB.WithContext(ctx).First(&table, id).Error; err != nil {
		return nil, notFound(err, "table", id)
	}
	return &table, nil
}

func (r *Repository) CreateTable(ctx context.Context, table *models.Table) error {
	return r.DB.WithContext(ctx).Create(table).Error
}

func (r *Repository) UpdateTable(ctx context.Context, id uint, updates map[string]interface{}) error {
	if err := r.exists(ctx, &models.Table{}, id); err != nil {
		return notFound(err, "table", id)
	}
	return r.DB.WithContext(ctx).Model(&models.Table{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteTable removes the table and every booking that references it.
func (r *Repository) DeleteTable(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("table_id = ?", id).Delete(&models.Booking{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Table{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound(gorm.ErrRecordNotFound, "table", id)
		}
		return nil
	})
}

func (r *Repository) ListBookings(ctx context.Context, date string) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := r.DB.WithContext(ctx).
		Where("booking_date = ?", date).
		Order("id ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *Repository) ListBookingsWithTables(ctx context.Context, date string) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := r.DB.WithContext(ctx).
		Preload("Table").
		Where("booking_date = ?", date).
		Order("id ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *Repository) UserBookings(ctx context.Context, userID uint, from string) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := r.DB.WithContext(ctx).
		Preload("Table").
		Where("user_id = ? AND booking_date >= ?", userID, from).
		Order("booking_date ASC").
		Order("id ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *Repository) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := r.DB.WithContext(ctx).First(&booking, id).Error; err != nil {
		return nil, notFound(err, "booking", id)
	}
	return &booking, nil
}

func (r *Repository) CreateBooking(ctx context.Context, booking *models.Booking) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(booking).Error
}

func (r *Repository) UpdateBooking(ctx context.Context, id uint, updates map[string]interface{}) error {
	if err := r.exists(ctx, &models.Booking{}, id); err != nil {
		return notFound(err, "booking", id)
	}
	return r.DB.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", id).Updates(updates).Error
}

// AddBookingCharge menambah total_price langsung di database supaya charge
// yang datang bersamaan tidak saling menimpa.
func (r *Repository) AddBookingCharge(ctx context.Context, id uint, amount float64) (*models.Booking, error) {
	var booking models.Booking
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Booking{}).Where("id = ?", id).
			Update("total_price", gorm.Expr("total_price + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&booking, id).Error
	})
	if err != nil {
		return nil, notFound(err, "booking", id)
	}
	return &booking, nil
}

func (r *Repository) DeleteBooking(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Booking{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "booking", id)
	}
	return nil
}

func (r *Repository) DeleteBookingsForTable(ctx context.Context, tableID uint, date string) error {
	return r.DB.WithContext(ctx).
		Where("table_id = ? AND booking_date = ?", tableID, date).
		Delete(&models.Booking{}).Error
}

// Profile returns the profile of userID, used by the session gate.
func (r *Repository) Profile(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.DB.WithContext(ctx).First(&profile, userID).Error; err != nil {
		return nil, notFound(err, "profile", userID)
	}
	return &profile, nil
}
