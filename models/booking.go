package models

import (
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"
)

const (
	BookingConfirmed = "confirmed"

	// DateLayout is the calendar-day format stored in bookings.booking_date.
	DateLayout = "2006-01-02"
)

// Guest is one named person on a booking's guest list.
type Guest struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Arrived   bool   `json:"arrived"`
}

type Booking struct {
	ID          uint                       `gorm:"primaryKey" json:"id"`
	TableID     uint                       `gorm:"not null;index:idx_booking_table_date" json:"table_id"`
	Table       *Table                     `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"table,omitempty"`
	UserID      uint                       `gorm:"not null;index" json:"user_id"`
	BookingDate string                     `gorm:"type:varchar(10);not null;index:idx_booking_table_date" json:"booking_date"`
	BookingName string                     `gorm:"type:varchar(255)" json:"booking_name"`
	GuestName   string                     `gorm:"type:varchar(255)" json:"guest_name"`
	GuestCount  int                        `gorm:"not null;default:0" json:"guest_count"`
	GuestList   datatypes.JSONSlice[Guest] `json:"guest_list"`
	TotalPrice  float64                    `gorm:"type:decimal(10,2);not null;default:0" json:"total_price"`
	Status      string                     `gorm:"type:varchar(20);not null;default:'confirmed'" json:"status"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// ArrivedCount counts the guests marked as arrived.
func (b Booking) ArrivedCount() int {
	n := 0
	for _, g := range b.GuestList {
		if g.Arrived {
			n++
		}
	}
	return n
}

// SortedGuests returns a copy of the guest list ordered by first name, case-insensitively.
func (b Booking) SortedGuests() []Guest {
	out := append([]Guest(nil), b.GuestList...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].FirstName) < strings.ToLower(out[j].FirstName)
	})
	return out
}

// Clone deep-copies the booking, including its guest list.
func (b Booking) Clone() Booking {
	out := b
	if b.GuestList != nil {
		out.GuestList = append(datatypes.JSONSlice[Guest](nil), b.GuestList...)
	}
	if b.Table != nil {
		t := *b.Table
		out.Table = &t
	}
	return out
}

// BookingPatch is a partial overwrite of a booking. Replacing GuestList also
// replaces GuestCount; TotalPrice is only changed when set explicitly.
type BookingPatch struct {
	BookingName *string  `json:"booking_name" validate:"omitempty,max=255"`
	GuestList   *[]Guest `json:"guest_list"`
	TotalPrice  *float64 `json:"total_price" validate:"omitempty,gte=0"`
	Status      *string  `json:"status" validate:"omitempty,max=20"`
}

// Updates returns the column map for the patch.
func (p BookingPatch) Updates() map[string]interface{} {
	updates := make(map[string]interface{})
	if p.BookingName != nil {
		updates["booking_name"] = *p.BookingName
	}
	if p.GuestList != nil {
		updates["guest_list"] = datatypes.JSONSlice[Guest](*p.GuestList)
		updates["guest_count"] = len(*p.GuestList)
	}
	if p.TotalPrice != nil {
		updates["total_price"] = *p.TotalPrice
	}
	if p.Status != nil {
		updates["status"] = *p.Status
	}
	return updates
}

// FormatDate renders t as a calendar day in its own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD calendar day in the local time zone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

// Today is the current local calendar day.
func Today() string {
	return FormatDate(time.Now())
}
