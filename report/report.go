// Package report aggregates the bookings of one evening into arrival statistics.
package report

import (
	"fmt"
	"math"

	"github.com/yeremiapane/venue-booking/models"
)

const (
	unknownSection     = "Unknown"
	defaultBookingName = "VIP Booking"
)

// Row is the arrival summary of one booking.
type Row struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Section       string `json:"section"`
	BookingName   string `json:"bookingName"`
	GuestsTotal   int    `json:"guestsTotal"`
	GuestsArrived int    `json:"guestsArrived"`
}

// Missing is the number of booked guests who have not arrived.
func (r Row) Missing() int {
	return r.GuestsTotal - r.GuestsArrived
}

// Rate is the row's arrival percentage.
func (r Row) Rate() int {
	return Rate(r.GuestsArrived, r.GuestsTotal)
}

// DisplayName falls back to a generic label for unnamed bookings.
func (r Row) DisplayName() string {
	if r.BookingName == "" {
		return defaultBookingName
	}
	return r.BookingName
}

// Report is derived from one date's bookings and never persisted.
type Report struct {
	Date         string `json:"date"`
	Tables       []Row  `json:"tables"`
	TotalGuests  int    `json:"totalGuests"`
	TotalArrived int    `json:"totalArrived"`
}

// Empty returns the zero report for date.
func Empty(date string) Report {
	return Report{Date: date, Tables: []Row{}}
}

// Aggregate builds the report for date from bookings that may carry their
// table preloaded. It is a pure function of its input.
func Aggregate(date string, bookings []models.Booking) Report {
	r := Empty(date)
	for _, b := range bookings {
		row := Row{
			ID:            b.TableID,
			Name:          fmt.Sprintf("Table %d", b.TableID),
			Section:       unknownSection,
			BookingName:   b.BookingName,
			GuestsTotal:   b.GuestCount,
			GuestsArrived: b.ArrivedCount(),
		}
		if b.Table != nil {
			if b.Table.Name != "" {
				row.Name = b.Table.Name
			}
			if b.Table.Section != "" {
				row.Section = b.Table.Section
			}
		}
		r.Tables = append(r.Tables, row)
		r.TotalGuests += row.GuestsTotal
		r.TotalArrived += row.GuestsArrived
	}
	return r
}

// Missing is the number of booked guests still absent.
func (r Report) Missing() int {
	return r.TotalGuests - r.TotalArrived
}

// ArrivalRate is round(100 * arrived / total), or 0 for an empty evening.
func (r Report) ArrivalRate() int {
	return Rate(r.TotalArrived, r.TotalGuests)
}

// Rate returns round(100*part/total), defined as 0 when total is not positive.
func Rate(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}

// FileName is the download name for an export of the report.
func (r Report) FileName(ext string) string {
	return fmt.Sprintf("report_%s.%s", r.Date, ext)
}
