package store

import "math"

// DashboardStats summarises the loaded date for the admin floor view.
type DashboardStats struct {
	Date           string  `json:"date"`
	TotalRevenue   float64 `json:"total_revenue"`
	TotalGuests    int     `json:"total_guests"`
	OccupiedTables int     `json:"occupied_tables"`
	TotalTables    int     `json:"total_tables"`
	OccupancyRate  int     `json:"occupancy_rate"`
}

// Stats computes revenue and occupancy from the snapshot. Occupancy is booked
// guests over the sum of every table's maximum capacity.
func (s *Store) Stats() DashboardStats {
	stats := DashboardStats{Date: s.SelectedDate()}
	totalCapacity := 0

	for _, v := range s.Tables() {
		stats.TotalTables++
		totalCapacity += v.CapacityMax
		if v.Status == StatusAvailable {
			continue
		}
		stats.OccupiedTables++
		for _, b := range v.Bookings {
			stats.TotalRevenue += b.TotalPrice
			stats.TotalGuests += b.GuestCount
		}
	}

	if totalCapacity > 0 {
		stats.OccupancyRate = int(math.Round(100 * float64(stats.TotalGuests) / float64(totalCapacity)))
	}
	return stats
}
