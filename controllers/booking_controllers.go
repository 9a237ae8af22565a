package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/venue-booking/models"
	"github.com/yeremiapane/venue-booking/utils"
)

type BookingController struct{}

func NewBookingController() *BookingController {
	return &BookingController{}
}

// MyBookings -> booking user mulai hari ini
func (bc *BookingController) MyBookings(c *gin.Context) {
	st, ok := sessionStore(c)
	if !ok {
		return
	}
	bookings, err := st.UserBookings(c.Request.Context())
	if err != nil {
		respondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bookings fetched", bookings)
}

type updateBookingRequest struct {
	BookingName *string         `json:"booking_name"`
	Guests      *[]models.Guest `json:"guests"`
	TotalPrice  *float64        `json:"total_price"`
}

// UpdateBooking -> edit nama booking atau daftar tamu. Harga dihitung ulang
// dari meja saat daftar tamu berubah, kecuali total_price dikirim.
func (bc *BookingController) UpdateBooking(c *gin.Context) {
	id, ok := parseID(c, "booking_id")
	if !ok {
		return
	}
	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	st, ok := sessionStore(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	patch := models.BookingPatch{
		BookingName: req.BookingName,
		GuestList:   req.Guests,
		TotalPrice:  req.TotalPrice,
	}
	if req.Guests != nil && req.TotalPrice == nil {
		booking, err := st.Booking(ctx, id)
		if err != nil {
			respondStoreError(c, err)
			return
		}
		if view, ok := st.Table(booking.TableID); ok {
			total := view.PriceFor(len(*req.Guests))
			patch.TotalPrice = &total
		}
	}

	if err := st.UpdateBooking(ctx, id, patch); err != nil {
		respondStoreError(c, err)
		return
	}
	booking, err := st.Booking(ctx, id)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Booking updated", booking)
}

func (bc *BookingController) CancelBooking(c *gin.Context) {
	id, ok := parseID(c, "booking_id")
	if !ok {
		return
	}
	st, ok := sessionStore(c)
	if !ok {
		return
	}

	if err := st.CancelBooking(c.Request.Context(), id); err != nil {
		respondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Booking cancelled", nil)
}

// ToggleArrival -> tandai tamu sudah/belum datang
func (bc *BookingController) ToggleArrival(c *gin.Context) {
	id, ok := parseID(c, "booking_id")
	if !ok {
		return
	}
	st, ok := sessionStore(c)
	if !ok {
		return
	}

	guest, err := st.ToggleGuestArrival(c.Request.Context(), id, c.Param("guest_id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Guest arrival updated", guest)
}
