package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/venue-booking/models"
	"github.com/yeremiapane/venue-booking/store"
	"github.com/yeremiapane/venue-booking/utils"
)

// TableController serves the floor plan out of the caller's session store.
type TableController struct{}

func NewTableController() *TableController {
	return &TableController{}
}

type floorPlanResponse struct {
	Date           string            `json:"date"`
	Tables         []store.TableView `json:"tables"`
	CurrentTableID *uint             `json:"current_table_id"`
}

func floorPlan(st *store.Store) floorPlanResponse {
	var userID uint
	admin := false
	if id := st.Identity(); id != nil {
		userID = id.UserID
		admin = id.IsAdmin
	}

	views := st.Tables()
	for i := range views {
		views[i].Status = store.ViewStatus(views[i], userID)
		// admin melihat daftar tamu urut nama depan
		if admin {
			for j := range views[i].Bookings {
				views[i].Bookings[j].GuestList = views[i].Bookings[j].SortedGuests()
			}
		}
	}

	resp := floorPlanResponse{Date: st.SelectedDate(), Tables: views}
	if tableID, ok := st.CurrentUserBooking(); ok {
		resp.CurrentTableID = &tableID
	}
	return resp
}

// GetTables -> floor plan; ?date= memilih tanggal lain terlebih dahulu
func (tc *TableController) GetTables(c *gin.Context) {
	st, ok := sessionStore(c)
	if !ok {
		return
	}

	if date := c.Query("date"); date != "" && date != st.SelectedDate() {
		if err := st.LoadBookings(c.Request.Context(), date); err != nil {
			respondStoreError(c, err)
			return
		}
	} else if err := st.Reconcile(c.Request.Context()); err != nil {
		// snapshot lama tetap ditampilkan
		utils.ErrorLogger.Printf("Error refreshing floor plan: %v", err)
	}

	utils.RespondJSON(c, http.StatusOK, "Tables fetched", floorPlan(st))
}

// SelectDate -> ganti tanggal aktif untuk session
func (tc *TableController) SelectDate(c *gin.Context) {
	var req struct {
		Date string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	st, ok := sessionStore(c)
	if !ok {
		return
	}

	if err := st.LoadBookings(c.Request.Context(), req.Date); err != nil {
		respondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Date selected", floorPlan(st))
}

type reserveRequest struct {
	BookingName string         `json:"booking_name" binding:"required"`
	Guests      []models.Guest `json:"guests" binding:"required,min=1"`
	TotalPrice  float64        `json:"total_price"`
}

// Reserve -> booking meja untuk tanggal aktif
func (tc *TableController) Reserve(c *gin.Context) {
	tableID, ok := parseID(c, "table_id")
	if !ok {
		return
	}
	var req reserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	st, ok := sessionStore(c)
	if !ok {
		return
	}

	booking, err := st.Reserve(c.Request.Context(), tableID, req.BookingName, req.Guests, req.TotalPrice)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Booking confirmed", booking)
}

// CreateTable -> admin menambah meja baru
func (tc *TableController) CreateTable(c *gin.Context) {
	var table models.Table
	if err := c.ShouldBindJSON(&table); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	st, ok := sessionStore(c)
	if !ok {
		return
	}

	created, err := st.AddTable(c.Request.Context(), table)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table created", created)
}

func (tc *TableController) UpdateTable(c *gin.Context) {
	id, ok := parseID(c, "table_id")
	if !ok {
		return
	}
	var patch models.TablePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	st, ok := sessionStore(c)
	if !ok {
		return
	}

	table, err := st.UpdateTable(c.Request.Context(), id, patch)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// UpdatePosition -> drag & drop meja di floor plan (persen, dibatasi 2..98)
func (tc *TableController) UpdatePosition(c *gin.Context) {
	id, ok := parseID(c, "table_id")
	if !ok {
		return
	}
	var req struct {
		X *float64 `json:"x" binding:"required"`
		Y *float64 `json:"y" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	st, ok := sessionStore(c)
	if !ok {
		return
	}

	if err := st.UpdateTablePosition(c.Request.Context(), id, *req.X, *req.Y); err != nil {
		respondStoreError(c, err)
		return
	}
	view, _ := st.Table(id)
	utils.RespondJSON(c, http.StatusOK, "Table position updated", view.Table)
}

func (tc *TableController) DeleteTable(c *gin.Context) {
	id, ok := parseID(c, "table_id")
	if !ok {
		return
	}
	st, ok := sessionStore(c)
	if !ok {
		return
	}

	if err := st.DeleteTable(c.Request.Context(), id); err != nil {
		respondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deleted", nil)
}

// ReleaseTable -> hapus booking meja pada tanggal aktif
func (tc *TableController) ReleaseTable(c *gin.Context) {
	id, ok := parseID(c, "table_id")
	if !ok {
		return
	}
	st, ok := sessionStore(c)
	if !ok {
		return
	}

	if err := st.ReleaseTable(c.Request.Context(), id); err != nil {
		respondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table released", floorPlan(st))
}

// AddCharge -> tambah biaya ke booking meja
func (tc *TableController) AddCharge(c *gin.Context) {
	id, ok := parseID(c, "table_id")
	if !ok {
		return
	}
	var req struct {
		Amount float64 `json:"amount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	st, ok := sessionStore(c)
	if !ok {
		return
	}

	booking, err := st.AddCharge(c.Request.Context(), id, req.Amount)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Charge added", booking)
}
