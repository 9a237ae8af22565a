package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/venue-booking/models"
	"github.com/yeremiapane/venue-booking/report"
	"github.com/yeremiapane/venue-booking/store"
	"github.com/yeremiapane/venue-booking/utils"
)

type ReportController struct{}

func NewReportController() *ReportController {
	return &ReportController{}
}

// GetStats -> ringkasan dashboard admin untuk tanggal aktif
func (rc *ReportController) GetStats(c *gin.Context) {
	st, ok := sessionStore(c)
	if !ok {
		return
	}
	if err := st.Reconcile(c.Request.Context()); err != nil {
		utils.ErrorLogger.Printf("Error refreshing stats: %v", err)
	}
	utils.RespondJSON(c, http.StatusOK, "Stats fetched", st.Stats())
}

// buildReport reads ?date= (default: the session's selected date).
func (rc *ReportController) buildReport(c *gin.Context) (report.Report, bool) {
	st, ok := sessionStore(c)
	if !ok {
		return report.Report{}, false
	}
	date := c.DefaultQuery("date", st.SelectedDate())
	if _, err := models.ParseDate(date); err != nil {
		respondStoreError(c, fmt.Errorf("%w: date %q is not YYYY-MM-DD", store.ErrInvalidInput, date))
		return report.Report{}, false
	}
	return st.GenerateReport(c.Request.Context(), date), true
}

type reportResponse struct {
	report.Report
	Missing     int `json:"missing"`
	ArrivalRate int `json:"arrivalRate"`
}

func (rc *ReportController) GetReport(c *gin.Context) {
	r, ok := rc.buildReport(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Report generated", reportResponse{
		Report:      r,
		Missing:     r.Missing(),
		ArrivalRate: r.ArrivalRate(),
	})
}

func (rc *ReportController) ExportCSV(c *gin.Context) {
	rc.export(c, "csv", "text/csv; charset=utf-8", report.WriteCSV)
}

func (rc *ReportController) ExportPDF(c *gin.Context) {
	rc.export(c, "pdf", "application/pdf", report.WritePDF)
}

// Chart -> PNG; ?kind=bars untuk per meja, default pie datang/belum datang
func (rc *ReportController) Chart(c *gin.Context) {
	render := report.RenderArrivalPie
	if c.Query("kind") == "bars" {
		render = report.RenderTableBars
	}
	rc.export(c, "png", "image/png", render)
}

// export renders into a buffer first so a failure can still become a JSON error.
func (rc *ReportController) export(c *gin.Context, ext, contentType string, write func(io.Writer, report.Report) error) {
	r, ok := rc.buildReport(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, r); err != nil {
		if errors.Is(err, report.ErrNoChartData) {
			utils.RespondError(c, http.StatusNotFound, err)
			return
		}
		utils.ErrorLogger.Printf("Error exporting report %s: %v", r.FileName(ext), err)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondAttachment(c, r.FileName(ext), contentType, buf.Bytes())
}
