package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
)

// WriteCSV writes the summary block followed by the per-table detail.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	records := [][]string{
		{"Evening Report"},
		{"Date", r.Date},
		{},
		{"SUMMARY"},
		{"Metric", "Value"},
		{"Booked Tables", strconv.Itoa(len(r.Tables))},
		{"Total Guests", strconv.Itoa(r.TotalGuests)},
		{"Arrived Guests", strconv.Itoa(r.TotalArrived)},
		{"Missing Guests", strconv.Itoa(r.Missing())},
		{"Arrival Rate", fmt.Sprintf("%d%%", r.ArrivalRate())},
		{},
		{"TABLE DETAIL"},
		{"Table", "Booking", "Booked", "Arrived", "Missing", "Rate"},
	}
	for _, row := range r.Tables {
		records = append(records, []string{
			row.Name,
			row.DisplayName(),
			strconv.Itoa(row.GuestsTotal),
			strconv.Itoa(row.GuestsArrived),
			strconv.Itoa(row.Missing()),
			fmt.Sprintf("%d%%", row.Rate()),
		})
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv report: %w", err)
	}
	return nil
}

// WritePDF renders the report as an A4 document: summary table, detail table
// and, when there are guests, the arrivals chart.
func WritePDF(w io.Writer, r Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.SetTextColor(147, 51, 234)
	pdf.CellFormat(0, 12, "Evening Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 8, r.Date, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	sectionTitle(pdf, "Summary")
	pdfTable(pdf, []string{"Metric", "Value"}, []float64{120, 62}, [][]string{
		{"Booked Tables", strconv.Itoa(len(r.Tables))},
		{"Total Guests", strconv.Itoa(r.TotalGuests)},
		{"Arrived Guests", strconv.Itoa(r.TotalArrived)},
		{"Missing Guests", strconv.Itoa(r.Missing())},
		{"Arrival Rate", fmt.Sprintf("%d%%", r.ArrivalRate())},
	}, [3]int{147, 51, 234})
	pdf.Ln(8)

	sectionTitle(pdf, "Table Detail")
	rows := make([][]string, 0, len(r.Tables))
	for _, row := range r.Tables {
		rows = append(rows, []string{
			row.Name,
			row.DisplayName(),
			strconv.Itoa(row.GuestsTotal),
			strconv.Itoa(row.GuestsArrived),
			strconv.Itoa(row.Missing()),
			fmt.Sprintf("%d%%", row.Rate()),
		})
	}
	pdfTable(pdf, []string{"Table", "Booking", "Booked", "Arrived", "Missing", "Rate"},
		[]float64{30, 52, 25, 25, 25, 25}, rows, [3]int{59, 130, 246})

	if r.TotalGuests > 0 {
		var buf bytes.Buffer
		if err := RenderTableBars(&buf, r); err != nil && !errors.Is(err, ErrNoChartData) {
			return err
		} else if err == nil {
			pdf.AddPage()
			sectionTitle(pdf, "Arrivals by Table")
			opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
			pdf.RegisterImageOptionsReader("arrivals", opts, &buf)
			pdf.ImageOptions("arrivals", 14, pdf.GetY()+2, 182, 0, false, opts, 0, "")
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf report: %w", err)
	}
	return nil
}

func sectionTitle(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
}

func pdfTable(pdf *fpdf.Fpdf, head []string, widths []float64, rows [][]string, fill [3]int) {
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(fill[0], fill[1], fill[2])
	pdf.SetTextColor(255, 255, 255)
	for i, h := range head {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for n, row := range rows {
		// baris zebra
		striped := n%2 == 1
		pdf.SetFillColor(240, 240, 245)
		for i, cell := range row {
			align := "C"
			if i < 2 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 7, cell, "1", 0, align, striped, 0, "")
		}
		pdf.Ln(-1)
	}
}
