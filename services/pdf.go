package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

type PDFData struct {
	TravelerName string
	Origin       string
	Destination  string
	StartDate    string
	EndDate      string
	Adults       int
	Result       PlanResult
}

// GeneratePDFBytes renders a saved recommendation and returns raw PDF bytes
// (no filesystem needed).
func GeneratePDFBytes(data PDFData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	// ── Header Bar ───────────────────────────────────────────
	pdf.SetFillColor(13, 24, 37)
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(20, 8)
	pdf.CellFormat(100, 10, "TripScout", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(212, 168, 67)
	pdf.SetXY(20, 18)
	pdf.CellFormat(170, 6, "Vacation Recommendation", "", 1, "L", false, 0, "")

	pdf.SetY(35)
	pdf.SetTextColor(0, 0, 0)

	// ── Disclaimer ───────────────────────────────────────────
	pdf.SetFillColor(255, 248, 225)
	pdf.SetDrawColor(212, 168, 67)
	pdf.SetTextColor(130, 90, 20)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetLineWidth(0.4)
	y := pdf.GetY()
	pdf.Rect(20, y, 170, 12, "FD")
	pdf.SetXY(23, y+2)
	pdf.MultiCell(164, 4,
		"This is NOT a booking confirmation. Prices are estimates and subject to change. Please verify with providers before booking.",
		"", "C", false)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.Ln(6)

	// ── Section Helper ───────────────────────────────────────
	sectionHeader := func(title string) {
		pdf.SetFillColor(13, 24, 37)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(170, 8, "  "+title, "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(55, 7, label, "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(115, 7, value, "", 1, "L", false, 0, "")
	}

	// ── Traveler Info ─────────────────────────────────────────
	sectionHeader("Traveler Information")
	name := data.TravelerName
	if name == "" {
		name = "Guest Traveler"
	}
	row("Name", name)
	row("Party", fmt.Sprintf("%d adult(s)", data.Adults))
	row("Generated", time.Now().Format("02 Jan 2006, 15:04 UTC"))
	pdf.Ln(4)

	// ── Trip Overview ─────────────────────────────────────────
	sectionHeader("Trip Overview")
	row("Route", fmt.Sprintf("%s to %s", data.Origin, data.Destination))
	row("Start", fmtDateReadable(data.StartDate))
	row("End", fmtDateReadable(data.EndDate))
	row("Spending plan", data.Result.Plan)
	pdf.Ln(4)

	// ── Selected Flight ───────────────────────────────────────
	sectionHeader("Recommended Flight")
	if f := data.Result.Flight; f != nil {
		row("Airline", f.Airline)
		row("Route", fmt.Sprintf("%s to %s", f.DepartureAirport, f.ArrivalAirport))
		row("Departure", f.DepartureTime)
		row("Arrival", f.ArrivalTime)
		row("Duration", f.Duration)
		row("Price", f.Price+" "+f.Currency)
	} else {
		row("Flight", "No flight selected")
	}
	pdf.Ln(4)

	// ── Selected Hotel ────────────────────────────────────────
	sectionHeader("Recommended Hotel")
	if h := data.Result.Hotel; h != nil {
		row("Hotel", h.Name)
		row("Address", h.Address)
		row("Rating", h.Rating)
		row("Price", h.Price+" "+h.Currency)
	} else {
		row("Hotel", "No hotel selected")
	}
	pdf.Ln(4)

	// ── Selected Activity ─────────────────────────────────────
	sectionHeader("Recommended Activity")
	if a := data.Result.Activity; a != nil {
		row("Activity", a.Name)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(60, 60, 60)
		pdf.MultiCell(170, 5, a.Description, "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		row("Price", a.Price+" "+a.Currency)
	} else {
		row("Activity", "No activity selected")
	}
	pdf.Ln(4)

	// ── Budget Breakdown ──────────────────────────────────────
	sectionHeader("Budget Breakdown")
	b := data.Result.Budget
	row("Flight cost", fmt.Sprintf("$%.2f", b.FlightCost))
	row("Hotel cost", fmt.Sprintf("$%.2f", b.HotelCost))
	row("Activity cost", fmt.Sprintf("$%.2f", b.ActivityCost))

	pdf.SetFillColor(212, 168, 67)
	pdf.SetTextColor(13, 24, 37)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(55, 9, "TOTAL", "", 0, "L", true, 0, "")
	pdf.CellFormat(115, 9, fmt.Sprintf("$%.2f", b.TotalCost), "", 1, "L", true, 0, "")
	pdf.SetTextColor(0, 0, 0)

	if b.BudgetExceeded {
		pdf.SetTextColor(170, 40, 40)
		row("Over budget by", fmt.Sprintf("$%.2f", b.ExceedAmount))
		pdf.SetTextColor(0, 0, 0)
	} else if b.RemainingBudget > 0 {
		row("Remaining budget", fmt.Sprintf("$%.2f", b.RemainingBudget))
	}
	pdf.Ln(4)

	// ── Footer ────────────────────────────────────────────────
	pdf.SetY(-22)
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.3)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(0, 8,
		"Generated by TripScout Vacation Planner. Not a booking confirmation. Prices subject to change.",
		"", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output failed: %w", err)
	}
	return buf.Bytes(), nil
}

func fmtDateReadable(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02 Jan 2006 (Mon)")
}
