package service

import (
	"bytes"
	"fmt"
	"time"

	"rentautopro/internal/entities"
	apperrors "rentautopro/internal/errors"
	"rentautopro/internal/rental"

	"github.com/phpdave11/gofpdf"
)

// PDFService renders the printable rental contract.
type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

// GenerateRentalContract builds the contract PDF for a rental with its
// vehicle and customer attached.
func (s *PDFService) GenerateRentalContract(detail *entities.RentalDetail) ([]byte, error) {
	if detail.Vehicle == nil || detail.Customer == nil {
		return nil, apperrors.NewUnprocessable("rental is missing vehicle or customer data")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Rental Contract %s", detail.ID), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 12, "RentAutoPro - Vehicle Rental Contract")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Contract reference: %s", detail.ID))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Issued: %s", time.Now().UTC().Format("02 Jan 2006")))
	pdf.Ln(12)

	s.sectionTitle(pdf, "Customer")
	s.keyValue(pdf, "Name", detail.Customer.Name)
	s.keyValue(pdf, "Email", detail.Customer.Email)
	if detail.Customer.Phone != "" {
		s.keyValue(pdf, "Phone", detail.Customer.Phone)
	}
	pdf.Ln(6)

	s.sectionTitle(pdf, "Vehicle")
	s.keyValue(pdf, "Vehicle", fmt.Sprintf("%s %s (%d)", detail.Vehicle.Make, detail.Vehicle.Model, detail.Vehicle.Year))
	s.keyValue(pdf, "License plate", detail.Vehicle.LicensePlate)
	if detail.StartMileage != nil {
		s.keyValue(pdf, "Mileage at pick-up", fmt.Sprintf("%.0f km", *detail.StartMileage))
	}
	pdf.Ln(6)

	s.sectionTitle(pdf, "Rental terms")
	s.keyValue(pdf, "Pick-up date", detail.StartDate.Format(rental.DateLayout))
	s.keyValue(pdf, "Return date", detail.EndDate.Format(rental.DateLayout))
	days := rental.DurationDays(detail.StartDate, detail.EndDate)
	s.keyValue(pdf, "Duration", fmt.Sprintf("%d day(s)", days))
	s.keyValue(pdf, "Daily rate", fmt.Sprintf("%.2f", detail.DailyRate))
	s.keyValue(pdf, "Total amount", fmt.Sprintf("%.2f", detail.TotalAmount))
	s.keyValue(pdf, "Status", string(detail.Status))
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 9)
	pdf.MultiCell(0, 5,
		"The customer agrees to return the vehicle on the agreed date with the same "+
			"fuel level as at pick-up, and is liable for traffic fines and damages not "+
			"covered by the insurance policy during the rental period. Late returns are "+
			"charged at the daily rate per started day.", "", "L", false)
	pdf.Ln(16)

	pdf.SetFont("Arial", "", 10)
	y := pdf.GetY()
	pdf.Line(20, y, 90, y)
	pdf.Line(120, y, 190, y)
	pdf.Ln(2)
	pdf.Cell(95, 6, "Customer signature")
	pdf.Cell(95, 6, "RentAutoPro")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error rendering contract PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *PDFService) sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
}

func (s *PDFService) keyValue(pdf *gofpdf.Fpdf, key, value string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(45, 6, key+":")
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, value)
	pdf.Ln(6)
}
