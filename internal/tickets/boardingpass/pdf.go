package boardingpass

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/signintech/gopdf"

	"ms-reservation/internal/models"
)

// PDFGenerator renders a printable boarding pass. FontPath must point
// at a TTF file on disk.
type PDFGenerator struct {
	FontPath string
}

func NewPDFGenerator(fontPath string) *PDFGenerator {
	if fontPath == "" {
		fontPath = "./fonts/DejaVuSans.ttf"
	}
	return &PDFGenerator{FontPath: fontPath}
}

func (g *PDFGenerator) Generate(ticket models.Ticket, trip *models.Trip, qrCode []byte) ([]byte, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	if err := pdf.AddTTFFont("main", g.FontPath); err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	if err := pdf.SetFont("main", "", 14); err != nil {
		return nil, fmt.Errorf("failed to set font: %w", err)
	}

	addHeader(pdf)

	pdf.SetY(60)
	addTicketInfo(pdf, ticket, trip)

	if len(qrCode) > 0 {
		pdf.SetY(pdf.GetY() + 20)
		addQRCode(pdf, qrCode)
	}

	pdf.SetY(260)
	addFooter(pdf)

	var buf bytes.Buffer
	if err := pdf.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func addHeader(pdf *gopdf.GoPdf) {
	pdf.SetX(40)
	pdf.SetY(30)
	pdf.Cell(nil, "BOARDING PASS")
}

func addTicketInfo(pdf *gopdf.GoPdf, ticket models.Ticket, trip *models.Trip) {
	info := []struct {
		Label string
		Value string
	}{
		{"Boarding Code", ticket.BoardingCode},
		{"Trip", ticket.TripID},
		{"Seat", ticket.SeatNumber},
		{"Segment", fmt.Sprintf("%d - %d", ticket.FromPosition, ticket.ToPosition)},
		{"Passenger", ticket.PassengerID},
		{"Price", fmt.Sprintf("%.2f", ticket.Price)},
		{"Issued", ticket.CreatedAt.Format("2006-01-02 15:04")},
	}
	if trip != nil {
		info = append(info, struct {
			Label string
			Value string
		}{"Departure", trip.DepartureAt.Format("2006-01-02 15:04")})
	}

	for _, item := range info {
		pdf.Cell(nil, item.Label+": "+item.Value)
		pdf.Br(20)
	}
}

func addQRCode(pdf *gopdf.GoPdf, qrCode []byte) {
	img, err := png.Decode(bytes.NewReader(qrCode))
	if err != nil {
		pdf.Cell(nil, "Failed to load QR code")
		return
	}

	rect := &gopdf.Rect{W: 100, H: 100}
	if err := pdf.ImageFrom(img, 100, pdf.GetY(), rect); err != nil {
		pdf.Cell(nil, "Failed to draw QR code")
	}
}

func addFooter(pdf *gopdf.GoPdf) {
	pdf.SetX(50)
	pdf.Cell(nil, "Please arrive at the platform 15 minutes before departure.")
}
