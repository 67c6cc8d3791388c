package infra

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/colline-kooza/export-coffee-sub000/internal/model"

	"github.com/go-pdf/fpdf"
)

// SlipGenerator renders printable buying weight note slips as A5 PDFs.
type SlipGenerator struct {
	dir string
}

func NewSlipGenerator(dir string) *SlipGenerator {
	return &SlipGenerator{dir: dir}
}

// RenderSlip writes the slip for a completed note and returns the file path.
// The note must be loaded with its trader and weighbridge reading.
func (g *SlipGenerator) RenderSlip(note *model.BuyingWeightNote) (string, error) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", fmt.Errorf("create slip dir: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "BUYING WEIGHT NOTE", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, note.NoteNumber, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	traderName := ""
	if note.Trader != nil {
		traderName = note.Trader.Name
	}
	truckNumber := ""
	if note.WeighbridgeReading != nil && note.WeighbridgeReading.TruckEntry != nil {
		truckNumber = note.WeighbridgeReading.TruckEntry.TruckNumber
	}
	centre := ""
	if note.BuyingCentre != nil {
		centre = *note.BuyingCentre
	}

	rows := [][2]string{
		{"Trader", traderName},
		{"Truck", truckNumber},
		{"Buying centre", centre},
		{"Coffee type", string(note.CoffeeType)},
		{"Moisture", fmt.Sprintf("%.1f%%", float64(note.MoistureContent)/10)},
		{"Net weight", fmt.Sprintf("%d kg", note.NetWeightKg)},
		{"Moisture deduction", fmt.Sprintf("%d kg", note.DeductionKg)},
		{"Final net weight", fmt.Sprintf("%d kg", note.FinalNetWeightKg)},
		{"Price per kg", formatUGX(note.PricePerKgUGX)},
		{"Total amount", formatUGX(note.TotalAmountUGX)},
		{"Status", string(note.Status)},
	}
	if note.CompletedAt != nil {
		rows = append(rows, [2]string{"Completed", note.CompletedAt.Format("02 Jan 2006 15:04")})
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(42, 7, row[0], "B", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, row[1], "B", 1, "R", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, "Generated "+time.Now().Format("02 Jan 2006 15:04"), "", 1, "L", false, 0, "")

	path := filepath.Join(g.dir, note.NoteNumber+".pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write slip pdf: %w", err)
	}
	return path, nil
}

// formatUGX renders whole shillings with thousands separators.
func formatUGX(amount int64) string {
	s := fmt.Sprintf("%d", amount)
	n := len(s)
	if n <= 3 {
		return "UGX " + s
	}
	out := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return "UGX " + string(out)
}
