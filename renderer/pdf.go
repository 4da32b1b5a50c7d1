package renderer

import (
	"fmt"
	"io"

	"facturation-backend/billing"
	"facturation-backend/models"

	"github.com/jung-kurt/gofpdf"
)

// Company is the letterhead printed on every invoice.
type Company struct {
	Name    string
	Address string
	Phone   string
}

const (
	marginMM  = 15.0
	rowHeight = 8.0
	fontName  = "Helvetica"
)

// column widths in mm: QTE, DESIGNATION, PRIX UNIT, MONTANT (180mm printable)
var colWidths = [4]float64{18, 90, 34, 38}

// InvoicePDF renders inv as an A4 PDF. Amounts and words are re-derived from
// the items and fees; the stored totals are not used.
func InvoicePDF(w io.Writer, inv models.Invoice, company Company) error {
	totals, err := inv.Totals()
	if err != nil {
		return fmt.Errorf("derive totals: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginMM, marginMM, marginMM)
	pdf.SetAutoPageBreak(false, marginMM)
	pdf.SetTitle("Facture "+inv.InvoiceNumber, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("") // cp1252 for the core fonts
	_, pageHeight := pdf.GetPageSize()

	pdf.AddPage()
	writeHeader(pdf, tr, inv, company)
	writeTableHeader(pdf, tr)

	row := func(qty, designation, unit, amount string) {
		if pdf.GetY()+rowHeight > pageHeight-marginMM {
			pdf.AddPage()
			writeTableHeader(pdf, tr)
		}
		pdf.SetFont(fontName, "", 10)
		pdf.CellFormat(colWidths[0], rowHeight, tr(qty), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[1], rowHeight, tr(designation), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[2], rowHeight, tr(unit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[3], rowHeight, tr(amount), "1", 1, "R", false, 0, "")
	}

	for _, item := range inv.Items {
		amount := billing.LineAmount(billing.Line{Quantity: item.Quantity, UnitPrice: item.UnitPrice})
		row(fmt.Sprintf("%02d", item.Quantity), item.Designation,
			billing.FormatAmount(item.UnitPrice), billing.FormatAmount(amount)+" F")
	}
	if inv.DeliveryFees != 0 {
		row("", "Frais de livraison", billing.FormatAmount(inv.DeliveryFees), billing.FormatAmount(inv.DeliveryFees)+" F")
	}
	if inv.LaborCost != 0 {
		row("", "Main d'œuvre", billing.FormatAmount(inv.LaborCost), billing.FormatAmount(inv.LaborCost)+" F")
	}

	// total box + words + payment terms need roughly 50mm
	if pdf.GetY()+50 > pageHeight-marginMM {
		pdf.AddPage()
	}
	pdf.SetFont(fontName, "B", 11)
	labelWidth := colWidths[0] + colWidths[1] + colWidths[2]
	pdf.CellFormat(labelWidth, rowHeight+2, "TOTAL", "1", 0, "R", false, 0, "")
	pdf.CellFormat(colWidths[3], rowHeight+2, tr(billing.FormatCFA(totals.Total)), "1", 1, "R", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont(fontName, "", 10)
	pdf.Write(6, tr("La présente facture est arrêtée à la somme de : "))
	pdf.SetFont(fontName, "B", 10)
	pdf.Write(6, tr(totals.TotalInWords))
	pdf.Ln(14)

	pdf.SetFont(fontName, "B", 10)
	pdf.CellFormat(0, 6, tr("Conditions et modalités de paiement"), "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 9)
	pdf.CellFormat(0, 6, tr("Le paiement est effectué en espèces"), "", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func writeHeader(pdf *gofpdf.Fpdf, tr func(string) string, inv models.Invoice, company Company) {
	pdf.SetFont(fontName, "B", 14)
	pdf.CellFormat(110, 7, tr(company.Name), "", 0, "L", false, 0, "")
	pdf.SetFont(fontName, "B", 16)
	pdf.CellFormat(0, 7, "FACTURE", "", 1, "R", false, 0, "")

	pdf.SetFont(fontName, "", 9)
	pdf.CellFormat(110, 5, tr(company.Address), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, tr("N° de facture : "+inv.InvoiceNumber), "", 1, "R", false, 0, "")
	pdf.CellFormat(110, 5, tr(company.Phone), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Date : "+inv.DateOf().Format("02/01/2006"), "", 1, "R", false, 0, "")

	pdf.Ln(8)
	pdf.SetFillColor(230, 230, 230)
	pdf.SetFont(fontName, "B", 13)
	pdf.CellFormat(0, 9, "FACTURE", "1", 1, "C", true, 0, "")
	pdf.Ln(3)
	pdf.SetFont(fontName, "B", 10)
	pdf.Write(6, "Client : ")
	pdf.SetFont(fontName, "", 10)
	pdf.Write(6, tr(inv.ClientName))
	pdf.Ln(10)
}

func writeTableHeader(pdf *gofpdf.Fpdf, tr func(string) string) {
	pdf.SetFont(fontName, "B", 10)
	pdf.SetFillColor(230, 230, 230)
	headers := [4]string{"QTE", "DESIGNATION", "PRIX UNIT", "MONTANT"}
	for i, h := range headers {
		ln := 0
		if i == len(headers)-1 {
			ln = 1
		}
		pdf.CellFormat(colWidths[i], rowHeight, tr(h), "1", ln, "C", true, 0, "")
	}
}
