package renderer

import (
	"fmt"
	"io"

	"facturation-backend/models"

	"github.com/xuri/excelize/v2"
)

const invoicesSheet = "Factures"

var xlsxHeader = []any{
	"N° de facture", "Date", "Client", "Sous-total", "Frais de livraison", "Main d'œuvre", "Total", "Total en lettres",
}

// InvoicesXLSX writes one row per invoice, in the given order.
func InvoicesXLSX(w io.Writer, invoices []models.Invoice) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", invoicesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(invoicesSheet, "A1", &xlsxHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, inv := range invoices {
		totals, err := inv.Totals()
		if err != nil {
			return fmt.Errorf("invoice %s: %w", inv.InvoiceNumber, err)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			inv.InvoiceNumber,
			inv.DateOf().Format("2006-01-02"),
			inv.ClientName,
			totals.Subtotal,
			inv.DeliveryFees,
			inv.LaborCost,
			totals.Total,
			totals.TotalInWords,
		}
		if err := f.SetSheetRow(invoicesSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
