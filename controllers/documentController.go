package controllers

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"facturation-backend/database"
	"facturation-backend/renderer"

	"github.com/gofiber/fiber/v2"
)

// Letterhead is printed at the top of every PDF; main sets it from config.
var Letterhead renderer.Company

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var filenameSanitizer = strings.NewReplacer("/", "-", "\\", "-", "\"", "", " ", "_")

func GetInvoicePDF(c *fiber.Ctx) error {
	invoice, err := database.Invoices.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := renderer.InvoicePDF(&buf, invoice, Letterhead); err != nil {
		return err
	}

	disposition := "inline"
	if c.QueryBool("download") {
		disposition = "attachment"
	}
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`%s; filename="facture-%s.pdf"`, disposition, filenameSanitizer.Replace(invoice.InvoiceNumber)))
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentLength, strconv.Itoa(buf.Len()))
	return c.Send(buf.Bytes())
}

func ExportInvoices(c *fiber.Ctx) error {
	filter, err := listFilter(c, 0)
	if err != nil {
		return err
	}
	invoices, err := database.Invoices.List(c.UserContext(), filter)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := renderer.InvoicesXLSX(&buf, invoices); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentDisposition, `attachment; filename="factures.xlsx"`)
	c.Set(fiber.HeaderContentType, xlsxMIME)
	return c.Send(buf.Bytes())
}
