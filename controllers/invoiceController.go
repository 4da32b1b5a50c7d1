package controllers

import (
	"strconv"

	"facturation-backend/billing"
	"facturation-backend/database"
	"facturation-backend/events"
	"facturation-backend/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// publish notifies subscribers; a broker failure never fails the request.
func publish(c *fiber.Ctx, evt events.Event) {
	if events.Bus == nil {
		return
	}
	if err := events.Bus.Publish(c.UserContext(), evt); err != nil {
		zap.L().Warn("could not publish invoice event",
			zap.String("type", string(evt.Type)),
			zap.String("invoice_id", evt.InvoiceID),
			zap.Error(err))
	}
}

func CreateInvoice(c *fiber.Ctx) error {
	var req InvoiceRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	invoice, err := req.toInvoice()
	if err != nil {
		return err
	}
	if err := database.Invoices.Create(c.UserContext(), &invoice); err != nil {
		return err
	}

	publish(c, events.Created(invoice))
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

func GetInvoices(c *fiber.Ctx) error {
	filter, err := listFilter(c, 0)
	if err != nil {
		return err
	}

	invoices, err := database.Invoices.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"invoices": invoices,
		"message":  "success",
	})
}

func GetInvoice(c *fiber.Ctx) error {
	invoice, err := database.Invoices.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(invoice)
}

func UpdateInvoice(c *fiber.Ctx) error {
	var req InvoiceUpdateRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	patch, err := req.toPatch()
	if err != nil {
		return err
	}
	invoice, err := database.Invoices.Update(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return err
	}

	publish(c, events.Updated(invoice))
	return c.JSON(invoice)
}

func DeleteInvoice(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := database.Invoices.Delete(c.UserContext(), id); err != nil {
		return err
	}

	publish(c, events.Deleted(id))
	return c.JSON(fiber.Map{"message": "invoice deleted", "id": id})
}

// PreviewTotals computes the derived fields of a draft without saving it.
func PreviewTotals(c *fiber.Ctx) error {
	var req TotalsRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	totals, err := billing.ComputeTotals(toLines(req.Items), req.DeliveryFees, req.LaborCost)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"subtotal":       totals.Subtotal,
		"total":          totals.Total,
		"totalInWords":   totals.TotalInWords,
		"totalFormatted": billing.FormatCFA(totals.Total),
	})
}

// AmountInWords spells out ?amount=N.
func AmountInWords(c *fiber.Ctx) error {
	amount, err := strconv.ParseInt(c.Query("amount"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "amount must be a whole number")
	}

	words, err := billing.AmountToWords(amount)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"amount":    amount,
		"words":     words,
		"formatted": billing.FormatCFA(float64(amount)),
	})
}
