package routes

import (
	"github.com/gofiber/fiber/v2"

	"facturation-backend/controllers"
	"facturation-backend/database"
	"facturation-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Idempotency guard for mutating requests carrying Idempotency-Key
	api.Use(middlewares.Idempotency(database.Idempotency))

	// Pure helpers (no persistence)
	api.Get("/amount-in-words", controllers.AmountInWords)
	api.Post("/invoices/totals", controllers.PreviewTotals)

	// Dashboard
	api.Get("/dashboard", controllers.GetDashboard)

	// Invoices; static paths before /:id
	api.Get("/invoices/stream", controllers.StreamInvoices)
	api.Get("/invoices/export.xlsx", controllers.ExportInvoices)
	api.Post("/invoices", controllers.CreateInvoice)
	api.Get("/invoices", controllers.GetInvoices)
	api.Get("/invoices/:id", controllers.GetInvoice)
	api.Put("/invoices/:id", controllers.UpdateInvoice)
	api.Delete("/invoices/:id", controllers.DeleteInvoice)
	api.Get("/invoices/:id/pdf", controllers.GetInvoicePDF)
}
