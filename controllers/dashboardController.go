package controllers

import (
	"facturation-backend/billing"
	"facturation-backend/database"
	"facturation-backend/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

const recentInvoicesLimit = 5

// DashboardStats summarises invoicing activity. TotalInvoices counts every
// invoice; the other figures cover the requested date range (or everything).
type DashboardStats struct {
	TotalInvoices  int64            `json:"totalInvoices"`
	TotalRevenue   float64          `json:"totalRevenue"`
	TotalClients   int              `json:"totalClients"`
	RecentInvoices []models.Invoice `json:"recentInvoices"`
}

func GetDashboard(c *fiber.Ctx) error {
	filter, err := listFilter(c, 0)
	if err != nil {
		return err
	}
	filter.Limit = 0

	var (
		count    int64
		invoices []models.Invoice
	)
	g, ctx := errgroup.WithContext(c.UserContext())
	g.Go(func() error {
		n, err := database.Invoices.Count(ctx)
		count = n
		return err
	})
	g.Go(func() error {
		list, err := database.Invoices.List(ctx, filter)
		invoices = list
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	return c.JSON(dashboardStats(count, invoices))
}

func dashboardStats(count int64, invoices []models.Invoice) DashboardStats {
	totals := make([]float64, len(invoices))
	clients := make(map[string]struct{})
	for i, inv := range invoices {
		totals[i] = inv.Total
		clients[inv.ClientName] = struct{}{}
	}

	recent := invoices
	if len(recent) > recentInvoicesLimit {
		recent = recent[:recentInvoicesLimit]
	}
	if recent == nil {
		recent = []models.Invoice{}
	}

	return DashboardStats{
		TotalInvoices:  count,
		TotalRevenue:   billing.Sum(totals...),
		TotalClients:   len(clients),
		RecentInvoices: recent,
	}
}
