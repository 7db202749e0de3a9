package dashboard

import (
	"encoding/json"
	"time"

	"github.com/icaro-milhomem/ispmanager-sub000/internal/cache"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/database"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	summaryCacheKey = "dashboard:summary"
	summaryCacheTTL = 60 * time.Second
	lowStockLimit   = 10
)

type Summary struct {
	ActiveCustomers  int64                  `json:"active_customers"`
	ActiveContracts  int64                  `json:"active_contracts"`
	OpenTickets      int64                  `json:"open_tickets"`
	OpenInvoices     int64                  `json:"open_invoices"`
	OverdueInvoices  int64                  `json:"overdue_invoices"`
	MonthlyRevenue   float64                `json:"monthly_revenue"`
	LowStockItems    []models.InventoryItem `json:"low_stock_items"`
	GeneratedAt      time.Time              `json:"generated_at"`
}

func buildSummary() (*Summary, error) {
	s := &Summary{GeneratedAt: time.Now()}

	if err := database.DB.Model(&models.Customer{}).
		Where("status = ?", models.CustomerActive).Count(&s.ActiveCustomers).Error; err != nil {
		return nil, err
	}
	if err := database.DB.Model(&models.Contract{}).
		Where("status = ?", models.ContractActive).Count(&s.ActiveContracts).Error; err != nil {
		return nil, err
	}
	if err := database.DB.Model(&models.Ticket{}).
		Where("status IN ?", []models.TicketStatus{models.TicketOpen, models.TicketInProgress}).
		Count(&s.OpenTickets).Error; err != nil {
		return nil, err
	}
	if err := database.DB.Model(&models.Invoice{}).
		Where("status = ?", models.InvoiceOpen).Count(&s.OpenInvoices).Error; err != nil {
		return nil, err
	}
	if err := database.DB.Model(&models.Invoice{}).
		Where("status = ?", models.InvoiceOverdue).Count(&s.OverdueInvoices).Error; err != nil {
		return nil, err
	}

	// Receita do mês: faturas pagas dentro do mês corrente.
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)
	var revenue *float64
	if err := database.DB.Model(&models.Invoice{}).
		Where("status = ? AND paid_at >= ? AND paid_at < ?", models.InvoicePaid, monthStart, monthEnd).
		Select("SUM(amount)").Scan(&revenue).Error; err != nil {
		return nil, err
	}
	if revenue != nil {
		s.MonthlyRevenue = *revenue
	}

	if err := database.DB.Where("status = ? AND quantity < ?", models.ItemActive, lowStockLimit).
		Order("quantity asc").Limit(20).Find(&s.LowStockItems).Error; err != nil {
		return nil, err
	}

	return s, nil
}

// GET /api/dashboard
// O resumo fica 60s no Redis quando configurado; sem Redis consulta
// o banco a cada chamada.
func SummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		if raw, ok := cache.Get(ctx, summaryCacheKey); ok {
			c.Set("Content-Type", "application/json")
			return c.SendString(raw)
		}

		s, err := buildSummary()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível montar o resumo")
		}

		if raw, err := json.Marshal(s); err == nil {
			cache.Set(ctx, summaryCacheKey, string(raw), summaryCacheTTL)
		}

		return c.JSON(s)
	}
}
