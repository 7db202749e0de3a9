package main

import (
	"log"
	"strings"

	"github.com/icaro-milhomem/ispmanager-sub000/internal/audit"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/auth"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/billing"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/cache"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/config"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/contract"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/customer"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/dashboard"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/database"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/fleet"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/inventory"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/models"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/network"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/plan"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/settings"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/ticket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)
	cache.Init(cfg.RedisAddr)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Erro inesperado:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Erro interno do servidor",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Auth público
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Rotas autenticadas
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Rotas só de admin
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	// Usuários
	adminRoutes.Post("/users", auth.CreateUserHandler())
	adminRoutes.Get("/users", auth.ListUsersHandler())

	// Planos (mutações)
	adminRoutes.Post("/plans", plan.CreatePlanHandler())
	adminRoutes.Put("/plans/:id", plan.UpdatePlanHandler())
	adminRoutes.Delete("/plans/:id", plan.DeletePlanHandler())

	// Rede (mutações)
	adminRoutes.Post("/olts", network.CreateOLTHandler())
	adminRoutes.Put("/olts/:id", network.UpdateOLTHandler())
	adminRoutes.Delete("/olts/:id", network.DeleteOLTHandler())
	adminRoutes.Post("/ctos", network.CreateCTOHandler())
	adminRoutes.Put("/ctos/:id", network.UpdateCTOHandler())
	adminRoutes.Delete("/ctos/:id", network.DeleteCTOHandler())
	adminRoutes.Post("/fiber-cables", network.CreateFiberCableHandler())
	adminRoutes.Put("/fiber-cables/:id", network.UpdateFiberCableHandler())
	adminRoutes.Delete("/fiber-cables/:id", network.DeleteFiberCableHandler())
	adminRoutes.Post("/ip-pools", network.CreateIPPoolHandler())
	adminRoutes.Put("/ip-pools/:id", network.UpdateIPPoolHandler())
	adminRoutes.Delete("/ip-pools/:id", network.DeleteIPPoolHandler())

	// Configurações (mutações)
	adminRoutes.Put("/settings", settings.UpsertSettingHandler())
	adminRoutes.Delete("/settings/:key", settings.DeleteSettingHandler())

	// Frota (mutações)
	adminRoutes.Post("/vehicles", fleet.CreateVehicleHandler())
	adminRoutes.Delete("/vehicles/:id", fleet.DeleteVehicleHandler())

	// Chamados (exclusão)
	adminRoutes.Delete("/tickets/:id", ticket.DeleteTicketHandler())

	// Clientes
	protected.Get("/customers", customer.ListCustomersHandler())
	protected.Get("/customers/:id", customer.GetCustomerHandler())
	protected.Post("/customers", customer.CreateCustomerHandler())
	protected.Put("/customers/:id", customer.UpdateCustomerHandler())
	protected.Delete("/customers/:id", customer.DeleteCustomerHandler())

	// Planos (leitura)
	protected.Get("/plans", plan.ListPlansHandler())
	protected.Get("/plans/:id", plan.GetPlanHandler())

	// Contratos
	protected.Get("/contracts", contract.ListContractsHandler())
	protected.Get("/contracts/:id", contract.GetContractHandler())
	protected.Post("/contracts", contract.CreateContractHandler())
	protected.Put("/contracts/:id", contract.UpdateContractHandler())
	protected.Delete("/contracts/:id", contract.DeleteContractHandler())

	// Faturas
	protected.Get("/invoices", billing.ListInvoicesHandler())
	protected.Get("/invoices/export", billing.ExportInvoicesHandler())
	protected.Get("/invoices/:id", billing.GetInvoiceHandler())
	protected.Post("/invoices", billing.CreateInvoiceHandler())
	protected.Post("/invoices/:id/pay", billing.PayInvoiceHandler())
	protected.Post("/invoices/:id/cancel", billing.CancelInvoiceHandler())
	protected.Post("/invoices/sweep-overdue", billing.SweepOverdueHandler())

	// Agendamentos de cobrança
	protected.Get("/billing-schedules", billing.ListSchedulesHandler())
	protected.Post("/billing-schedules", billing.CreateScheduleHandler())
	protected.Put("/billing-schedules/:id", billing.UpdateScheduleHandler())
	protected.Post("/billing-schedules/:id/run", billing.RunScheduleHandler())

	// Chamados
	protected.Get("/tickets", ticket.ListTicketsHandler())
	protected.Get("/tickets/:id", ticket.GetTicketHandler())
	protected.Post("/tickets", ticket.CreateTicketHandler())
	protected.Put("/tickets/:id", ticket.UpdateTicketHandler())
	protected.Post("/tickets/:id/replies", ticket.CreateReplyHandler())

	// Rede (leitura)
	protected.Get("/olts", network.ListOLTsHandler())
	protected.Get("/olts/:id", network.GetOLTHandler())
	protected.Get("/ctos", network.ListCTOsHandler())
	protected.Get("/ctos/:id", network.GetCTOHandler())
	protected.Get("/fiber-cables", network.ListFiberCablesHandler())
	protected.Get("/ip-pools", network.ListIPPoolsHandler())
	protected.Get("/ip-pools/:id", network.GetIPPoolHandler())
	protected.Post("/ip-pools/:id/allocate", network.AllocateIPHandler())
	protected.Post("/ip-pools/:id/release", network.ReleaseIPHandler())

	// Frota
	protected.Get("/vehicles", fleet.ListVehiclesHandler())
	protected.Get("/vehicles/:id", fleet.GetVehicleHandler())
	protected.Put("/vehicles/:id", fleet.UpdateVehicleHandler())
	protected.Post("/vehicles/:id/positions", fleet.ReportPositionHandler())
	protected.Get("/vehicles/:id/positions", fleet.ListPositionsHandler())

	// Almoxarifado
	protected.Get("/inventory-items", inventory.ListItemsHandler())
	protected.Get("/inventory-items/:id", inventory.GetItemHandler())
	protected.Post("/inventory-items", inventory.CreateItemHandler())
	protected.Put("/inventory-items/:id", inventory.UpdateItemHandler())
	protected.Delete("/inventory-items/:id", inventory.DeleteItemHandler())

	protected.Get("/inventory-transactions", inventory.ListTransactionsHandler())
	protected.Get("/inventory-transactions/:id", inventory.GetTransactionHandler())
	protected.Post("/inventory-transactions", inventory.CreateTransactionHandler())
	protected.Put("/inventory-transactions/:id", inventory.UpdateTransactionHandler())
	protected.Delete("/inventory-transactions/:id", inventory.DeleteTransactionHandler())

	// Configurações (leitura)
	protected.Get("/settings", settings.ListSettingsHandler())
	protected.Get("/settings/:key", settings.GetSettingHandler())

	// Dashboard
	protected.Get("/dashboard", dashboard.SummaryHandler())

	// Auditoria
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	log.Println("Servidor rodando na porta:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
