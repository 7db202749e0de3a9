package inventory

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/icaro-milhomem/ispmanager-sub000/internal/database"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
)

func newTransactionApp(t *testing.T) *fiber.App {
	t.Helper()

	database.DB = newTestDB(t)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Get("/inventory-transactions", ListTransactionsHandler())
	return app
}

func TestListTransactionsEndDateBoundary(t *testing.T) {
	app := newTransactionApp(t)
	item := createItem(t, database.DB, "Roteador AC", 0)

	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	// Dentro do intervalo: o próprio dia 10.
	if _, err := CreateTransaction(database.DB, CreateTransactionInput{
		ItemID: item.ID, Type: models.TransactionIn, Quantity: 5, Date: day(2026, 3, 10),
	}); err != nil {
		t.Fatalf("entrada dia 10 falhou: %v", err)
	}
	// Fora do intervalo: meia-noite exata do dia seguinte.
	if _, err := CreateTransaction(database.DB, CreateTransactionInput{
		ItemID: item.ID, Type: models.TransactionIn, Quantity: 3, Date: day(2026, 3, 11),
	}); err != nil {
		t.Fatalf("entrada dia 11 falhou: %v", err)
	}

	req := httptest.NewRequest("GET", "/inventory-transactions?end_date=2026-03-10", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, esperado 200", resp.StatusCode)
	}

	var body struct {
		Transactions []TransactionResponse `json:"transactions"`
		Pagination   Pagination            `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("não decodificou a resposta: %v", err)
	}

	if body.Pagination.Total != 1 {
		t.Fatalf("total = %d, esperado 1 (dia 11 não pode entrar no filtro até dia 10)", body.Pagination.Total)
	}
	if len(body.Transactions) != 1 || body.Transactions[0].Date != "2026-03-10" {
		t.Errorf("resultado inesperado: %+v", body.Transactions)
	}
}
