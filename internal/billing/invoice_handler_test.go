package billing

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/icaro-milhomem/ispmanager-sub000/internal/database"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := database.Connect(sqlite.Open(dsn))
	if err != nil {
		t.Fatalf("não abriu o banco de teste: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate falhou: %v", err)
	}
	return db
}

func newInvoiceApp(t *testing.T) *fiber.App {
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
	app.Post("/invoices/sweep-overdue", SweepOverdueHandler())
	app.Post("/invoices/:id/pay", PayInvoiceHandler())
	app.Post("/invoices/:id/cancel", CancelInvoiceHandler())
	return app
}

func createContractChain(t *testing.T) *models.Contract {
	t.Helper()

	cust := &models.Customer{Name: "Maria Silva", Document: "12345678901", Status: models.CustomerActive}
	if err := database.DB.Create(cust).Error; err != nil {
		t.Fatalf("não criou cliente: %v", err)
	}
	pl := &models.Plan{Name: "Fibra 300", Price: 99.90, DownloadMbps: 300, UploadMbps: 150, Active: true}
	if err := database.DB.Create(pl).Error; err != nil {
		t.Fatalf("não criou plano: %v", err)
	}
	ct := &models.Contract{CustomerID: cust.ID, PlanID: pl.ID, Status: models.ContractActive, StartDate: time.Now()}
	if err := database.DB.Create(ct).Error; err != nil {
		t.Fatalf("não criou contrato: %v", err)
	}
	return ct
}

func createInvoice(t *testing.T, contractID uint, status models.InvoiceStatus, dueDate time.Time) *models.Invoice {
	t.Helper()

	inv := &models.Invoice{
		ContractID: contractID,
		Number:     uuid.NewString(),
		Amount:     99.90,
		DueDate:    dueDate,
		Status:     status,
	}
	if err := database.DB.Create(inv).Error; err != nil {
		t.Fatalf("não criou fatura: %v", err)
	}
	return inv
}

func TestPayInvoiceIdempotency(t *testing.T) {
	app := newInvoiceApp(t)
	ct := createContractChain(t)
	inv := createInvoice(t, ct.ID, models.InvoiceOpen, time.Now().AddDate(0, 0, 10))

	url := fmt.Sprintf("/invoices/%d/pay", inv.ID)

	resp, err := app.Test(httptest.NewRequest("POST", url, nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("primeiro pagamento: status = %d, esperado 200", resp.StatusCode)
	}

	var paid models.Invoice
	if err := database.DB.First(&paid, "id = ?", inv.ID).Error; err != nil {
		t.Fatalf("não carregou fatura: %v", err)
	}
	if paid.Status != models.InvoicePaid {
		t.Fatalf("status = %q, esperado %q", paid.Status, models.InvoicePaid)
	}
	if paid.PaidAt == nil {
		t.Fatal("PaidAt não foi preenchido")
	}
	firstPaidAt := *paid.PaidAt

	resp, err = app.Test(httptest.NewRequest("POST", url, nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("segundo pagamento: status = %d, esperado 400", resp.StatusCode)
	}

	if err := database.DB.First(&paid, "id = ?", inv.ID).Error; err != nil {
		t.Fatalf("não recarregou fatura: %v", err)
	}
	if paid.PaidAt == nil || !paid.PaidAt.Equal(firstPaidAt) {
		t.Fatal("PaidAt mudou após a segunda tentativa")
	}
}

func TestCancelPaidInvoiceRejected(t *testing.T) {
	app := newInvoiceApp(t)
	ct := createContractChain(t)
	now := time.Now()
	inv := createInvoice(t, ct.ID, models.InvoicePaid, now.AddDate(0, 0, 5))
	database.DB.Model(inv).Update("paid_at", now)

	url := fmt.Sprintf("/invoices/%d/cancel", inv.ID)
	resp, err := app.Test(httptest.NewRequest("POST", url, nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, esperado 400", resp.StatusCode)
	}
}

func TestSweepOverdueOnlyTouchesOpenPastDue(t *testing.T) {
	app := newInvoiceApp(t)
	ct := createContractChain(t)

	pastOpen := createInvoice(t, ct.ID, models.InvoiceOpen, time.Now().AddDate(0, 0, -5))
	futureOpen := createInvoice(t, ct.ID, models.InvoiceOpen, time.Now().AddDate(0, 0, 5))
	pastPaid := createInvoice(t, ct.ID, models.InvoicePaid, time.Now().AddDate(0, 0, -5))

	resp, err := app.Test(httptest.NewRequest("POST", "/invoices/sweep-overdue", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, esperado 200", resp.StatusCode)
	}

	var body struct {
		Updated int64 `json:"updated"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("não decodificou a resposta: %v", err)
	}
	if body.Updated != 1 {
		t.Fatalf("updated = %d, esperado 1", body.Updated)
	}

	check := func(id uint, want models.InvoiceStatus) {
		var inv models.Invoice
		if err := database.DB.First(&inv, "id = ?", id).Error; err != nil {
			t.Fatalf("não carregou fatura %d: %v", id, err)
		}
		if inv.Status != want {
			t.Fatalf("fatura %d: status = %q, esperado %q", id, inv.Status, want)
		}
	}
	check(pastOpen.ID, models.InvoiceOverdue)
	check(futureOpen.ID, models.InvoiceOpen)
	check(pastPaid.ID, models.InvoicePaid)
}
