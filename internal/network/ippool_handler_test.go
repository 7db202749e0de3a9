package network

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/icaro-milhomem/ispmanager-sub000/internal/database"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
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

func newPoolApp(t *testing.T) *fiber.App {
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
	app.Post("/ip-pools/:id/allocate", AllocateIPHandler())
	app.Post("/ip-pools/:id/release", ReleaseIPHandler())
	return app
}

func TestAllocateStopsAtCapacity(t *testing.T) {
	app := newPoolApp(t)

	pool := &models.IPPool{Name: "CGNAT-1", CIDR: "100.64.0.0/30", Capacity: 2}
	if err := database.DB.Create(pool).Error; err != nil {
		t.Fatalf("não criou pool: %v", err)
	}

	url := fmt.Sprintf("/ip-pools/%d/allocate", pool.ID)

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", url, nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("alocação %d: status = %d, esperado 200", i+1, resp.StatusCode)
		}
	}

	resp, err := app.Test(httptest.NewRequest("POST", url, nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("pool esgotado: status = %d, esperado 400", resp.StatusCode)
	}

	var p models.IPPool
	if err := database.DB.First(&p, "id = ?", pool.ID).Error; err != nil {
		t.Fatalf("não carregou pool: %v", err)
	}
	if p.UsedCount != 2 {
		t.Fatalf("used_count = %d, esperado 2", p.UsedCount)
	}
}

func TestReleaseNeverGoesNegative(t *testing.T) {
	app := newPoolApp(t)

	pool := &models.IPPool{Name: "CGNAT-2", CIDR: "100.64.0.4/30", Capacity: 2, UsedCount: 1}
	if err := database.DB.Create(pool).Error; err != nil {
		t.Fatalf("não criou pool: %v", err)
	}

	url := fmt.Sprintf("/ip-pools/%d/release", pool.ID)

	resp, err := app.Test(httptest.NewRequest("POST", url, nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("primeira liberação: status = %d, esperado 200", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("POST", url, nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("pool zerado: status = %d, esperado 400", resp.StatusCode)
	}

	var p models.IPPool
	if err := database.DB.First(&p, "id = ?", pool.ID).Error; err != nil {
		t.Fatalf("não carregou pool: %v", err)
	}
	if p.UsedCount != 0 {
		t.Fatalf("used_count = %d, esperado 0", p.UsedCount)
	}
}
