package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/icaro-milhomem/ispmanager-sub000/internal/config"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
)

func newTestApp(cfg *config.Config) *fiber.App {
	app := fiber.New()
	protected := app.Group("/p", JWTMiddleware(cfg))
	protected.Get("/me", func(c *fiber.Ctx) error {
		userID, _ := c.Locals(CtxUserIDKey).(uint)
		role, _ := c.Locals(CtxUserRoleKey).(models.UserRole)
		return c.JSON(fiber.Map{"user_id": userID, "role": role})
	})
	admin := protected.Group("/admin", RequireRole(models.RoleAdmin))
	admin.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})
	return app
}

func TestJWTMiddlewareRoundTrip(t *testing.T) {
	cfg := &config.Config{JWTSecret: "segredo-de-teste-com-32-caracteres!"}
	app := newTestApp(cfg)

	user := &models.User{Email: "admin@example.com", Role: models.RoleAdmin}
	user.ID = 7
	token, err := GenerateToken(cfg.JWTSecret, user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	req := httptest.NewRequest("GET", "/p/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, esperado 200", resp.StatusCode)
	}
}

func TestJWTMiddlewareMissingHeader(t *testing.T) {
	cfg := &config.Config{JWTSecret: "segredo-de-teste-com-32-caracteres!"}
	app := newTestApp(cfg)

	req := httptest.NewRequest("GET", "/p/me", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, esperado 401", resp.StatusCode)
	}
}

func TestJWTMiddlewareRejectsWrongSecret(t *testing.T) {
	cfg := &config.Config{JWTSecret: "segredo-de-teste-com-32-caracteres!"}
	app := newTestApp(cfg)

	user := &models.User{Email: "admin@example.com", Role: models.RoleAdmin}
	user.ID = 7
	token, err := GenerateToken("outro-segredo-completamente-diferente", user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	req := httptest.NewRequest("GET", "/p/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, esperado 401", resp.StatusCode)
	}
}

func TestRequireRoleBlocksTecnico(t *testing.T) {
	cfg := &config.Config{JWTSecret: "segredo-de-teste-com-32-caracteres!"}
	app := newTestApp(cfg)

	user := &models.User{Email: "tec@example.com", Role: models.RoleTecnico}
	user.ID = 8
	token, err := GenerateToken(cfg.JWTSecret, user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	req := httptest.NewRequest("GET", "/p/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("status = %d, esperado 403", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/p/admin/ping", nil)
	user.Role = models.RoleAdmin
	token, _ = GenerateToken(cfg.JWTSecret, user)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, esperado 200 para admin", resp.StatusCode)
	}
}
