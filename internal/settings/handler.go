package settings

import (
	"log"
	"strings"

	"github.com/icaro-milhomem/ispmanager-sub000/internal/audit"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/auth"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/database"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm/clause"
)

type UpsertSettingRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func getUserInfo(c *fiber.Ctx) (uint, string, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusForbidden, "Não foi possível identificar o usuário")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "Usuário não encontrado")
	}

	return userID, user.Name, nil
}

// GET /api/settings
func ListSettingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var settings []models.Setting
		if err := database.DB.Order("key asc").Find(&settings).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as configurações")
		}

		resp := make(map[string]string, len(settings))
		for _, s := range settings {
			resp[s.Key] = s.Value
		}
		return c.JSON(resp)
	}
}

// GET /api/settings/:key
func GetSettingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("key")

		var s models.Setting
		if err := database.DB.First(&s, "key = ?", key).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Configuração não encontrada")
		}
		return c.JSON(s)
	}
}

// PUT /api/admin/settings. Cria a chave se não existir.
func UpsertSettingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		var body UpsertSettingRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		body.Key = strings.TrimSpace(body.Key)
		if body.Key == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Chave é obrigatória")
		}

		var before *models.Setting
		var existing models.Setting
		if err := database.DB.First(&existing, "key = ?", body.Key).Error; err == nil {
			cp := existing
			before = &cp
		}

		s := models.Setting{Key: body.Key, Value: body.Value}
		err = database.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&s).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível salvar a configuração")
		}

		database.DB.First(&s, "key = ?", body.Key)

		action := models.AuditActionCreate
		if before != nil {
			action = models.AuditActionUpdate
		}
		if err := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "setting",
			EntityID:    s.ID,
			Action:      action,
			Description: "Configuração salva: " + s.Key,
			Before:      before,
			After:       s,
		}); err != nil {
			log.Println(err)
		}

		return c.JSON(s)
	}
}

// DELETE /api/admin/settings/:key
func DeleteSettingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		key := c.Params("key")

		var s models.Setting
		if err := database.DB.First(&s, "key = ?", key).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Configuração não encontrada")
		}

		if err := database.DB.Delete(&s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível excluir a configuração")
		}

		if err := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "setting",
			EntityID:    s.ID,
			Action:      models.AuditActionDelete,
			Description: "Configuração excluída: " + s.Key,
			Before:      s,
		}); err != nil {
			log.Println(err)
		}

		return c.JSON(fiber.Map{"message": "Configuração excluída com sucesso"})
	}
}
