package fleet

import (
	"log"
	"strings"
	"time"

	"github.com/icaro-milhomem/ispmanager-sub000/internal/audit"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/auth"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/database"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateVehicleRequest struct {
	Plate      string `json:"plate"`
	Model      string `json:"model"`
	Year       int    `json:"year"`
	AssignedTo *uint  `json:"assigned_to"`
}

type UpdateVehicleRequest struct {
	Plate      *string `json:"plate"`
	Model      *string `json:"model"`
	Year       *int    `json:"year"`
	AssignedTo *uint   `json:"assigned_to"`
	Status     *string `json:"status"`
}

type ReportPositionRequest struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	SpeedKmh   float64 `json:"speed_kmh"`
	RecordedAt string  `json:"recorded_at"` // RFC3339; vazio = agora
}

type VehicleWithPosition struct {
	Vehicle      models.Vehicle          `json:"vehicle"`
	LastPosition *models.VehiclePosition `json:"last_position"`
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

func validStatus(s string) bool {
	switch models.VehicleStatus(s) {
	case models.VehicleAvailable, models.VehicleInUse, models.VehicleMaintenance:
		return true
	}
	return false
}

func normalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// GET /api/vehicles?status=
func ListVehiclesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Vehicle{})

		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}

		var vehicles []models.Vehicle
		if err := dbq.Order("plate asc").Find(&vehicles).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os veículos")
		}

		resp := make([]VehicleWithPosition, 0, len(vehicles))
		for _, v := range vehicles {
			entry := VehicleWithPosition{Vehicle: v}
			var pos models.VehiclePosition
			err := database.DB.Where("vehicle_id = ?", v.ID).
				Order("recorded_at desc").First(&pos).Error
			if err == nil {
				entry.LastPosition = &pos
			}
			resp = append(resp, entry)
		}

		return c.JSON(resp)
	}
}

// GET /api/vehicles/:id
func GetVehicleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var v models.Vehicle
		if err := database.DB.First(&v, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Veículo não encontrado")
		}

		entry := VehicleWithPosition{Vehicle: v}
		var pos models.VehiclePosition
		if err := database.DB.Where("vehicle_id = ?", v.ID).
			Order("recorded_at desc").First(&pos).Error; err == nil {
			entry.LastPosition = &pos
		}

		return c.JSON(entry)
	}
}

// POST /api/admin/vehicles
func CreateVehicleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		var body CreateVehicleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		body.Plate = normalizePlate(body.Plate)
		body.Model = strings.TrimSpace(body.Model)
		if body.Plate == "" || body.Model == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Placa e modelo são obrigatórios")
		}

		var count int64
		database.DB.Model(&models.Vehicle{}).Where("plate = ?", body.Plate).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Já existe um veículo com esta placa")
		}

		if body.AssignedTo != nil {
			var user models.User
			if err := database.DB.First(&user, "id = ?", *body.AssignedTo).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Usuário responsável não encontrado")
			}
		}

		v := models.Vehicle{
			Plate:      body.Plate,
			Model:      body.Model,
			Year:       body.Year,
			AssignedTo: body.AssignedTo,
			Status:     models.VehicleAvailable,
		}

		if err := database.DB.Create(&v).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar o veículo")
		}

		if err := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "vehicle",
			EntityID:    v.ID,
			Action:      models.AuditActionCreate,
			Description: "Veículo cadastrado: " + v.Plate,
			After:       v,
		}); err != nil {
			log.Println(err)
		}

		return c.Status(fiber.StatusCreated).JSON(v)
	}
}

// PUT /api/vehicles/:id
func UpdateVehicleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var v models.Vehicle
		if err := database.DB.First(&v, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Veículo não encontrado")
		}
		before := v

		var body UpdateVehicleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		if body.Plate != nil {
			plate := normalizePlate(*body.Plate)
			if plate == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Placa não pode ficar vazia")
			}
			if plate != v.Plate {
				var count int64
				database.DB.Model(&models.Vehicle{}).Where("plate = ?", plate).Count(&count)
				if count > 0 {
					return fiber.NewError(fiber.StatusConflict, "Já existe um veículo com esta placa")
				}
			}
			v.Plate = plate
		}
		if body.Model != nil {
			model := strings.TrimSpace(*body.Model)
			if model == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Modelo não pode ficar vazio")
			}
			v.Model = model
		}
		if body.Year != nil {
			v.Year = *body.Year
		}
		if body.AssignedTo != nil {
			var user models.User
			if err := database.DB.First(&user, "id = ?", *body.AssignedTo).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Usuário responsável não encontrado")
			}
			v.AssignedTo = body.AssignedTo
		}
		if body.Status != nil {
			if !validStatus(*body.Status) {
				return fiber.NewError(fiber.StatusBadRequest, "Status inválido")
			}
			v.Status = models.VehicleStatus(*body.Status)
		}

		if err := database.DB.Save(&v).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar o veículo")
		}

		if err := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "vehicle",
			EntityID:    v.ID,
			Action:      models.AuditActionUpdate,
			Description: "Veículo atualizado: " + v.Plate,
			Before:      before,
			After:       v,
		}); err != nil {
			log.Println(err)
		}

		return c.JSON(v)
	}
}

// POST /api/vehicles/:id/positions
func ReportPositionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var v models.Vehicle
		if err := database.DB.First(&v, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Veículo não encontrado")
		}

		var body ReportPositionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		if body.Latitude < -90 || body.Latitude > 90 || body.Longitude < -180 || body.Longitude > 180 {
			return fiber.NewError(fiber.StatusBadRequest, "Coordenadas inválidas")
		}

		recordedAt := time.Now()
		if body.RecordedAt != "" {
			parsed, err := time.Parse(time.RFC3339, body.RecordedAt)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Data de registro inválida, use o formato RFC3339")
			}
			recordedAt = parsed
		}

		pos := models.VehiclePosition{
			VehicleID:  v.ID,
			Latitude:   body.Latitude,
			Longitude:  body.Longitude,
			SpeedKmh:   body.SpeedKmh,
			RecordedAt: recordedAt,
		}

		if err := database.DB.Create(&pos).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível registrar a posição")
		}

		return c.Status(fiber.StatusCreated).JSON(pos)
	}
}

// GET /api/vehicles/:id/positions?limit=
func ListPositionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var v models.Vehicle
		if err := database.DB.First(&v, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Veículo não encontrado")
		}

		limit := c.QueryInt("limit", 100)
		if limit < 1 || limit > 1000 {
			limit = 100
		}

		var positions []models.VehiclePosition
		if err := database.DB.Where("vehicle_id = ?", v.ID).
			Order("recorded_at desc").Limit(limit).Find(&positions).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as posições")
		}

		return c.JSON(positions)
	}
}

// DELETE /api/admin/vehicles/:id
func DeleteVehicleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var v models.Vehicle
		if err := database.DB.First(&v, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Veículo não encontrado")
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível iniciar a transação")
		}

		if err := tx.Where("vehicle_id = ?", v.ID).Delete(&models.VehiclePosition{}).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível excluir as posições do veículo")
		}
		if err := tx.Delete(&v).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível excluir o veículo")
		}
		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível concluir a exclusão")
		}

		if err := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "vehicle",
			EntityID:    v.ID,
			Action:      models.AuditActionDelete,
			Description: "Veículo excluído: " + v.Plate,
			Before:      v,
		}); err != nil {
			log.Println(err)
		}

		return c.JSON(fiber.Map{"message": "Veículo excluído com sucesso"})
	}
}
