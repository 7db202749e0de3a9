package database

import (
	"log"

	"github.com/icaro-milhomem/ispmanager-sub000/internal/config"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Não foi possível conectar ao banco: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("Erro no AutoMigrate: %v", err)
	}

	log.Println("Conexão com o banco estabelecida. Migration concluída.")
}

// Connect abre uma conexão com qualquer dialector, sem migrar.
// Usado pelos testes (sqlite em memória) e pelo Init.
func Connect(dialector gorm.Dialector) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{})
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Plan{},
		&models.Contract{},
		&models.Invoice{},
		&models.BillingSchedule{},
		&models.Ticket{},
		&models.TicketReply{},
		&models.OLT{},
		&models.CTO{},
		&models.FiberCable{},
		&models.IPPool{},
		&models.Vehicle{},
		&models.VehiclePosition{},
		&models.InventoryItem{},
		&models.InventoryTransaction{},
		&models.AuditLog{},
		&models.Setting{},
	)
}
