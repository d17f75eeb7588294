package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/agriconnect/whatsapp-backend/internal/config"
	"github.com/agriconnect/whatsapp-backend/internal/models"
	"github.com/agriconnect/whatsapp-backend/pkg/logger"
)

// socketDir is where Cloud Run mounts Cloud SQL sockets.
const socketDir = "/cloudsql"

// DSN builds the Postgres connection string, preferring the Cloud SQL socket when configured.
func DSN(cfg *config.Config) string {
	if cfg.InstanceConnectionName != "" {
		return fmt.Sprintf("host=%s/%s user=%s password=%s dbname=%s sslmode=disable",
			socketDir, cfg.InstanceConnectionName, cfg.DBUser, cfg.DBPass, cfg.DBName)
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPass, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
}

// Connect opens the database and checks it answers.
func Connect(cfg *config.Config, log *logger.Logger) (*gorm.DB, error) {
	log = logger.OrGlobal(log)

	level := gormlogger.Warn
	if cfg.IsDevelopment() {
		level = gormlogger.Info
	}

	if cfg.InstanceConnectionName != "" {
		log.Info("connecting to Cloud SQL via socket", zap.String("instance", cfg.InstanceConnectionName))
	} else {
		log.Info("connecting to PostgreSQL", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))
	}

	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	log.Info("database connected")
	return db, nil
}

// Migrate creates or updates the tables the bot reads and writes.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Profile{},
		&models.Product{},
		&models.Supply{},
		&models.WhatsAppSession{},
	)
}

// EnsureDefaultFarmer creates the profile that owns products listed over WhatsApp.
// products.farmer_id references profiles.user_id, so inserts fail until it exists.
func EnsureDefaultFarmer(db *gorm.DB, farmerID string) (*models.Profile, error) {
	var profile models.Profile
	err := db.Where(&models.Profile{UserID: farmerID}).
		Attrs(models.Profile{
			ID:          uuid.NewString(),
			DisplayName: "AgriConnect WhatsApp Farmer",
			Role:        "farmer",
		}).
		FirstOrCreate(&profile).Error
	if err != nil {
		return nil, fmt.Errorf("database: ensure default farmer: %w", err)
	}
	return &profile, nil
}
