package db

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/ainexus/nexus-backend/internal/logger"
	"github.com/ainexus/nexus-backend/internal/types"
	"github.com/ainexus/nexus-backend/internal/utils"
)

// DatabaseService owns the durable record store. One deployment uses one
// physical store: a single sqlite file by default, or postgres when
// POSTGRES_HOST is set.
type DatabaseService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDatabaseService(log *logger.Logger) (*DatabaseService, error) {
	serviceLog := log.With("service", "DatabaseService")

	cfg := &gorm.Config{
		// Uniqueness violations must be recognizable across drivers so the
		// service layer can resolve them to idempotent no-ops.
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	}

	var (
		gdb *gorm.DB
		err error
	)
	if host := utils.GetEnv("POSTGRES_HOST", "", log); host != "" {
		port := utils.GetEnv("POSTGRES_PORT", "5432", log)
		user := utils.GetEnv("POSTGRES_USER", "postgres", log)
		password := utils.GetEnv("POSTGRES_PASSWORD", "", log)
		name := utils.GetEnv("POSTGRES_NAME", "nexus", log)
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)

		log.Info("Connecting to Postgres...")
		gdb, err = gorm.Open(postgres.Open(dsn), cfg)
	} else {
		path := utils.GetEnv("SQLITE_PATH", filepath.Join("data", "nexus.db"), log)
		if dir := filepath.Dir(path); dir != "." {
			if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", mkErr)
			}
		}
		log.Info("Opening sqlite store...", "path", path)
		gdb, err = gorm.Open(sqlite.Open(path), cfg)
	}
	if err != nil {
		serviceLog.Error("Failed to open durable store", "error", err)
		return nil, fmt.Errorf("open durable store: %w", err)
	}

	return &DatabaseService{db: gdb, log: serviceLog}, nil
}

// AutoMigrateAll is idempotent create-if-missing schema initialization.
// Failure here is a startup failure; no auto-repair is attempted.
func (s *DatabaseService) AutoMigrateAll() error {
	s.log.Info("Auto migrating personalization tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.Favorite{},
		&types.Progress{},
		&types.Activity{},
		&types.SavedPrompt{},
		&types.Badge{},
		&types.UserStats{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *DatabaseService) DB() *gorm.DB {
	return s.db
}
