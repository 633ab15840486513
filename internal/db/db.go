// Package db opens the database and prepares its schema.
package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/go-schools/internal/config"
	"github.com/diewo77/go-schools/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const connectAttempts = 10

// Connect opens the configured database, retrying while PostgreSQL starts up.
func Connect(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN())
	case "postgres", "":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	var (
		conn *gorm.DB
		err  error
	)
	for i := 0; i < connectAttempts; i++ {
		conn, err = gorm.Open(dialector, gcfg)
		if err == nil {
			break
		}
		log.Warn("retrying database connection", zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}

	if pingErr := conn.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	if cfg.Driver == "sqlite" {
		// one writer at a time; concurrent transactions queue on the pool
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	log.Info("database connected", zap.String("driver", conn.Dialector.Name()))
	return conn, nil
}

// Migrate creates or updates every table.
func Migrate(conn *gorm.DB) error {
	for _, m := range models.All() {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	for _, table := range []string{"students", "invoices", "payments", "receipts", "sequences", "grade_scales"} {
		if !conn.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// Seed inserts reference data that is missing. Safe to run on every start.
func Seed(conn *gorm.DB) error {
	if err := seedScale(conn); err != nil {
		return fmt.Errorf("seed grade scale: %w", err)
	}
	if err := seedSubjects(conn); err != nil {
		return fmt.Errorf("seed subjects: %w", err)
	}
	return nil
}

func seedScale(conn *gorm.DB) error {
	var existing models.GradeScale
	err := conn.Where("name = ?", WASSCEScaleName).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var defaults int64
	if err := conn.Model(&models.GradeScale{}).Where("is_default = ?", true).Count(&defaults).Error; err != nil {
		return err
	}
	scale := models.GradeScale{
		Name:      WASSCEScaleName,
		IsDefault: defaults == 0,
		Bands:     models.WASSCEBands(),
	}
	return conn.Create(&scale).Error
}

// coreSubjects are the WASSCE core and common elective subjects.
var coreSubjects = []models.Subject{
	{Code: "ENG", Name: "English Language"},
	{Code: "MATH", Name: "Mathematics"},
	{Code: "BIO", Name: "Biology"},
	{Code: "CHEM", Name: "Chemistry"},
	{Code: "PHY", Name: "Physics"},
	{Code: "LIT", Name: "Literature in English"},
	{Code: "ECON", Name: "Economics"},
	{Code: "GEO", Name: "Geography"},
	{Code: "HIST", Name: "History"},
}

func seedSubjects(conn *gorm.DB) error {
	for _, sub := range coreSubjects {
		row := sub
		if err := conn.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
			Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// WASSCEScaleName names the seeded default scale.
const WASSCEScaleName = "WASSCE"
