package initializers

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectToDB(cfg DBConfig) error {
	if cfg.DSN == "" {
		return errors.New("AMEXAN_DB_DSN is not set")
	}
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: NewGormLogger(Logger, gormLevel(cfg.LogLevel), cfg.SlowThreshold),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	DB = db
	Logger.Info("Connected to database")
	return nil
}

func logDBError(msg string, err error) {
	Logger.Error(msg, zap.Error(err))
}
