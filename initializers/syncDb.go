package initializers

import (
	"github.com/Kariqs/amexan-portal/models"
)

func SyncDatabase() error {
	err := DB.AutoMigrate(
		&models.Product{},
		&models.ProductImage{},
		&models.ProductSize{},
		&models.Category{},
		&models.Subcategory{},
	)
	if err != nil {
		logDBError("Database sync failed", err)
		return err
	}
	Logger.Info("Database synced successfully.")
	return nil
}
