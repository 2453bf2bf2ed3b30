package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Kariqs/amexan-portal/models"
	"github.com/Kariqs/amexan-portal/submission"
	"gorm.io/gorm"
)

var ErrCategoryExists = errors.New("category already exists")

var _ submission.Catalog = (*CategoryCatalog)(nil)

// CategoryCatalog reads categories and their subcategories from the database.
type CategoryCatalog struct {
	db *gorm.DB
}

func NewCategoryCatalog(db *gorm.DB) *CategoryCatalog {
	return &CategoryCatalog{db: db}
}

func (c *CategoryCatalog) List(ctx context.Context) ([]submission.Category, error) {
	var rows []models.Category
	err := c.db.WithContext(ctx).
		Preload("Subcategories", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		Order("name").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("unable to fetch categories: %w", err)
	}

	out := make([]submission.Category, 0, len(rows))
	for _, row := range rows {
		cat := submission.Category{
			ID:            strconv.FormatUint(uint64(row.ID), 10),
			Name:          row.Name,
			Subcategories: make([]submission.Subcategory, 0, len(row.Subcategories)),
		}
		for _, sub := range row.Subcategories {
			cat.Subcategories = append(cat.Subcategories, submission.Subcategory{
				ID:   strconv.FormatUint(uint64(sub.ID), 10),
				Name: sub.Name,
			})
		}
		out = append(out, cat)
	}
	return out, nil
}

// Create adds a category with its subcategories.
func (c *CategoryCatalog) Create(ctx context.Context, name string, subcategories []string) (*submission.Category, error) {
	db := c.db.WithContext(ctx)

	var existing int64
	if err := db.Model(&models.Category{}).Where("name = ?", name).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("unable to check category: %w", err)
	}
	if existing > 0 {
		return nil, ErrCategoryExists
	}

	row := models.Category{Name: name}
	for _, sub := range subcategories {
		row.Subcategories = append(row.Subcategories, models.Subcategory{Name: sub})
	}
	if err := db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	cat := submission.Category{
		ID:            strconv.FormatUint(uint64(row.ID), 10),
		Name:          row.Name,
		Subcategories: make([]submission.Subcategory, 0, len(row.Subcategories)),
	}
	for _, sub := range row.Subcategories {
		cat.Subcategories = append(cat.Subcategories, submission.Subcategory{
			ID:   strconv.FormatUint(uint64(sub.ID), 10),
			Name: sub.Name,
		})
	}
	return &cat, nil
}
