package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/Kariqs/amexan-portal/models"
	"github.com/Kariqs/amexan-portal/submission"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrProductNotFound = errors.New("product not found")

var _ submission.ProductService = (*ProductStore)(nil)

// ProductStore persists products in the portal database.
type ProductStore struct {
	db *gorm.DB
}

func NewProductStore(db *gorm.DB) *ProductStore {
	return &ProductStore{db: db}
}

func (s *ProductStore) Get(ctx context.Context, id string) (*submission.Product, error) {
	product, err := s.find(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return ToSubmissionProduct(product), nil
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products []submission.Product
	Total    int64
	Page     int
	Limit    int
}

// List returns products ordered by id, optionally filtered by a name search.
func (s *ProductStore) List(ctx context.Context, page, limit int, search string) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 4
	}

	filtered := func() *gorm.DB {
		query := s.db.WithContext(ctx).Model(&models.Product{})
		if search != "" {
			query = query.Where("name LIKE ?", "%"+search+"%")
		}
		return query
	}

	var count int64
	if err := filtered().Count(&count).Error; err != nil {
		return nil, fmt.Errorf("unable to count products: %w", err)
	}

	var rows []models.Product
	err := filtered().
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Sizes", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Order("id").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("unable to fetch products: %w", err)
	}

	out := &ProductPage{Products: make([]submission.Product, 0, len(rows)), Total: count, Page: page, Limit: limit}
	for i := range rows {
		out.Products = append(out.Products, *ToSubmissionProduct(&rows[i]))
	}
	return out, nil
}

func (s *ProductStore) Create(ctx context.Context, payload submission.Payload) (*submission.Product, error) {
	product := models.Product{}
	if err := applyPayload(&product, payload); err != nil {
		return nil, err
	}
	product.Images = imageRows(payload.Images)
	product.Sizes = sizeRows(payload.SizeChart)

	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return ToSubmissionProduct(&product), nil
}

// Update overwrites the product fields and replaces its images and size chart.
func (s *ProductStore) Update(ctx context.Context, id string, payload submission.Payload) (*submission.Product, error) {
	var updated *models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.find(tx, id)
		if err != nil {
			return err
		}
		if err := applyPayload(product, payload); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(product).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		if err := tx.Unscoped().Where("product_id = ?", product.ID).Delete(&models.ProductImage{}).Error; err != nil {
			return fmt.Errorf("failed to replace product images: %w", err)
		}
		if err := tx.Unscoped().Where("product_id = ?", product.ID).Delete(&models.ProductSize{}).Error; err != nil {
			return fmt.Errorf("failed to replace product sizes: %w", err)
		}

		product.Images = imageRows(payload.Images)
		product.Sizes = sizeRows(payload.SizeChart)
		for i := range product.Images {
			product.Images[i].ProductID = product.ID
		}
		for i := range product.Sizes {
			product.Sizes[i].ProductID = product.ID
		}
		if len(product.Images) > 0 {
			if err := tx.Create(&product.Images).Error; err != nil {
				return fmt.Errorf("failed to save product images: %w", err)
			}
		}
		if len(product.Sizes) > 0 {
			if err := tx.Create(&product.Sizes).Error; err != nil {
				return fmt.Errorf("failed to save product sizes: %w", err)
			}
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToSubmissionProduct(updated), nil
}

func (s *ProductStore) find(db *gorm.DB, id string) (*models.Product, error) {
	productID, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return nil, ErrProductNotFound
	}

	var product models.Product
	err = db.
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Sizes", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&product, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("unable to retrieve product: %w", err)
	}
	return &product, nil
}

func applyPayload(p *models.Product, payload submission.Payload) error {
	colors := payload.Colors
	if colors == nil {
		colors = []string{}
	}
	encoded, err := json.Marshal(colors)
	if err != nil {
		return fmt.Errorf("failed to encode colors: %w", err)
	}

	p.Name = payload.Name
	p.Description = payload.Description
	p.OriginalPrice = payload.OriginalPrice
	p.DiscountPrice = payload.DiscountPrice
	p.DiscountPercent = payload.DiscountPercent
	p.Stock = payload.Stock
	p.Brand = payload.Brand
	p.Category = payload.Category
	p.Subcategory = payload.Subcategory
	p.Colors = datatypes.JSON(encoded)
	return nil
}

func imageRows(urls []string) []models.ProductImage {
	rows := make([]models.ProductImage, 0, len(urls))
	for i, url := range urls {
		rows = append(rows, models.ProductImage{Url: url, Position: i})
	}
	return rows
}

func sizeRows(sizes []submission.SizeEntry) []models.ProductSize {
	rows := make([]models.ProductSize, 0, len(sizes))
	for i, s := range sizes {
		rows = append(rows, models.ProductSize{Label: s.Label, Stock: s.Stock, Position: i})
	}
	return rows
}

// ToSubmissionProduct converts a stored product into what the draft pipeline
// works with.
func ToSubmissionProduct(p *models.Product) *submission.Product {
	colors := []string{}
	if len(p.Colors) > 0 {
		_ = json.Unmarshal(p.Colors, &colors)
	}
	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, img.Url)
	}
	sizes := make([]submission.SizeEntry, 0, len(p.Sizes))
	for _, s := range p.Sizes {
		sizes = append(sizes, submission.SizeEntry{Label: s.Label, Stock: s.Stock})
	}

	return &submission.Product{
		ID: strconv.FormatUint(uint64(p.ID), 10),
		Payload: submission.Payload{
			Name:            p.Name,
			Description:     p.Description,
			OriginalPrice:   p.OriginalPrice,
			DiscountPrice:   p.DiscountPrice,
			DiscountPercent: p.DiscountPercent,
			Stock:           p.Stock,
			Brand:           p.Brand,
			Category:        p.Category,
			Subcategory:     p.Subcategory,
			Colors:          colors,
			SizeChart:       sizes,
			Images:          images,
		},
	}
}
