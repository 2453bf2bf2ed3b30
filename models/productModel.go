package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProductSize struct {
	gorm.Model
	Label     string `json:"label"`
	Stock     int    `json:"stock"`
	Position  int    `json:"position"`
	ProductID uint   `json:"productId"`
}

type ProductImage struct {
	gorm.Model
	Url       string `json:"url"`
	Position  int    `json:"position"`
	ProductID uint   `json:"productId"`
}

type Product struct {
	gorm.Model
	Brand           string         `json:"brand"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	OriginalPrice   float64        `json:"originalPrice"`
	DiscountPrice   float64        `json:"discountPrice"`
	DiscountPercent int64          `json:"discountPercent"`
	Stock           int            `json:"stock"`
	Category        string         `json:"category"`
	Subcategory     string         `json:"subcategory"`
	Colors          datatypes.JSON `json:"colors"`
	Sizes           []ProductSize  `json:"sizeChart" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Images          []ProductImage `json:"images" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}
