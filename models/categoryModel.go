package models

import "gorm.io/gorm"

type Subcategory struct {
	gorm.Model
	Name       string `json:"name"`
	CategoryID uint   `json:"categoryId"`
}

type Category struct {
	gorm.Model
	Name          string        `json:"name" gorm:"uniqueIndex;size:120"`
	Subcategories []Subcategory `json:"subcategories" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}
