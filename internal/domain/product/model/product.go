package model

import (
	baseModel "shop_backend/pkg/model"

	"gorm.io/gorm"
)

// 商品状态
const (
	StatusAvailable  = "Available"
	StatusOutOfStock = "Out of Stock"
)

// Product 商品模型
type Product struct {
	baseModel.BaseModel
	Name        string   `gorm:"not null" json:"name"`
	Description string   `gorm:"not null" json:"description"`
	Price       float64  `gorm:"not null;check:price >= 0" json:"price"`
	Category    string   `gorm:"index;not null" json:"category"`
	Sizes       []string `gorm:"serializer:json;type:jsonb" json:"sizes"`
	ImageURL    string   `gorm:"not null" json:"imageURL"`
	Stock       int      `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	Status      string   `gorm:"default:'Available'" json:"status"`
}

// BeforeSave 钩子：状态跟随库存
func (p *Product) BeforeSave(tx *gorm.DB) error {
	if p.Stock <= 0 {
		p.Status = StatusOutOfStock
	} else {
		p.Status = StatusAvailable
	}
	return nil
}
