package model

import (
	baseModel "shop_backend/pkg/model"
)

// Category 商品品类，products.category 以名称关联
type Category struct {
	baseModel.BaseModel
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
}

// CategoryStat 品类及其商品统计
type CategoryStat struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	ProductCount    int64  `json:"productCount"`
	OutOfStockCount int64  `json:"outOfStockCount"`
}
