package model

import (
	baseModel "shop_backend/pkg/model"
)

// 角色
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User 用户模型
type User struct {
	baseModel.BaseModel
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"unique;not null" json:"email"`
	Password string `gorm:"not null" json:"-"` // 密码不返回给前端
	Role     string `gorm:"default:'user'" json:"role"`
	// GoogleID 第三方身份源标识，凭据注册的用户为空
	GoogleID string `gorm:"index" json:"-"`
}

// WishlistItem 收藏条目，(user_id, product_id) 唯一
type WishlistItem struct {
	baseModel.BaseModel
	UserID    string `gorm:"type:uuid;uniqueIndex:idx_wishlist_user_product;not null" json:"userId"`
	ProductID string `gorm:"type:uuid;uniqueIndex:idx_wishlist_user_product;not null" json:"productId"`
}

func (WishlistItem) TableName() string {
	return "wishlist_items"
}
