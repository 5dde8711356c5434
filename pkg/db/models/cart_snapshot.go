package models

import "time"

// CartSnapshot persists the full cart state as a JSON payload. The scalar
// columns are denormalized for lookups and reporting.
type CartSnapshot struct {
	CartID          string    `gorm:"column:cart_id;primaryKey;size:64"`
	Payload         string    `gorm:"column:payload;not null"`
	ItemCount       int       `gorm:"column:item_count;not null;default:0"`
	SavedItemCount  int       `gorm:"column:saved_item_count;not null;default:0"`
	PromoCode       *string   `gorm:"column:promo_code;size:64"`
	RegularSubtotal string    `gorm:"column:regular_subtotal;not null;default:'0'"`
	Version         int64     `gorm:"column:version;not null;default:0"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartSnapshot) TableName() string {
	return "cart_snapshots"
}
