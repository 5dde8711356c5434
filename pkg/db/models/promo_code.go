package models

import (
	"strings"
	"time"

	"github.com/angelmondragon/cartengine/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PromoCode is a redeemable cart-level discount.
type PromoCode struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Code          string             `gorm:"column:code;size:64;not null;uniqueIndex"`
	Description   string             `gorm:"column:description"`
	DiscountType  enums.DiscountType `gorm:"column:discount_type;size:16;not null"`
	DiscountValue decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2);not null"`
	MaxDiscount   *decimal.Decimal   `gorm:"column:max_discount;type:numeric(12,2)"`
	MinSubtotal   decimal.Decimal    `gorm:"column:min_subtotal;type:numeric(12,2);not null;default:0"`
	Active        bool               `gorm:"column:active;not null"`
	StartsAt      *time.Time         `gorm:"column:starts_at"`
	ExpiresAt     *time.Time         `gorm:"column:expires_at"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (PromoCode) TableName() string {
	return "promo_codes"
}

// BeforeCreate assigns an id and normalizes the code.
func (p *PromoCode) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Code = NormalizePromoCode(p.Code)
	return nil
}

// IsRedeemableAt reports whether the code is active inside its window.
func (p PromoCode) IsRedeemableAt(now time.Time) bool {
	if !p.Active {
		return false
	}
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return false
	}
	if p.ExpiresAt != nil && !now.Before(*p.ExpiresAt) {
		return false
	}
	return true
}

// NormalizePromoCode trims and upper-cases a shopper-entered code.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// All lists every model owned by the engine, in creation order.
func All() []any {
	return []any{&CartSnapshot{}, &PromoCode{}}
}
