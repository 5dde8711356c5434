package promos

import (
	"context"
	"errors"

	"github.com/angelmondragon/cartengine/pkg/db"
	"github.com/angelmondragon/cartengine/pkg/db/models"
	pkgerrors "github.com/angelmondragon/cartengine/pkg/errors"
	"gorm.io/gorm"
)

// Repository persists promo codes.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided GORM handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByCode loads a promo by its normalized code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := r.db.WithContext(ctx).
		Where("code = ?", models.NormalizePromoCode(code)).
		First(&promo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "promo code not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load promo code")
	}
	return &promo, nil
}

// Create inserts a promo code after checking its discount definition.
func (r *Repository) Create(ctx context.Context, promo *models.PromoCode) (*models.PromoCode, error) {
	if err := validateDefinition(promo); err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(promo).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "promo code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create promo code")
	}
	return promo, nil
}

// Deactivate switches a promo off without deleting it.
func (r *Repository) Deactivate(ctx context.Context, code string) error {
	result := r.db.WithContext(ctx).
		Model(&models.PromoCode{}).
		Where("code = ?", models.NormalizePromoCode(code)).
		Update("active", false)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "deactivate promo code")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "promo code not found")
	}
	return nil
}
