package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/angelmondragon/cartengine/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotRepository persists snapshots in the cart_snapshots table.
type SnapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository constructs a repository bound to the provided DB.
func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *SnapshotRepository) WithTx(tx *gorm.DB) *SnapshotRepository {
	if tx == nil {
		return r
	}
	return &SnapshotRepository{db: tx}
}

func (r *SnapshotRepository) Load(ctx context.Context, cartID string) (*Snapshot, error) {
	var record models.CartSnapshot
	err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	var snapshot Snapshot
	if err := json.Unmarshal([]byte(record.Payload), &snapshot); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return &snapshot, nil
}

// Save upserts the snapshot keyed by cart id.
func (r *SnapshotRepository) Save(ctx context.Context, snapshot Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	record := models.CartSnapshot{
		CartID:          snapshot.CartID,
		Payload:         string(payload),
		ItemCount:       len(snapshot.Items),
		SavedItemCount:  len(snapshot.SavedItems),
		RegularSubtotal: RegularSubtotal(snapshot.Items).String(),
		Version:         snapshot.Version,
	}
	if snapshot.Promo != nil {
		code := snapshot.Promo.Code
		record.PromoCode = &code
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"payload", "item_count", "saved_item_count", "promo_code", "regular_subtotal", "version", "updated_at",
		}),
	}).Create(&record).Error
}

func (r *SnapshotRepository) Delete(ctx context.Context, cartID string) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartSnapshot{}).Error
}
